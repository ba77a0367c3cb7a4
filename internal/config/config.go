// Package config loads the process-wide settings for cu-mcp.
//
// Settings are resolved once at startup from built-in defaults, an optional
// YAML file, and CU_MCP_* environment variables, in that order. Every integer
// setting is clamped to a documented range; absent or unparsable values fall
// back to the default instead of failing startup.
package config

import (
	"math"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/haasonsaas/cu-mcp/internal/shell"
)

// Defaults and bounds for the integer settings.
const (
	DefaultMaxScreenshotEdge = 1920
	MinMaxScreenshotEdge     = 0
	MaxMaxScreenshotEdge     = 10000

	DefaultPNGCompressLevel = 6
	MinPNGCompressLevel     = 0
	MaxPNGCompressLevel     = 9

	DefaultLogMaxString = 300
	MinLogMaxString     = 32
	MaxLogMaxString     = 10000

	DefaultPasteRestoreDelayMs = 400
	MinPasteRestoreDelayMs     = 0
	MaxPasteRestoreDelayMs     = 10000

	DefaultTypeIntervalMs = 30
	MinTypeIntervalMs     = 0
	MaxTypeIntervalMs     = 1000

	DefaultActionPauseMs = 50
	MinActionPauseMs     = 0
	MaxActionPauseMs     = 1000
)

// Environment variable names.
const (
	EnvConfigPath        = "CU_MCP_CONFIG"
	EnvMaxScreenshotEdge = "CU_MCP_MAX_SCREENSHOT_EDGE"
	EnvPNGCompressLevel  = "CU_MCP_SCREENSHOT_PNG_COMPRESS_LEVEL"
	EnvLogEnabled        = "CU_MCP_LOG_TO_STDERR"
	EnvLogMaxString      = "CU_MCP_LOG_MAX_STRING"
	EnvLogLevel          = "CU_MCP_LOG_LEVEL"
	EnvLogFormat         = "CU_MCP_LOG_FORMAT"
	EnvPasteRestoreDelay = "CU_MCP_PASTE_RESTORE_DELAY_MS"
	EnvTypeInterval      = "CU_MCP_TYPE_INTERVAL_MS"
	EnvActionPause       = "CU_MCP_ACTION_PAUSE_MS"
	EnvFailSafe          = "CU_MCP_FAILSAFE"
	EnvShell             = "CU_MCP_SHELL"
	EnvMetricsAddr       = "CU_MCP_METRICS_ADDR"
	EnvOTLPEndpoint      = "CU_MCP_OTLP_ENDPOINT"
	EnvTraceSampling     = "CU_MCP_TRACE_SAMPLING_RATE"
)

// Config is the resolved, immutable configuration of a cu-mcp process.
type Config struct {
	// MaxScreenshotEdge caps the longest edge of encoded screenshots. 0 disables bounding.
	MaxScreenshotEdge int `yaml:"max_screenshot_edge" json:"max_screenshot_edge" jsonschema:"minimum=0,maximum=10000,default=1920"`

	// PNGCompressLevel is the lossless compression effort, 0 (none) to 9 (best).
	PNGCompressLevel int `yaml:"png_compress_level" json:"png_compress_level" jsonschema:"minimum=0,maximum=9,default=6"`

	// LogEnabled turns the per-call event log on stderr on or off.
	LogEnabled bool `yaml:"log_enabled" json:"log_enabled" jsonschema:"default=true"`

	// LogMaxString truncates strings in event log lines to this many characters.
	LogMaxString int `yaml:"log_max_string" json:"log_max_string" jsonschema:"minimum=32,maximum=10000,default=300"`

	// LogLevel is the level of the operational logger: debug, info, warn or error.
	LogLevel string `yaml:"log_level" json:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// LogFormat is the operational log encoding: text or json.
	LogFormat string `yaml:"log_format" json:"log_format" jsonschema:"enum=text,enum=json,default=text"`

	// PasteRestoreDelayMs is how long clipboard typing waits before restoring the previous clipboard.
	PasteRestoreDelayMs int `yaml:"paste_restore_delay_ms" json:"paste_restore_delay_ms" jsonschema:"minimum=0,maximum=10000,default=400"`

	// TypeIntervalMs is the delay between keystrokes when typing without the clipboard.
	TypeIntervalMs int `yaml:"type_interval_ms" json:"type_interval_ms" jsonschema:"minimum=0,maximum=1000,default=30"`

	// ActionPauseMs is the pause after every pointer or keyboard action.
	ActionPauseMs int `yaml:"action_pause_ms" json:"action_pause_ms" jsonschema:"minimum=0,maximum=1000,default=50"`

	// FailSafe aborts input actions while the pointer sits in a screen corner.
	FailSafe bool `yaml:"failsafe" json:"failsafe" jsonschema:"default=true"`

	// Shell is the interpreter used by run_shell_command.
	Shell string `yaml:"shell" json:"shell,omitempty"`

	// MetricsAddr exposes Prometheus metrics on this address when set.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr,omitempty"`

	// OTLPEndpoint exports traces to this OTLP/gRPC collector when set.
	OTLPEndpoint string `yaml:"otlp_endpoint" json:"otlp_endpoint,omitempty"`

	// TraceSamplingRate is the fraction of tool calls traced, 0 to 1.
	TraceSamplingRate float64 `yaml:"trace_sampling_rate" json:"trace_sampling_rate" jsonschema:"minimum=0,maximum=1,default=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxScreenshotEdge:   DefaultMaxScreenshotEdge,
		PNGCompressLevel:    DefaultPNGCompressLevel,
		LogEnabled:          true,
		LogMaxString:        DefaultLogMaxString,
		LogLevel:            "info",
		LogFormat:           "text",
		PasteRestoreDelayMs: DefaultPasteRestoreDelayMs,
		TypeIntervalMs:      DefaultTypeIntervalMs,
		ActionPauseMs:       DefaultActionPauseMs,
		FailSafe:            true,
		Shell:               DefaultShell(),
		TraceSamplingRate:   1,
	}
}

// DefaultShell returns the platform shell for run_shell_command.
func DefaultShell() string {
	return shell.DefaultShell(runtime.GOOS, os.Getenv)
}

// Clamp returns cfg with every bounded setting forced into its range.
func (cfg Config) Clamp() Config {
	cfg.MaxScreenshotEdge = clampInt(cfg.MaxScreenshotEdge, MinMaxScreenshotEdge, MaxMaxScreenshotEdge)
	cfg.PNGCompressLevel = clampInt(cfg.PNGCompressLevel, MinPNGCompressLevel, MaxPNGCompressLevel)
	cfg.LogMaxString = clampInt(cfg.LogMaxString, MinLogMaxString, MaxLogMaxString)
	cfg.PasteRestoreDelayMs = clampInt(cfg.PasteRestoreDelayMs, MinPasteRestoreDelayMs, MaxPasteRestoreDelayMs)
	cfg.TypeIntervalMs = clampInt(cfg.TypeIntervalMs, MinTypeIntervalMs, MaxTypeIntervalMs)
	cfg.ActionPauseMs = clampInt(cfg.ActionPauseMs, MinActionPauseMs, MaxActionPauseMs)
	switch strings.ToLower(strings.TrimSpace(cfg.LogLevel)) {
	case "debug", "info", "warn", "error":
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	case "warning":
		cfg.LogLevel = "warn"
	default:
		cfg.LogLevel = "info"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LogFormat)) {
	case "json":
		cfg.LogFormat = "json"
	default:
		cfg.LogFormat = "text"
	}
	if math.IsNaN(cfg.TraceSamplingRate) || cfg.TraceSamplingRate > 1 {
		cfg.TraceSamplingRate = 1
	} else if cfg.TraceSamplingRate < 0 {
		cfg.TraceSamplingRate = 0
	}
	if strings.TrimSpace(cfg.Shell) == "" {
		cfg.Shell = DefaultShell()
	}
	return cfg
}

// PasteRestoreDelay returns the clipboard restore delay as a duration.
func (cfg Config) PasteRestoreDelay() time.Duration {
	return time.Duration(cfg.PasteRestoreDelayMs) * time.Millisecond
}

// TypeInterval returns the per-keystroke typing delay as a duration.
func (cfg Config) TypeInterval() time.Duration {
	return time.Duration(cfg.TypeIntervalMs) * time.Millisecond
}

// ActionPause returns the pause after each input action as a duration.
func (cfg Config) ActionPause() time.Duration {
	return time.Duration(cfg.ActionPauseMs) * time.Millisecond
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
