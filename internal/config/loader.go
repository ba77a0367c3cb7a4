package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir  = ".cu-mcp"
	defaultConfigName = "config.yaml"
)

// ErrConfigNotFound is returned by LoadFile when the file does not exist.
var ErrConfigNotFound = errors.New("config file not found")

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// fileConfig mirrors Config with optional fields so absent keys keep their defaults.
type fileConfig struct {
	MaxScreenshotEdge   *int     `yaml:"max_screenshot_edge"`
	PNGCompressLevel    *int     `yaml:"png_compress_level"`
	LogEnabled          *bool    `yaml:"log_enabled"`
	LogMaxString        *int     `yaml:"log_max_string"`
	LogLevel            *string  `yaml:"log_level"`
	LogFormat           *string  `yaml:"log_format"`
	PasteRestoreDelayMs *int     `yaml:"paste_restore_delay_ms"`
	TypeIntervalMs      *int     `yaml:"type_interval_ms"`
	ActionPauseMs       *int     `yaml:"action_pause_ms"`
	FailSafe            *bool    `yaml:"failsafe"`
	Shell               *string  `yaml:"shell"`
	MetricsAddr         *string  `yaml:"metrics_addr"`
	OTLPEndpoint        *string  `yaml:"otlp_endpoint"`
	TraceSamplingRate   *float64 `yaml:"trace_sampling_rate"`
}

// Load resolves the configuration from defaults, the config file at path (if
// any) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		fromFile, err := LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
		cfg = fromFile
	}
	return ApplyEnv(cfg, os.LookupEnv).Clamp(), nil
}

// ResolvePath picks the config file to load. An explicit path wins, then
// CU_MCP_CONFIG, then ~/.cu-mcp/config.yaml when it exists. The boolean
// reports whether a file should be loaded.
func ResolvePath(explicit string) (string, bool) {
	if strings.TrimSpace(explicit) != "" {
		return expandUserPath(explicit), true
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return expandUserPath(env), true
	}
	defaultPath := defaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath, true
	}
	return defaultPath, false
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return defaultConfigName
	}
	return filepath.Join(home, defaultConfigDir, defaultConfigName)
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return path
}

// LoadFile overlays the YAML file at path onto base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return base, fmt.Errorf("read config: %w", err)
	}
	return parseFile(data, base)
}

func parseFile(data []byte, base Config) (Config, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var fc fileConfig
	if err := decoder.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return base, fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parse config: expected single document")
	}

	cfg := base
	setInt(&cfg.MaxScreenshotEdge, fc.MaxScreenshotEdge)
	setInt(&cfg.PNGCompressLevel, fc.PNGCompressLevel)
	setInt(&cfg.LogMaxString, fc.LogMaxString)
	setInt(&cfg.PasteRestoreDelayMs, fc.PasteRestoreDelayMs)
	setInt(&cfg.TypeIntervalMs, fc.TypeIntervalMs)
	setInt(&cfg.ActionPauseMs, fc.ActionPauseMs)
	if fc.LogEnabled != nil {
		cfg.LogEnabled = *fc.LogEnabled
	}
	if fc.FailSafe != nil {
		cfg.FailSafe = *fc.FailSafe
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Shell, fc.Shell)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	setString(&cfg.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&cfg.LogFormat, fc.LogFormat)
	if fc.TraceSamplingRate != nil {
		cfg.TraceSamplingRate = *fc.TraceSamplingRate
	}
	return cfg, nil
}

// ApplyEnv overlays CU_MCP_* variables onto cfg. Integer variables that are
// set but unparsable leave the current value untouched; the result still needs Clamp.
func ApplyEnv(cfg Config, lookup LookupFunc) Config {
	if lookup == nil {
		return cfg
	}
	cfg.MaxScreenshotEdge = envInt(lookup, EnvMaxScreenshotEdge, cfg.MaxScreenshotEdge)
	cfg.PNGCompressLevel = envInt(lookup, EnvPNGCompressLevel, cfg.PNGCompressLevel)
	cfg.LogMaxString = envInt(lookup, EnvLogMaxString, cfg.LogMaxString)
	cfg.PasteRestoreDelayMs = envInt(lookup, EnvPasteRestoreDelay, cfg.PasteRestoreDelayMs)
	cfg.TypeIntervalMs = envInt(lookup, EnvTypeInterval, cfg.TypeIntervalMs)
	cfg.ActionPauseMs = envInt(lookup, EnvActionPause, cfg.ActionPauseMs)
	cfg.LogEnabled = envFlag(lookup, EnvLogEnabled, cfg.LogEnabled)
	cfg.FailSafe = envFlag(lookup, EnvFailSafe, cfg.FailSafe)
	cfg.LogLevel = envString(lookup, EnvLogLevel, cfg.LogLevel)
	cfg.Shell = envString(lookup, EnvShell, cfg.Shell)
	cfg.MetricsAddr = envString(lookup, EnvMetricsAddr, cfg.MetricsAddr)
	cfg.OTLPEndpoint = envString(lookup, EnvOTLPEndpoint, cfg.OTLPEndpoint)
	cfg.LogFormat = envString(lookup, EnvLogFormat, cfg.LogFormat)
	cfg.TraceSamplingRate = envFloat(lookup, EnvTraceSampling, cfg.TraceSamplingRate)
	return cfg
}

func envInt(lookup LookupFunc, key string, fallback int) int {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(lookup LookupFunc, key string, fallback float64) float64 {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

// envFlag treats 0, false and no (any case) as off and every other value as on.
func envFlag(lookup LookupFunc, key string, fallback bool) bool {
	raw, ok := lookup(key)
	if !ok {
		return fallback
	}
	return !IsFalsy(raw)
}

// IsFalsy reports whether raw is one of the recognised "off" spellings.
func IsFalsy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no":
		return true
	}
	return false
}

func envString(lookup LookupFunc, key string, fallback string) string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	return strings.TrimSpace(raw)
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = strings.TrimSpace(*src)
	}
}
