package observability

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// LogConfig configures the operational logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is text (the default) or json.
	Format string
	// Output defaults to os.Stderr; stdout is reserved for protocol frames.
	Output    io.Writer
	AddSource bool
}

// NewLogger creates the process logger used for startup, shutdown and
// background failures. Tool calls are recorded separately by EventLog.
//
// Example:
//
//	logger := observability.NewLogger(observability.LogConfig{Level: "debug", Format: "text"})
//	logger.Info("metrics listening", "addr", addr)
func NewLogger(config LogConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     LogLevelFromString(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(config.Format, "json") {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}
	return slog.New(handler)
}

// LogLevelFromString parses a level name case-insensitively, accepting
// "warning" for warn. Unknown names give info.
func LogLevelFromString(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// DefaultRedactPatterns match secrets that commonly show up in shell commands
// and typed text.
var DefaultRedactPatterns = []string{
	// API keys and tokens
	`(?i)(api[_-]?key|apikey)[\s:=]+["\']?([a-zA-Z0-9_\-]{16,})["\']?`,
	`(?i)(bearer|token)[\s:]+([a-zA-Z0-9_\-\.]{16,})`,
	`(?i)(secret|password|passwd|pwd)[\s:=]+["\']?([^\s"']{8,})["\']?`,

	// Provider keys
	`sk-ant-[a-zA-Z0-9_-]{95,}`,
	`sk-[a-zA-Z0-9]{48,}`,

	// JWT tokens
	`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`,

	// Generic hex secrets (32+ chars)
	`(?i)(secret|key|token)[\s:=]+["\']?([a-fA-F0-9]{32,})["\']?`,
}

// RedactedText replaces every secret matched by a Redactor.
const RedactedText = "[REDACTED]"

// Redactor masks secrets in strings before they reach a log sink.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles DefaultRedactPatterns plus extra. Invalid patterns are skipped.
func NewRedactor(extra ...string) *Redactor {
	all := append(append([]string{}, DefaultRedactPatterns...), extra...)
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(all))}
	for _, pattern := range all {
		if re, err := regexp.Compile(pattern); err == nil {
			r.patterns = append(r.patterns, re)
		}
	}
	return r
}

// Redact applies all patterns to s. A nil Redactor returns s unchanged.
func (r *Redactor) Redact(s string) string {
	if r == nil {
		return s
	}
	for _, re := range r.patterns {
		s = re.ReplaceAllString(s, RedactedText)
	}
	return s
}
