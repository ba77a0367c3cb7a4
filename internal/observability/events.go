package observability

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// EventType is the boundary a tool event was recorded at.
type EventType string

const (
	EventStart EventType = "start"
	EventEnd   EventType = "end"
	EventError EventType = "error"
)

// Event log line keys.
const (
	KeyTimestamp = "ts"
	KeyEvent     = "event"
	KeyTool      = "tool"
	KeyArgs      = "args"
	KeyResult    = "result"
	KeyError     = "error"
	KeyElapsedMs = "elapsedMs"

	// TimestampLayout is the format of the ts key, in local time.
	TimestampLayout = "2006-01-02 15:04:05"

	// LinePrefix starts every event line so tool events are easy to grep out
	// of a shared stderr stream.
	LinePrefix = "[cu-mcp] "
)

// EventLog writes one JSON line per tool call boundary:
//
//	[cu-mcp] {"ts":"2025-01-02 15:04:05","event":"end","tool":"mouse_move","result":{...},"elapsedMs":12.3}
//
// Write failures are dropped by the handler; recording never fails the call.
type EventLog struct {
	logger  *slog.Logger
	enabled bool
}

// NewEventLog creates an EventLog writing to w. A disabled log writes nothing.
func NewEventLog(w io.Writer, enabled bool) *EventLog {
	if w == nil {
		w = io.Discard
		enabled = false
	}
	handler := slog.NewJSONHandler(&prefixWriter{w: w, prefix: []byte(LinePrefix)}, &slog.HandlerOptions{
		ReplaceAttr: replaceEventAttr,
	})
	return &EventLog{logger: slog.New(handler), enabled: enabled}
}

// Enabled reports whether events are written.
func (l *EventLog) Enabled() bool {
	return l != nil && l.enabled
}

// RecordStart logs the bound, serialized arguments of a call.
func (l *EventLog) RecordStart(ctx context.Context, tool string, args Value) {
	if !l.Enabled() {
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, string(EventStart),
		slog.String(KeyTool, tool),
		slog.Any(KeyArgs, args),
	)
}

// RecordEnd logs a successful call.
func (l *EventLog) RecordEnd(ctx context.Context, tool string, elapsedMs float64, result Value) {
	if !l.Enabled() {
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, string(EventEnd),
		slog.String(KeyTool, tool),
		slog.Any(KeyResult, result),
		slog.Float64(KeyElapsedMs, elapsedMs),
	)
}

// RecordError logs a failed call with its error message.
func (l *EventLog) RecordError(ctx context.Context, tool string, elapsedMs float64, message string) {
	if !l.Enabled() {
		return
	}
	l.logger.LogAttrs(ctx, slog.LevelError, string(EventError),
		slog.String(KeyTool, tool),
		slog.String(KeyError, message),
		slog.Float64(KeyElapsedMs, elapsedMs),
	)
}

// replaceEventAttr turns slog's built-in keys into the event line layout.
func replaceEventAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		t := a.Value.Time()
		if t.IsZero() {
			t = time.Now()
		}
		return slog.String(KeyTimestamp, t.Local().Format(TimestampLayout))
	case slog.LevelKey:
		return slog.Attr{}
	case slog.MessageKey:
		return slog.Attr{Key: KeyEvent, Value: a.Value}
	}
	return a
}

// prefixWriter prepends a fixed prefix to every Write. slog handlers emit one
// record per Write call, so each line gets exactly one prefix.
type prefixWriter struct {
	w      io.Writer
	prefix []byte
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	line := make([]byte, 0, len(p.prefix)+len(b))
	line = append(line, p.prefix...)
	line = append(line, b...)
	if _, err := p.w.Write(line); err != nil {
		return 0, err
	}
	return len(b), nil
}
