package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the Prometheus collectors for tool calls, screen captures and
// deferred tasks.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordToolCall("take_screenshot", observability.StatusSuccess, time.Since(start))
type Metrics struct {
	// ToolCallCounter counts tool invocations.
	// Labels: tool, status (success|error)
	ToolCallCounter *prometheus.CounterVec

	// ToolCallDuration measures tool execution time in seconds.
	// Labels: tool
	// Buckets: 0.005s, 0.01s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 30s
	ToolCallDuration *prometheus.HistogramVec

	// CaptureDuration measures grab, resize and encode time in seconds.
	CaptureDuration prometheus.Histogram

	// CapturePNGBytes records the size of encoded screenshots.
	// Buckets: 64KiB to 16MiB, doubling
	CapturePNGBytes prometheus.Histogram

	// CaptureErrors counts failed captures.
	CaptureErrors prometheus.Counter

	// DeferredTasks counts deferred task outcomes.
	// Labels: status (scheduled|success|error)
	DeferredTasks *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// registers with the Prometheus default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ToolCallCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cu_mcp_tool_calls_total",
				Help: "Total number of tool calls by tool name and status",
			},
			[]string{"tool", "status"},
		),

		ToolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cu_mcp_tool_duration_seconds",
				Help:    "Duration of tool calls in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 30},
			},
			[]string{"tool"},
		),

		CaptureDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cu_mcp_capture_duration_seconds",
				Help:    "Duration of screen captures including resize and encode",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),

		CapturePNGBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cu_mcp_capture_png_bytes",
				Help:    "Size of encoded screenshots in bytes",
				Buckets: prometheus.ExponentialBuckets(64*1024, 2, 9),
			},
		),

		CaptureErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cu_mcp_capture_errors_total",
				Help: "Total number of failed screen captures",
			},
		),

		DeferredTasks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cu_mcp_deferred_tasks_total",
				Help: "Deferred task outcomes such as clipboard restores",
			},
			[]string{"status"},
		),
	}
}

// RecordToolCall records one tool call.
func (m *Metrics) RecordToolCall(tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ToolCallCounter.WithLabelValues(tool, status).Inc()
	m.ToolCallDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveCapture records one capture. It satisfies capture.Observer.
func (m *Metrics) ObserveCapture(elapsed time.Duration, pngBytes int, err error) {
	if m == nil {
		return
	}
	m.CaptureDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.CaptureErrors.Inc()
		return
	}
	m.CapturePNGBytes.Observe(float64(pngBytes))
}

// RecordDeferred counts a deferred task transition.
func (m *Metrics) RecordDeferred(status string) {
	if m == nil {
		return
	}
	m.DeferredTasks.WithLabelValues(status).Inc()
}
