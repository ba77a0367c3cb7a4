package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer creates one span per tool call. A nil Tracer hands out no-op spans.
type Tracer struct {
	tracer trace.Tracer
}

// TraceConfig configures span export. An empty Endpoint leaves tracing on the
// global provider, which is a no-op unless something else installed one.
type TraceConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is an OTLP/gRPC collector address such as localhost:4317.
	Endpoint string
	// SamplingRate is the sampled fraction of calls, from 0 (none) to 1 (all).
	SamplingRate   float64
	EnableInsecure bool
}

func noopShutdown(context.Context) error { return nil }

// NewTracer creates a tracer and the shutdown function that flushes it. If the
// exporter cannot be created, spans fall back to the global provider.
//
//	tracer, shutdown := observability.NewTracer(observability.TraceConfig{Endpoint: cfg.OTLPEndpoint})
//	defer shutdown(context.Background())
func NewTracer(cfg TraceConfig) (*Tracer, func(context.Context) error) {
	name := cfg.ServiceName
	if name == "" {
		name = "cu-mcp"
	}
	fallback := &Tracer{tracer: otel.Tracer(name)}
	if cfg.Endpoint == "" {
		return fallback, noopShutdown
	}

	exporter, err := newExporter(cfg)
	if err != nil {
		return fallback, noopShutdown
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(serviceResource(name, cfg.ServiceVersion)),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(provider)
	return &Tracer{tracer: provider.Tracer(name)}, provider.Shutdown
}

func newExporter(cfg TraceConfig) (*otlptrace.Exporter, error) {
	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.EnableInsecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	return otlptrace.New(context.Background(), otlptracegrpc.NewClient(clientOpts...))
}

func serviceResource(name, version string) *resource.Resource {
	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return resource.Default()
	}
	return res
}

func samplerFor(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// NewTracerFromProvider wraps an existing provider, e.g. an in-memory one in tests.
func NewTracerFromProvider(provider trace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: provider.Tracer(name)}
}

// TraceToolCall starts the span for one tool call, named tool.<name>.
func (t *Tracer) TraceToolCall(ctx context.Context, tool string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, "tool."+tool,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("tool.name", tool)),
	)
}

// RecordError records err on the span and marks it failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
