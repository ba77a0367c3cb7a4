package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerWithoutEndpoint(t *testing.T) {
	tracer, shutdown := NewTracer(TraceConfig{ServiceVersion: "test"})
	defer func() { _ = shutdown(context.Background()) }()

	if tracer == nil || tracer.tracer == nil {
		t.Fatal("NewTracer() should return a usable no-op tracer")
	}
	_, span := tracer.TraceToolCall(context.Background(), "get_screen_info")
	span.End()
}

func TestTraceToolCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := NewTracerFromProvider(provider, "cu-mcp")

	_, span := tracer.TraceToolCall(context.Background(), "mouse_drag")
	RecordError(span, errors.New("fail-safe triggered"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name() != "tool.mouse_drag" {
		t.Errorf("name = %q", got.Name())
	}
	if got.Status().Code != codes.Error || got.Status().Description != "fail-safe triggered" {
		t.Errorf("status = %+v", got.Status())
	}
	found := false
	for _, attr := range got.Attributes() {
		if attr.Key == attribute.Key("tool.name") && attr.Value.AsString() == "mouse_drag" {
			found = true
		}
	}
	if !found {
		t.Error("span missing tool.name attribute")
	}
}

func TestSamplerFor(t *testing.T) {
	tests := map[float64]string{
		1:    "AlwaysOnSampler",
		2:    "AlwaysOnSampler",
		0:    "AlwaysOffSampler",
		-1:   "AlwaysOffSampler",
		0.25: "TraceIDRatioBased{0.25}",
	}
	for rate, want := range tests {
		if got := samplerFor(rate).Description(); got != want {
			t.Errorf("samplerFor(%v) = %s, want %s", rate, got, want)
		}
	}
}

func TestNilTracerReturnsNoopSpan(t *testing.T) {
	var tracer *Tracer
	ctx := context.Background()
	gotCtx, span := tracer.TraceToolCall(ctx, "x")
	if gotCtx != ctx {
		t.Error("nil tracer should not change the context")
	}
	if span.IsRecording() {
		t.Error("nil tracer span should not record")
	}
	span.End()
}
