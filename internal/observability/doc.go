// Package observability records what cu-mcp does on behalf of a controller.
//
// # Tool events
//
// Every tool handler is wrapped with Instrument. A call produces a "start"
// event with its bound arguments, then either an "end" event with the result
// or an "error" event with the failure message. Both carry elapsedMs. Events
// are JSON lines on stderr prefixed with "[cu-mcp] ":
//
//	[cu-mcp] {"ts":"2025-01-02 15:04:05","event":"start","tool":"mouse_move","args":{"x":10,"y":20,"duration":0.25}}
//	[cu-mcp] {"ts":"2025-01-02 15:04:05","event":"end","tool":"mouse_move","result":{"success":true,"x":10,"y":20},"elapsedMs":262.4}
//
// # Bounded values
//
// Arguments and results pass through Serializer before they are logged. It
// caps nesting at MaxDepth, sequences at MaxItems, mappings at MaxKeys and
// strings at a configured length, and summarises byte slices and images by
// size. Serialization is total: unknown values degrade to opaque text.
//
// # Metrics and tracing
//
// Metrics exposes Prometheus collectors for tool calls, captures and deferred
// tasks. Tracer opens an OpenTelemetry span per call and exports over
// OTLP/gRPC when an endpoint is configured.
package observability
