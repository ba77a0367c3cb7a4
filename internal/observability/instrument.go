package observability

import (
	"context"
	"math"
	"reflect"
	"time"
)

// minElapsedMs keeps recorded durations positive when the clock resolution
// rounds a fast call down to zero.
const minElapsedMs = 0.1

// Instrumenter records every wrapped call to the event log, metrics and tracer.
// Any of the three may be absent.
type Instrumenter struct {
	events     *EventLog
	serializer Serializer
	metrics    *Metrics
	tracer     *Tracer
	now        func() time.Time
}

// Option configures an Instrumenter.
type Option func(*Instrumenter)

// WithMetrics records call counts and durations.
func WithMetrics(m *Metrics) Option {
	return func(i *Instrumenter) { i.metrics = m }
}

// WithTracer opens one span per call.
func WithTracer(t *Tracer) Option {
	return func(i *Instrumenter) { i.tracer = t }
}

// WithNow overrides the clock used to time calls.
func WithNow(now func() time.Time) Option {
	return func(i *Instrumenter) {
		if now != nil {
			i.now = now
		}
	}
}

// NewInstrumenter creates an Instrumenter writing events to log.
func NewInstrumenter(log *EventLog, serializer Serializer, opts ...Option) *Instrumenter {
	ins := &Instrumenter{
		events:     log,
		serializer: serializer,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ins)
	}
	return ins
}

// Serializer returns the serializer used for arguments and results.
func (i *Instrumenter) Serializer() Serializer {
	return i.serializer
}

// Instrument wraps op so each call emits a start event, then an end event
// with the result or an error event with the failure. The wrapper returns
// exactly what op returns; recording can neither fail nor alter a call, and
// panics in op are not recovered.
func Instrument[In, Out any](ins *Instrumenter, name string, op func(context.Context, In) (Out, error)) func(context.Context, In) (Out, error) {
	if ins == nil {
		return op
	}
	return func(ctx context.Context, in In) (Out, error) {
		ctx, span := ins.tracer.TraceToolCall(ctx, name)
		defer span.End()

		if ins.events.Enabled() {
			ins.events.RecordStart(ctx, name, ins.BindArgs(in))
		}

		started := ins.now()
		out, err := op(ctx, in)
		elapsed := ins.now().Sub(started)
		ms := ElapsedMs(elapsed)

		if err != nil {
			RecordError(span, err)
			ins.metrics.RecordToolCall(name, StatusError, elapsed)
			if ins.events.Enabled() {
				ins.events.RecordError(ctx, name, ms, ins.serializer.TruncateString(err.Error()))
			}
			return out, err
		}

		ins.metrics.RecordToolCall(name, StatusSuccess, elapsed)
		if ins.events.Enabled() {
			ins.events.RecordEnd(ctx, name, ms, ins.serializer.Serialize(out))
		}
		return out, nil
	}
}

// BindArgs maps a call's input onto named arguments. A struct (or pointer to
// one) binds each exported field under its json name in declaration order,
// each serialized on its own. Anything else falls back to {"args": value}.
func (i *Instrumenter) BindArgs(in any) (out Value) {
	defer func() {
		if r := recover(); r != nil {
			out = Mapping(Field{Key: "args", Value: i.serializer.Serialize(in)})
		}
	}()

	rv := reflect.ValueOf(in)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Mapping(Field{Key: "args", Value: i.serializer.Serialize(in)})
	}

	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())
	for idx := 0; idx < rt.NumField(); idx++ {
		name, ok := FieldName(rt.Field(idx))
		if !ok {
			continue
		}
		fields = append(fields, Field{Key: name, Value: i.serializer.Serialize(rv.Field(idx).Interface())})
	}
	return Mapping(fields...)
}

// ElapsedMs converts d to milliseconds rounded to one decimal place, never
// below 0.1.
func ElapsedMs(d time.Duration) float64 {
	ms := math.Round(float64(d)/float64(time.Millisecond)*10) / 10
	if ms < minElapsedMs {
		return minElapsedMs
	}
	return ms
}
