package adapter

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/addinhost/plugin-ffi/api"
)

const instrumentationName = "github.com/addinhost/plugin-ffi"

// Observer wraps a Dispatcher with Prometheus metrics and OpenTelemetry
// spans. The wrapped dispatcher behaves identically; observation failures
// never affect dispatch outcomes.
type Observer struct {
	next    api.Dispatcher
	metrics *Metrics
	tracer  trace.Tracer
	calls   metric.Int64Counter
}

var _ api.Dispatcher = (*Observer)(nil)

// Observe instruments next. metrics may be nil to skip Prometheus; nil
// providers fall back to the OTel globals.
func Observe(next api.Dispatcher, metrics *Metrics, tp trace.TracerProvider, mp metric.MeterProvider) *Observer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	calls, _ := mp.Meter(instrumentationName).Int64Counter("addin.dispatch.calls",
		metric.WithDescription("Dispatched invocations by interaction mode."))
	return &Observer{
		next:    next,
		metrics: metrics,
		tracer:  tp.Tracer(instrumentationName),
		calls:   calls,
	}
}

// InvokeSync implements api.Dispatcher.
func (o *Observer) InvokeSync(ctx context.Context, module string, payload json.RawMessage) api.ResponseEnvelope {
	return o.observed(ctx, api.ModeSync, module, payload, o.next.InvokeSync)
}

// InvokeExternal implements api.Dispatcher.
func (o *Observer) InvokeExternal(ctx context.Context, module string, payload json.RawMessage) api.ResponseEnvelope {
	return o.observed(ctx, api.ModeExternal, module, payload, o.next.InvokeExternal)
}

// InvokeStreaming implements api.Dispatcher. The span covers the dispatch
// only; stream progress is observable on the event channel.
func (o *Observer) InvokeStreaming(ctx context.Context, module string, payload json.RawMessage) (string, error) {
	ctx, span := o.start(ctx, api.ModeStream, module)
	defer span.End()

	begin := time.Now()
	streamID, err := o.next.InvokeStreaming(ctx, module, payload)
	outcome := "scheduled"
	if err != nil {
		outcome = "refused"
		span.RecordError(err)
	}
	o.record(ctx, api.ModeStream, module, outcome, time.Since(begin))
	return streamID, err
}

func (o *Observer) observed(ctx context.Context, mode api.Mode, module string, payload json.RawMessage,
	invoke func(context.Context, string, json.RawMessage) api.ResponseEnvelope) api.ResponseEnvelope {
	ctx, span := o.start(ctx, mode, module)
	defer span.End()

	begin := time.Now()
	resp := invoke(ctx, module, payload)
	outcome := "ok"
	if !resp.OK {
		outcome = "error"
		span.SetAttributes(attribute.String("addin.error", resp.Error))
	}
	o.record(ctx, mode, module, outcome, time.Since(begin))
	return resp
}

func (o *Observer) start(ctx context.Context, mode api.Mode, module string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "addin.dispatch."+string(mode),
		trace.WithAttributes(attribute.String("addin.module", module)))
}

func (o *Observer) record(ctx context.Context, mode api.Mode, module, outcome string, elapsed time.Duration) {
	o.calls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("addin.module", module),
		attribute.String("addin.mode", string(mode)),
		attribute.String("addin.outcome", outcome)))
	o.metrics.observe(string(mode), outcome, elapsed.Seconds())
}
