package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"taskbridge-mcp-server/internal/domain"
)

// InstrumentationName identifies the meter and tracer of this package.
const InstrumentationName = "taskbridge-mcp-server"

// DispatchObserver records tool dispatches into OpenTelemetry.
type DispatchObserver struct {
	tracer trace.Tracer

	dispatches metric.Int64Counter
	failures   metric.Int64Counter
	latency    metric.Float64Histogram
}

// NewDispatchObserver creates an observer bound to the provided meter/tracer.
// tracer may be nil to record metrics only.
func NewDispatchObserver(meter metric.Meter, tracer trace.Tracer) (*DispatchObserver, error) {
	dispatches, err := meter.Int64Counter(
		"taskbridge.tool.dispatches",
		metric.WithDescription("Number of tool calls dispatched"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"taskbridge.tool.failures",
		metric.WithDescription("Number of tool calls that produced an error result"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"taskbridge.tool.latency",
		metric.WithDescription("Tool call latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DispatchObserver{
		tracer:     tracer,
		dispatches: dispatches,
		failures:   failures,
		latency:    latency,
	}, nil
}

// NewGlobalDispatchObserver binds the observer to the global providers.
// Without an SDK installed these are no-ops.
func NewGlobalDispatchObserver() (*DispatchObserver, error) {
	return NewDispatchObserver(
		otel.GetMeterProvider().Meter(InstrumentationName),
		otel.GetTracerProvider().Tracer(InstrumentationName),
	)
}

// ObserveDispatch records one dispatch result.
func (o *DispatchObserver) ObserveDispatch(ctx context.Context, observation domain.DispatchObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", observation.ToolName),
		attribute.Bool("success", observation.Success),
	}
	if observation.ErrorKind != "" {
		attrs = append(attrs, attribute.String("error_kind", observation.ErrorKind))
	}

	options := metric.WithAttributes(attrs...)
	o.dispatches.Add(ctx, 1, options)
	if !observation.Success {
		o.failures.Add(ctx, 1, options)
	}
	o.latency.Record(ctx, observation.Duration.Seconds(), options)

	if o.tracer == nil {
		return
	}
	end := time.Now()
	_, span := o.tracer.Start(ctx, "tool.dispatch",
		trace.WithTimestamp(end.Add(-observation.Duration)),
		trace.WithAttributes(append(attrs, attribute.String("call_id", observation.CallID))...),
	)
	if !observation.Success {
		span.SetStatus(codes.Error, observation.ErrorKind)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(end))
}

var _ domain.DispatchObserver = (*DispatchObserver)(nil)
