package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced and metered unit of upstream work.
type Operation struct {
	Service   string
	Name      string
	StartTime time.Time
	// Metrics may be nil, in which case only the span is recorded.
	Metrics *Metrics

	span trace.Span
	ctx  context.Context
}

// StartOperation opens a span named spanName and returns the derived context.
func StartOperation(ctx context.Context, spanName, service, name string, metrics *Metrics) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrServiceName, service),
		attribute.String(AttrOperationName, name),
	)
	return ctx, &Operation{
		Service:   service,
		Name:      name,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
		ctx:       ctx,
	}
}

// SetAttribute sets an attribute on the operation's span.
func (op *Operation) SetAttribute(key string, value any) {
	SetSpanAttribute(op.ctx, key, value)
}

// End closes the span and records the outcome. err may be nil.
func (op *Operation) End(err error) {
	duration := time.Since(op.StartTime)
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	if op.Metrics != nil {
		op.Metrics.RecordOperation(op.ctx, op.Service, op.Name, status, duration)
		if err != nil {
			op.Metrics.RecordError(op.ctx, "operation", op.Service)
		}
	}
}

// Duration returns the elapsed time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
