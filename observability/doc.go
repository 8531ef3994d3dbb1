// Package observability provides OpenTelemetry tracing and metrics for
// build runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanPipelineRun)
//	defer span.End()
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter("sitegen"))
//	metrics.RecordPipeline(ctx, "Projects", "ok", 12, duration)
//
// Operations combine both: StartOperation opens a span and End records the
// duration and outcome.
package observability
