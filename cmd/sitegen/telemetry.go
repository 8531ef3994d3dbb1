package main

import (
	"context"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/sitekit/logger"
	"github.com/kbukum/sitekit/observability"
	"github.com/kbukum/sitekit/site"
	"github.com/kbukum/sitekit/version"
)

const shutdownTimeout = 5 * time.Second

type telemetry struct {
	tracer  *sdktrace.TracerProvider
	meter   *sdkmetric.MeterProvider
	metrics *observability.Metrics
}

// startTelemetry initializes OTLP export when tracing is enabled. A disabled
// config yields an empty telemetry whose shutdown is a no-op.
func startTelemetry(ctx context.Context, cfg *site.Config) (*telemetry, error) {
	t := &telemetry{}
	if !cfg.Tracing.Enabled {
		return t, nil
	}
	info := version.Get()

	tp, err := observability.InitTracer(ctx, &observability.TracerConfig{
		ServiceName:    site.ServiceName,
		ServiceVersion: info.Version,
		Environment:    "build",
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	t.tracer = tp

	mc := observability.DefaultMeterConfig(site.ServiceName)
	mc.ServiceVersion = info.Version
	mc.Environment = "build"
	mc.Endpoint = cfg.Tracing.Endpoint
	mc.Insecure = cfg.Tracing.Insecure
	mp, err := observability.InitMeter(ctx, &mc)
	if err != nil {
		t.shutdown(logger.GetGlobalLogger())
		return nil, err
	}
	t.meter = mp

	metrics, err := observability.NewMetrics(observability.Meter(site.ServiceName))
	if err != nil {
		t.shutdown(logger.GetGlobalLogger())
		return nil, err
	}
	t.metrics = metrics
	return t, nil
}

// shutdown flushes pending spans and metrics.
func (t *telemetry) shutdown(log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			log.Warn("meter shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}
}
