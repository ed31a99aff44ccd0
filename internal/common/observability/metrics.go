// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability wraps an otel meter provider publishing through the
// Prometheus exporter, recording per-step throughput and latency.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	stepCounter   otelmetric.Int64Counter
	stepDuration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	stepCounter, _ := meter.Int64Counter(
		"pipeline.steps.processed",
		otelmetric.WithDescription("Number of pipeline steps processed"),
	)

	stepDuration, _ := meter.Float64Histogram(
		"pipeline.steps.duration",
		otelmetric.WithDescription("Step processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
	}
}

// RecordStep records one processed step with its data tier and duration.
func (o *Observability) RecordStep(ctx context.Context, step, tier string, elapsed time.Duration) {
	if o.stepCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("tier", tier),
	)
	o.stepCounter.Add(ctx, 1, attrs)
	o.stepDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)
}

// Shutdown flushes the meter provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
