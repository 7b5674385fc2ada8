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

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
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

	requestCounter, _ := meter.Int64Counter(
		"requests.processed",
		otelmetric.WithDescription("Number of support requests processed"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"requests.duration",
		otelmetric.WithDescription("Support request handling duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}
}

func (o *Observability) RecordRequestProcessed(ctx context.Context, decision string) {
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("decision", decision),
		))
	}
}

func (o *Observability) RecordRequestDuration(ctx context.Context, duration time.Duration, decision string) {
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("decision", decision),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}
