package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
)

// Observability owns the OpenTelemetry meter provider. Its instruments are
// exported through the default Prometheus registry, next to the promauto
// collectors, so one /metrics endpoint serves both.
type Observability struct {
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	recordCounter  otelmetric.Int64Counter
	recordDuration otelmetric.Float64Histogram
	itemCounter    otelmetric.Int64Counter
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	recordCounter, _ := meter.Int64Counter(
		"infomaniak.records.processed",
		otelmetric.WithDescription("Input records executed against the Infomaniak API"),
	)

	recordDuration, _ := meter.Float64Histogram(
		"infomaniak.records.duration",
		otelmetric.WithDescription("Record processing duration"),
		otelmetric.WithUnit("ms"),
	)

	itemCounter, _ := meter.Int64Counter(
		"infomaniak.records.items",
		otelmetric.WithDescription("Output records emitted"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		recordCounter:  recordCounter,
		recordDuration: recordDuration,
		itemCounter:    itemCounter,
	}
}

func (o *Observability) RecordExecution(ctx context.Context, exec infomaniak.Execution) {
	status := "success"
	if exec.Err != nil {
		status = "error"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("node", exec.Node),
		attribute.String("resource", exec.Resource),
		attribute.String("status", status),
	)

	if o.recordCounter != nil {
		o.recordCounter.Add(ctx, 1, attrs)
	}
	if o.recordDuration != nil {
		o.recordDuration.Record(ctx, float64(exec.Duration.Milliseconds()), attrs)
	}
	if o.itemCounter != nil && exec.ItemCount > 0 {
		o.itemCounter.Add(ctx, int64(exec.ItemCount), attrs)
	}
}

// Hook adapts RecordExecution to the executor's hook signature.
func (o *Observability) Hook() infomaniak.ExecutionHook {
	return o.RecordExecution
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
