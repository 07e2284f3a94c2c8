package observability

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusProvider is an OTel MeterProvider whose instruments are exposed
// through a private Prometheus registry.
type PrometheusProvider struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// NewPrometheusProvider creates a MeterProvider backed by a Prometheus exporter.
// Each call creates an independent registry to avoid collector conflicts when
// called multiple times.
func NewPrometheusProvider() (*PrometheusProvider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &PrometheusProvider{
		provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)),
		registry: registry,
	}, nil
}

// Meter returns the rbset meter.
func (pp *PrometheusProvider) Meter() metric.Meter {
	return pp.provider.Meter(MeterName)
}

// Gatherer exposes the underlying registry.
func (pp *PrometheusProvider) Gatherer() prometheus.Gatherer {
	return pp.registry
}

// WriteText gathers every metric family and writes it in the Prometheus text format.
func (pp *PrometheusProvider) WriteText(out io.Writer) error {
	families, err := pp.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(out, family)
		if err != nil {
			return fmt.Errorf("write %s: %w", family.GetName(), err)
		}
	}

	return nil
}

// Shutdown flushes and stops the meter provider.
func (pp *PrometheusProvider) Shutdown(ctx context.Context) error {
	err := pp.provider.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}

	return nil
}
