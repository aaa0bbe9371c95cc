package daemon

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DaemonMetrics holds refresher metrics using OTEL semantic conventions
type DaemonMetrics struct {
	refreshes       metric.Int64Counter
	refreshDuration metric.Float64Histogram
	catalogRegions  metric.Int64Gauge
	catalogChanges  metric.Int64Counter
}

// NewDaemonMetrics creates refresher metrics on the global meter provider.
func NewDaemonMetrics() (*DaemonMetrics, error) {
	return newDaemonMetricsWithProvider(otel.GetMeterProvider())
}

func newDaemonMetricsWithProvider(provider metric.MeterProvider) (*DaemonMetrics, error) {
	meter := provider.Meter("regiondex.daemon")

	refreshes, err := meter.Int64Counter(
		"regiondex.daemon.refreshes",
		metric.WithDescription("Number of catalog refresh runs"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	refreshDuration, err := meter.Float64Histogram(
		"regiondex.daemon.refresh.duration",
		metric.WithDescription("Duration of catalog refreshes"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	catalogRegions, err := meter.Int64Gauge(
		"regiondex.catalog.regions",
		metric.WithDescription("Number of regions in the published snapshot"),
		metric.WithUnit("{region}"),
	)
	if err != nil {
		return nil, err
	}

	catalogChanges, err := meter.Int64Counter(
		"regiondex.catalog.changes",
		metric.WithDescription("Regions added, removed or modified by refreshes"),
		metric.WithUnit("{region}"),
	)
	if err != nil {
		return nil, err
	}

	return &DaemonMetrics{
		refreshes:       refreshes,
		refreshDuration: refreshDuration,
		catalogRegions:  catalogRegions,
		catalogChanges:  catalogChanges,
	}, nil
}

// RecordRefresh records a refresh run with status and the source it ended on.
func (m *DaemonMetrics) RecordRefresh(ctx context.Context, status string, source string) {
	m.refreshes.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", status),
			attribute.String("catalog.source", source),
		),
	)
}

// RecordRefreshDuration records refresh duration
func (m *DaemonMetrics) RecordRefreshDuration(ctx context.Context, durationSeconds float64, status string) {
	m.refreshDuration.Record(ctx, durationSeconds,
		metric.WithAttributes(
			attribute.String("status", status),
		),
	)
}

// RecordCatalogSize records the region count of the published snapshot.
func (m *DaemonMetrics) RecordCatalogSize(ctx context.Context, regions int64, source string) {
	m.catalogRegions.Record(ctx, regions,
		metric.WithAttributes(
			attribute.String("catalog.source", source),
		),
	)
}

// RecordCatalogChanges records region changes by kind.
func (m *DaemonMetrics) RecordCatalogChanges(ctx context.Context, kind string, count int64) {
	m.catalogChanges.Add(ctx, count,
		metric.WithAttributes(
			attribute.String("change", kind),
		),
	)
}
