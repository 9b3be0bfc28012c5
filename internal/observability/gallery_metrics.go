package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Image load outcomes
const (
	OutcomeLoaded    = "loaded"
	OutcomeCached    = "cached"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// GalleryMetrics holds the instruments for image loading and gallery views
type GalleryMetrics struct {
	imageLoads        metric.Int64Counter
	loadAttempts      metric.Int64Histogram
	filterTransitions metric.Int64Counter
	activeViews       metric.Int64UpDownCounter
}

// NewGalleryMetrics creates and registers gallery metrics
func NewGalleryMetrics(meter metric.Meter) (*GalleryMetrics, error) {
	imageLoads, err := meter.Int64Counter(
		"gallery.image.load",
		metric.WithDescription("Image loads by outcome"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, err
	}

	loadAttempts, err := meter.Int64Histogram(
		"gallery.image.load.attempts",
		metric.WithDescription("Fallback candidates tried per image load"),
		metric.WithUnit("{candidate}"),
	)
	if err != nil {
		return nil, err
	}

	filterTransitions, err := meter.Int64Counter(
		"gallery.filter.transitions",
		metric.WithDescription("Committed category filter transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	activeViews, err := meter.Int64UpDownCounter(
		"gallery.views.active",
		metric.WithDescription("Mounted gallery views"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return &GalleryMetrics{
		imageLoads:        imageLoads,
		loadAttempts:      loadAttempts,
		filterTransitions: filterTransitions,
		activeViews:       activeViews,
	}, nil
}

// NewNopGalleryMetrics returns metrics backed by a no-op meter
func NewNopGalleryMetrics() *GalleryMetrics {
	m, _ := NewGalleryMetrics(noop.NewMeterProvider().Meter(instrumentationName)) //nolint:errcheck // noop meter never fails
	return m
}

// RecordImageLoad records the outcome and number of candidates tried
func (m *GalleryMetrics) RecordImageLoad(ctx context.Context, outcome string, attempts int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.imageLoads.Add(ctx, 1, attrs)
	m.loadAttempts.Record(ctx, int64(attempts), attrs)
}

// RecordFilterTransition records a committed filter change
func (m *GalleryMetrics) RecordFilterTransition(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.filterTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// ViewMounted increments the active view gauge
func (m *GalleryMetrics) ViewMounted(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeViews.Add(ctx, 1)
}

// ViewTornDown decrements the active view gauge
func (m *GalleryMetrics) ViewTornDown(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeViews.Add(ctx, -1)
}
