package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the name of the global meter
const MeterName = "ticket-ledger"

// MetricOpts describes a metric instrument
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an Int64Counter
type Counter struct {
	inner metric.Int64Counter
}

// NewCounter creates a monotonic counter
func NewCounter(opts MetricOpts) (*Counter, error) {
	meter := otel.GetMeterProvider().Meter(MeterName)
	inner, err := meter.Int64Counter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{inner: inner}, nil
}

// Inc increments the counter by one
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Add increments the counter
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	if c == nil || c.inner == nil {
		return
	}
	c.inner.Add(ctx, value, metric.WithAttributes(attrs...))
}

// UpDownCounter wraps an Int64UpDownCounter
type UpDownCounter struct {
	inner metric.Int64UpDownCounter
}

// NewUpDownCounter creates a counter that can go up and down
func NewUpDownCounter(opts MetricOpts) (*UpDownCounter, error) {
	meter := otel.GetMeterProvider().Meter(MeterName)
	inner, err := meter.Int64UpDownCounter(opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &UpDownCounter{inner: inner}, nil
}

// Inc adds one
func (c *UpDownCounter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Dec subtracts one
func (c *UpDownCounter) Dec(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, -1, attrs...)
}

// Add adds a (possibly negative) value
func (c *UpDownCounter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	if c == nil || c.inner == nil {
		return
	}
	c.inner.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Histogram wraps a Float64Histogram
type Histogram struct {
	inner metric.Float64Histogram
}

// NewHistogram creates a histogram with default buckets
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	return newHistogram(opts, nil)
}

// NewHistogramWithBuckets creates a histogram with explicit bucket boundaries
func NewHistogramWithBuckets(opts MetricOpts, buckets []float64) (*Histogram, error) {
	return newHistogram(opts, buckets)
}

func newHistogram(opts MetricOpts, buckets []float64) (*Histogram, error) {
	meter := otel.GetMeterProvider().Meter(MeterName)

	instrumentOpts := []metric.Float64HistogramOption{
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	}
	if len(buckets) > 0 {
		instrumentOpts = append(instrumentOpts, metric.WithExplicitBucketBoundaries(buckets...))
	}

	inner, err := meter.Float64Histogram(opts.Name, instrumentOpts...)
	if err != nil {
		return nil, err
	}
	return &Histogram{inner: inner}, nil
}

// Record records a sample
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	if h == nil || h.inner == nil {
		return
	}
	h.inner.Record(ctx, value, metric.WithAttributes(attrs...))
}
