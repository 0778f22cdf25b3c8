package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments the cache and fetch services record
// into. It satisfies their observer interfaces.
type Metrics struct {
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	providerCalls   metric.Int64Counter
	providerLatency metric.Float64Histogram
}

// NewMetrics creates the service instruments on a meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	cacheHits, err := meter.Int64Counter("cache_hits_total",
		metric.WithDescription("Cache reads served from a fresh entry"))
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter("cache_misses_total",
		metric.WithDescription("Cache reads that went upstream"))
	if err != nil {
		return nil, err
	}

	providerCalls, err := meter.Int64Counter("provider_calls_total",
		metric.WithDescription("Upstream provider calls by provider and outcome"))
	if err != nil {
		return nil, err
	}

	providerLatency, err := meter.Float64Histogram("provider_call_duration_seconds",
		metric.WithDescription("Upstream provider call latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		providerCalls:   providerCalls,
		providerLatency: providerLatency,
	}, nil
}

// RecordHit counts a cache read served from a fresh entry.
func (m *Metrics) RecordHit(ctx context.Context) {
	m.cacheHits.Add(ctx, 1)
}

// RecordMiss counts a cache read that went upstream.
func (m *Metrics) RecordMiss(ctx context.Context) {
	m.cacheMisses.Add(ctx, 1)
}

// ObserveProviderCall records one upstream call's outcome and latency.
func (m *Metrics) ObserveProviderCall(ctx context.Context, provider string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	m.providerCalls.Add(ctx, 1, attrs)
	m.providerLatency.Record(ctx, elapsed.Seconds(), attrs)
}
