package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const providerMeterName = "github.com/areaforecast/areaforecast/internal/telemetry/provider"

// ProviderMetrics records upstream weather provider calls and cache outcomes.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	staleServed     metric.Int64Counter
}

// NewProviderMetrics creates the provider instruments on the global meter.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(providerMeterName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"provider.cache.hit",
		metric.WithDescription("Number of forecast cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"provider.cache.miss",
		metric.WithDescription("Number of forecast cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	staleServed, err := meter.Int64Counter(
		"provider.cache.stale_served",
		metric.WithDescription("Number of stale entries served after a provider error"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		staleServed:     staleServed,
	}, nil
}

// RecordRequest records one upstream call. A nil receiver is a no-op.
func (m *ProviderMetrics) RecordRequest(ctx context.Context, provider, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := providerAttrs(provider, operation)
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Detached so a cancelled request still gets recorded.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCacheHit records a cache hit.
func (m *ProviderMetrics) RecordCacheHit(ctx context.Context, provider, operation string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(providerAttrs(provider, operation)...))
}

// RecordCacheMiss records a cache miss.
func (m *ProviderMetrics) RecordCacheMiss(ctx context.Context, provider, operation string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(providerAttrs(provider, operation)...))
}

// RecordStaleServed records a stale-if-error response.
func (m *ProviderMetrics) RecordStaleServed(ctx context.Context, provider, operation string) {
	if m == nil {
		return
	}
	m.staleServed.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(providerAttrs(provider, operation)...))
}

func providerAttrs(provider, operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}
}
