package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/telemetry"
)

// ProviderConfig holds configuration for the caching provider.
type ProviderConfig struct {
	// Provider is the upstream being cached.
	Provider forecast.Provider

	// Store holds cached entries (default: in-memory).
	Store Store

	// TTL is how long a forecast is served without refetching (default: 10 minutes).
	TTL time.Duration

	// StaleTTL allows serving older data on upstream errors (default: 1 hour).
	StaleTTL time.Duration

	// Metrics records hits and misses (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for cache operations.
	Logger zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Provider caches forecast calls of an upstream forecast.Provider.
// Historical queries pass through.
type Provider struct {
	upstream forecast.Provider
	store    Store
	ttl      time.Duration
	staleTTL time.Duration
	metrics  *telemetry.ProviderMetrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewProvider wraps cfg.Provider with a forecast cache.
func NewProvider(cfg ProviderConfig) *Provider {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	staleTTL := cfg.StaleTTL
	if staleTTL == 0 {
		staleTTL = time.Hour
	}
	if staleTTL < ttl {
		staleTTL = ttl
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Provider{
		upstream: cfg.Provider,
		store:    store,
		ttl:      ttl,
		staleTTL: staleTTL,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger.With().Str("component", "forecast_cache").Str("store", store.Name()).Logger(),
		now:      now,
	}
}

// Name returns the upstream provider name.
func (p *Provider) Name() string {
	return p.upstream.Name()
}

// StoreName returns the backing store name.
func (p *Provider) StoreName() string {
	return p.store.Name()
}

// FetchForecast returns a cached forecast when fresh, otherwise fetches and
// caches it. On upstream unavailability an entry younger than StaleTTL is
// served instead of the error.
func (p *Provider) FetchForecast(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error) {
	key := Key(q)

	entry, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		ok = false
	}

	now := p.now()
	if ok && now.Before(entry.FetchedAt.Add(p.ttl)) {
		p.metrics.RecordCacheHit(ctx, p.upstream.Name(), "forecast")
		return entry.Forecast, nil
	}
	p.metrics.RecordCacheMiss(ctx, p.upstream.Name(), "forecast")

	fc, err := p.upstream.FetchForecast(ctx, q)
	if err != nil {
		if ok && errors.Is(err, forecast.ErrUpstreamUnavailable) && now.Before(entry.FetchedAt.Add(p.staleTTL)) {
			p.logger.Warn().Err(err).
				Str("key", key).
				Time("fetched_at", entry.FetchedAt).
				Msg("serving stale forecast due to provider error")
			p.metrics.RecordStaleServed(ctx, p.upstream.Name(), "forecast")
			return entry.Forecast, nil
		}
		return nil, err
	}

	if err := p.store.Set(ctx, key, &Entry{Forecast: fc, FetchedAt: now}, p.staleTTL); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return fc, nil
}

// FetchHistoricalRange passes through to the upstream.
func (p *Provider) FetchHistoricalRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	return p.upstream.FetchHistoricalRange(ctx, location, start, end)
}

// Key builds the cache key for q.
func Key(q forecast.Query) string {
	return fmt.Sprintf("%s|%d|%t|%t",
		strings.ToLower(strings.TrimSpace(q.Location)),
		forecast.NormalizeDays(q.Days),
		q.AirQuality,
		q.Alerts,
	)
}
