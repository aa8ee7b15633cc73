// Package app assembles the upstream provider stack shared by the API server
// and the warm-up worker.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/handler"
	"github.com/areaforecast/areaforecast/internal/archive"
	"github.com/areaforecast/areaforecast/internal/config"
	"github.com/areaforecast/areaforecast/internal/database"
	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/forecast/cache"
	"github.com/areaforecast/areaforecast/internal/forecast/weatherapi"
	"github.com/areaforecast/areaforecast/internal/provider/resilience"
	"github.com/areaforecast/areaforecast/internal/telemetry"
)

// Stack is the wired provider chain:
// cache -> archive (optional) -> weatherapi -> resilient HTTP client.
type Stack struct {
	// Provider answers forecast and history requests through every layer.
	Provider forecast.Provider

	// Upstream is the raw WeatherAPI client, used for current conditions and
	// location search which are never cached.
	Upstream *weatherapi.Client

	// Registry tracks upstream circuit state.
	Registry *resilience.Registry

	// Checks are the dependencies readiness depends on.
	Checks []handler.DependencyCheck

	closers []func()
}

// Close releases connections opened by the stack.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewStack builds the provider chain described by cfg. Metrics may be nil.
func NewStack(ctx context.Context, cfg config.Config, metrics *telemetry.ProviderMetrics, logger zerolog.Logger) (*Stack, error) {
	s := &Stack{Registry: resilience.NewRegistry()}

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:       weatherapi.ProviderName,
		Timeout:    cfg.WeatherAPI.Timeout,
		MaxRetries: uint64(cfg.WeatherAPI.MaxRetries), //nolint:gosec // validated non-negative by envconfig default
		Registry:   s.Registry,
		Logger:     logger,
	})

	s.Upstream = weatherapi.NewClient(weatherapi.ClientConfig{
		APIKey:     cfg.WeatherAPI.Key,
		BaseURL:    cfg.WeatherAPI.BaseURL,
		HTTPClient: httpClient,
		Metrics:    metrics,
		Logger:     logger,
	})
	s.Provider = s.Upstream

	if cfg.ArchiveEnabled {
		pool, repo, err := connectArchive(ctx, cfg.Database, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.Checks = append(s.Checks, handler.DependencyCheck{Name: "database", Check: pool.Ping})
		s.Provider = archive.NewProvider(s.Provider, repo, logger)
	}

	switch cfg.Cache.Backend {
	case config.CacheNone:
		logger.Warn().Msg("forecast cache disabled")
		return s, nil
	case config.CacheRedis:
		store := cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			s.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		s.closers = append(s.closers, func() {
			if err := store.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis")
			}
		})
		s.Checks = append(s.Checks, handler.DependencyCheck{Name: "redis", Check: store.Ping})
		s.Provider = newCache(s.Provider, store, cfg, metrics, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis forecast cache connected")
	default:
		s.Provider = newCache(s.Provider, cache.NewMemoryStore(), cfg, metrics, logger)
	}

	return s, nil
}

func newCache(upstream forecast.Provider, store cache.Store, cfg config.Config, metrics *telemetry.ProviderMetrics, logger zerolog.Logger) *cache.Provider {
	return cache.NewProvider(cache.ProviderConfig{
		Provider: upstream,
		Store:    store,
		TTL:      cfg.Cache.TTL,
		StaleTTL: cfg.Cache.StaleTTL,
		Metrics:  metrics,
		Logger:   logger,
	})
}

func connectArchive(ctx context.Context, dbConfig database.Config, logger zerolog.Logger) (*pgxpool.Pool, *archive.PostgresRepository, error) {
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to archive database: %w", err)
	}

	repo := archive.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrating archive schema: %w", err)
	}

	logger.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("history archive connected")

	return pool, repo, nil
}
