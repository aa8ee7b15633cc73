package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/app"
	"github.com/areaforecast/areaforecast/internal/config"
	"github.com/areaforecast/areaforecast/internal/forecast/cache"
	"github.com/areaforecast/areaforecast/internal/forecast/weatherapi"
)

func testConfig(backend string) config.Config {
	return config.Config{
		WeatherAPI: config.WeatherAPIConfig{
			Key:        "test-key",
			BaseURL:    "http://127.0.0.1:1",
			Timeout:    time.Second,
			MaxRetries: 1,
		},
		Cache: config.CacheConfig{
			Backend:  backend,
			TTL:      time.Minute,
			StaleTTL: time.Hour,
		},
		Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
	}
}

func TestNewStack_MemoryCache(t *testing.T) {
	s, err := app.NewStack(context.Background(), testConfig(config.CacheMemory), nil, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	p, ok := s.Provider.(*cache.Provider)
	require.True(t, ok)
	assert.Equal(t, "memory", p.StoreName())
	assert.Empty(t, s.Checks)
	assert.Equal(t, []string{weatherapi.ProviderName}, s.Registry.GetProviderNames())
}

func TestNewStack_NoCache(t *testing.T) {
	s, err := app.NewStack(context.Background(), testConfig(config.CacheNone), nil, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.Same(t, s.Upstream, s.Provider)
}

func TestNewStack_RedisUnreachable(t *testing.T) {
	_, err := app.NewStack(context.Background(), testConfig(config.CacheRedis), nil, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting to redis")
}
