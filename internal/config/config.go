// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/database"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the full service configuration.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	RequireTLS  bool   `envconfig:"REQUIRE_TLS" default:"false"`

	// AreaFetchConcurrency bounds the per-request fan-out. 1 is sequential.
	AreaFetchConcurrency int `envconfig:"AREA_FETCH_CONCURRENCY" default:"4"`

	// ArchiveEnabled stores resolved history days in PostgreSQL.
	ArchiveEnabled bool `envconfig:"ARCHIVE_ENABLED" default:"false"`

	WeatherAPI WeatherAPIConfig `envconfig:"WEATHERAPI"`
	Cache      CacheConfig      `envconfig:"CACHE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	Database   database.Config  `envconfig:"DB"`
	Telemetry  TelemetryConfig  `envconfig:"OTEL"`
	PubSub     PubSubConfig     `envconfig:"PUBSUB"`
	Warm       WarmConfig       `envconfig:"WARM"`
}

// WeatherAPIConfig configures the upstream weather provider.
type WeatherAPIConfig struct {
	Key        string        `envconfig:"KEY"`
	BaseURL    string        `envconfig:"BASE_URL" default:"https://api.weatherapi.com/v1"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s"`
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"3"`
}

// CacheConfig configures the point forecast cache.
type CacheConfig struct {
	Backend  string        `envconfig:"BACKEND" default:"memory"`
	TTL      time.Duration `envconfig:"TTL" default:"10m"`
	StaleTTL time.Duration `envconfig:"STALE_TTL" default:"1h"`
}

// RedisConfig is used when Cache.Backend is redis.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR" default:"localhost:6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `envconfig:"ENABLED" default:"false"`
	OTLPEndpoint string  `envconfig:"EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	SampleRatio  float64 `envconfig:"SAMPLE_RATIO" default:"1"`
}

// PubSubConfig configures the warm-up trigger subscription.
type PubSubConfig struct {
	ProjectID    string `envconfig:"PROJECT_ID"`
	Subscription string `envconfig:"SUBSCRIPTION" default:"forecast-warm"`
}

// Enabled reports whether the worker should listen for triggers.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}

// WarmConfig lists the areas the worker keeps warm.
type WarmConfig struct {
	// Areas is a ';' separated list of "latTR,lonTR,latBL,lonBL" rectangles.
	Areas          string        `envconfig:"AREAS"`
	Days           int           `envconfig:"DAYS" default:"3"`
	SamplingPoints int           `envconfig:"SAMPLING_POINTS" default:"5"`
	Concurrency    int           `envconfig:"CONCURRENCY" default:"3"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"30s"`
}

// Load reads and validates configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.WeatherAPI.Key) == "" {
		errs = append(errs, errors.New("WEATHERAPI_KEY is required"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.AreaFetchConcurrency < 1 {
		errs = append(errs, errors.New("AREA_FETCH_CONCURRENCY must be at least 1"))
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be one of memory, redis, none; got %q", c.Cache.Backend))
	}
	if c.Cache.StaleTTL < c.Cache.TTL {
		errs = append(errs, errors.New("CACHE_STALE_TTL must not be shorter than CACHE_TTL"))
	}
	if _, err := c.Warm.Rectangles(); err != nil {
		errs = append(errs, fmt.Errorf("WARM_AREAS: %w", err))
	}

	return errors.Join(errs...)
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Rectangles parses Areas.
func (c WarmConfig) Rectangles() ([]geo.Rectangle, error) {
	var rects []geo.Rectangle

	for _, raw := range strings.Split(c.Areas, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("area %q: expected 4 coordinates, got %d", raw, len(parts))
		}

		var v [4]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("area %q: %w", raw, err)
			}
			v[i] = f
		}

		r := geo.Rectangle{LatTopRight: v[0], LonTopRight: v[1], LatBottomLeft: v[2], LonBottomLeft: v[3]}
		if !geo.ValidateRectangle(r) {
			return nil, fmt.Errorf("area %q: invalid rectangle", raw)
		}
		rects = append(rects, r)
	}

	return rects, nil
}
