// Package main provides the entrypoint for the area forecast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api"
	"github.com/areaforecast/areaforecast/internal/api/middleware"
	"github.com/areaforecast/areaforecast/internal/app"
	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/config"
	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/history"
	"github.com/areaforecast/areaforecast/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "areaforecast-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(cfg.Level())

	log.Info().
		Str("build_time", BuildTime).
		Str("environment", cfg.Environment).
		Msg("starting area forecast API")

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Upstream provider chain
	stack, err := app.NewStack(ctx, cfg, providerMetrics, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build provider stack")
		os.Exit(1)
	}
	defer stack.Close()

	areaService := area.NewService(area.ServiceConfig{
		Provider:    stack.Provider,
		Logger:      log,
		Concurrency: cfg.AreaFetchConcurrency,
	})

	historyResolver := history.NewResolver(history.ResolverConfig{
		Provider: stack.Provider,
		Logger:   log,
	})

	weatherService := forecast.NewService(forecast.ServiceConfig{
		Provider: stack.Provider,
		Current:  stack.Upstream,
		Searcher: stack.Upstream,
		Logger:   log,
	})

	log.Info().
		Str("cache", cfg.Cache.Backend).
		Bool("archive", cfg.ArchiveEnabled).
		Int("area_concurrency", cfg.AreaFetchConcurrency).
		Msg("services initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		Metrics:         metrics,
		AreaService:     areaService,
		HistoryResolver: historyResolver,
		WeatherService:  weatherService,
		Registry:        stack.Registry,
		Checks:          stack.Checks,
		RequireTLS:      cfg.RequireTLS,
	})

	// Area requests fan out upstream; allow for the upstream timeout.
	writeTimeout := cfg.WeatherAPI.Timeout + 15*time.Second

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
