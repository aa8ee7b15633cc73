// Package main provides the entrypoint for the forecast warm-up worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/app"
	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/config"
	"github.com/areaforecast/areaforecast/internal/telemetry"
	"github.com/areaforecast/areaforecast/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "areaforecast-worker"

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

	log.Info().Str("build_time", BuildTime).Msg("starting forecast warm worker")

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	stack, err := app.NewStack(ctx, cfg, providerMetrics, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build provider stack")
	}
	defer stack.Close()

	areaService := area.NewService(area.ServiceConfig{
		Provider:    stack.Provider,
		Logger:      log,
		Concurrency: cfg.AreaFetchConcurrency,
	})

	rects, err := cfg.Warm.Rectangles()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid warm areas")
	}

	job := worker.NewWarmJob(worker.WarmJobConfig{
		Config: worker.WarmConfig{
			Targets:        worker.TargetsFromRectangles(rects),
			Days:           cfg.Warm.Days,
			SamplingPoints: cfg.Warm.SamplingPoints,
			Concurrency:    cfg.Warm.Concurrency,
			Timeout:        cfg.Warm.Timeout,
		},
		Logger:  log,
		Service: areaService,
	})

	if !cfg.PubSub.Enabled() {
		// One-shot mode, e.g. a scheduled job.
		result := job.Run(ctx)
		if result.Failed > result.Successful {
			log.Error().Int("failed", result.Failed).Msg("warm run failed")
			stack.Close()
			os.Exit(1)
		}
		return
	}

	handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        cfg.PubSub.ProjectID,
		SubscriptionName: cfg.PubSub.Subscription,
		Dispatcher:       worker.NewDispatcher(job, log),
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer func() {
		if closeErr := handler.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close pubsub client")
		}
	}()

	// Worker also exposes health endpoint for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"version": Version,
			"warm":    job.MetricsSnapshot(),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("pubsub receive stopped")
	}

	log.Info().Msg("shutting down worker")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
