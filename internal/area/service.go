package area

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

const tracerName = "github.com/areaforecast/areaforecast/internal/area"

// ServiceConfig holds configuration for the area forecast service.
type ServiceConfig struct {
	// Provider is the per-point forecast provider.
	Provider forecast.Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Concurrency bounds parallel point fetches (default: 4).
	Concurrency int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service answers area forecast requests.
type Service struct {
	orchestrator *Orchestrator
	aggregator   *Aggregator
	logger       zerolog.Logger
}

// NewService creates a new area forecast service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger.With().Str("component", "area").Logger()

	return &Service{
		orchestrator: NewOrchestrator(cfg.Provider, cfg.Concurrency, logger),
		aggregator:   NewAggregator(cfg.Now),
		logger:       logger,
	}
}

// GetAreaForecast samples the requested rectangle, fetches a forecast for each
// sample point and aggregates them. Days and SamplingPoints are clamped to
// their valid ranges. Any point failure fails the whole request.
func (s *Service) GetAreaForecast(ctx context.Context, req Request) (*Forecast, error) {
	if !geo.ValidateRectangle(req.Rectangle) {
		return nil, forecast.NewValidationError("area", "coordinates are out of range or corners are inverted")
	}

	req = req.Clamp()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "area.GetAreaForecast")
	defer span.End()
	span.SetAttributes(
		attribute.Int("area.days", req.Days),
		attribute.Int("area.sampling_points", req.SamplingPoints),
	)

	start := time.Now()
	points := GenerateSamplingPoints(req.Rectangle, req.SamplingPoints)

	forecasts, err := s.orchestrator.FetchAll(ctx, points, req.Days, req.AirQuality, req.Alerts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "point forecast failed")
		return nil, err
	}

	result := s.aggregator.Aggregate(forecasts, req.Rectangle, points)

	s.logger.Info().
		Int("sampling_points", len(points)).
		Int("days", len(result.DailyForecasts)).
		Dur("duration", time.Since(start)).
		Msg("area forecast computed")

	return result, nil
}
