package area

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/areaforecast/areaforecast/internal/forecast"
)

// DefaultConcurrency is the number of point forecasts fetched in parallel.
const DefaultConcurrency = 4

// Orchestrator fetches one forecast per sample point.
type Orchestrator struct {
	provider    forecast.Provider
	concurrency int
	logger      zerolog.Logger
}

// NewOrchestrator creates an orchestrator. A concurrency of 1 fetches points
// strictly in order.
func NewOrchestrator(provider forecast.Provider, concurrency int, logger zerolog.Logger) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		provider:    provider,
		concurrency: concurrency,
		logger:      logger,
	}
}

// FetchAll returns one forecast per point, in point order. The first failure
// cancels the remaining fetches and is returned as a *forecast.PointError
// wrapping forecast.ErrUpstreamUnavailable.
func (o *Orchestrator) FetchAll(ctx context.Context, points []forecast.GeoPoint, days int, airQuality, alerts bool) ([]*forecast.PointForecast, error) {
	results := make([]*forecast.PointForecast, len(points))
	days = forecast.NormalizeDays(days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, p := range points {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fc, err := o.provider.FetchForecast(gctx, forecast.Query{
				Location:   p.Query(),
				Days:       days,
				AirQuality: airQuality,
				Alerts:     alerts,
			})
			if err != nil {
				o.logger.Error().Err(err).
					Str("point", p.Name).
					Float64("lat", p.Latitude).
					Float64("lon", p.Longitude).
					Msg("point forecast failed")
				return &forecast.PointError{Point: p, Err: upstreamError(err)}
			}
			if fc == nil {
				return &forecast.PointError{Point: p, Err: fmt.Errorf("%w: empty forecast", forecast.ErrUpstreamUnavailable)}
			}

			results[i] = fc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func upstreamError(err error) error {
	if errors.Is(err, forecast.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", forecast.ErrUpstreamUnavailable, err)
}
