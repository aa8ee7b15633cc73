package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Provider answers historical range queries from a Repository when it holds
// every requested day, and archives upstream answers otherwise. Forecast
// calls pass through.
type Provider struct {
	upstream forecast.Provider
	repo     Repository
	logger   zerolog.Logger
}

// NewProvider wraps upstream with an archive.
func NewProvider(upstream forecast.Provider, repo Repository, logger zerolog.Logger) *Provider {
	return &Provider{
		upstream: upstream,
		repo:     repo,
		logger:   logger.With().Str("component", "archive").Logger(),
	}
}

// Name returns the upstream provider name.
func (p *Provider) Name() string {
	return p.upstream.Name()
}

// FetchForecast passes through to the upstream.
func (p *Provider) FetchForecast(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error) {
	return p.upstream.FetchForecast(ctx, q)
}

// FetchHistoricalRange serves fully archived ranges locally.
func (p *Provider) FetchHistoricalRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	want := geo.DaysBetween(start, end) + 1

	archived, err := p.repo.GetRange(ctx, location, start, end)
	if err != nil {
		p.logger.Warn().Err(err).Str("location", location).Msg("archive read failed")
	} else if len(archived.Days) == want {
		p.logger.Debug().Str("location", location).Int("days", want).Msg("history served from archive")
		return archived, nil
	}

	hr, err := p.upstream.FetchHistoricalRange(ctx, location, start, end)
	if err != nil {
		return nil, err
	}

	if hr != nil && len(hr.Days) > 0 {
		if err := p.repo.Save(ctx, location, hr); err != nil {
			p.logger.Warn().Err(err).Str("location", location).Msg("archive write failed")
		}
	}

	return hr, nil
}
