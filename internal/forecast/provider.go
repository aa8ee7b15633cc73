package forecast

import (
	"context"
	"time"
)

// Provider fetches per-point forecasts and historical ranges from an upstream.
type Provider interface {
	// Name returns the provider identifier used in logs and health reports.
	Name() string

	// FetchForecast returns the forecast for q.Location. Implementations
	// return ErrNotFound for unresolvable locations and ErrUpstreamUnavailable
	// for transport failures.
	FetchForecast(ctx context.Context, q Query) (*PointForecast, error)

	// FetchHistoricalRange returns observed days in [start, end].
	FetchHistoricalRange(ctx context.Context, location string, start, end time.Time) (*HistoricalRange, error)
}

// CurrentProvider returns observed conditions for a location.
type CurrentProvider interface {
	FetchCurrent(ctx context.Context, location string) (*CurrentConditions, error)
}

// LocationSearcher resolves free text into location labels.
type LocationSearcher interface {
	SearchLocations(ctx context.Context, query string) ([]string, error)
}
