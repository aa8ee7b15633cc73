// Package forecasttest provides an in-memory forecast.Provider for tests.
package forecasttest

import (
	"context"
	"sync"
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
)

// Provider is a scriptable forecast.Provider that records its calls.
type Provider struct {
	mu sync.Mutex

	// ForecastFunc answers FetchForecast. Defaults to a single sunny day.
	ForecastFunc func(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error)

	// HistoryFunc answers FetchHistoricalRange. Defaults to ErrEmptyResult.
	HistoryFunc func(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error)

	forecastCalls []forecast.Query
	historyCalls  int
}

// Name implements forecast.Provider.
func (p *Provider) Name() string {
	return "fake"
}

// FetchForecast implements forecast.Provider.
func (p *Provider) FetchForecast(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error) {
	p.mu.Lock()
	p.forecastCalls = append(p.forecastCalls, q)
	fn := p.ForecastFunc
	p.mu.Unlock()

	if fn == nil {
		return &forecast.PointForecast{
			Location:    q.Location,
			LastUpdated: time.Now(),
			DailyForecasts: []forecast.DailyForecast{
				{Date: time.Now().UTC().Truncate(24 * time.Hour), MaxTemp: 20, MinTemp: 10, Condition: "Sunny"},
			},
		}, nil
	}
	return fn(ctx, q)
}

// FetchHistoricalRange implements forecast.Provider.
func (p *Provider) FetchHistoricalRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	p.mu.Lock()
	p.historyCalls++
	fn := p.HistoryFunc
	p.mu.Unlock()

	if fn == nil {
		return nil, forecast.ErrEmptyResult
	}
	return fn(ctx, location, start, end)
}

// ForecastCalls returns the queries received so far.
func (p *Provider) ForecastCalls() []forecast.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]forecast.Query, len(p.forecastCalls))
	copy(out, p.forecastCalls)
	return out
}

// HistoryCallCount returns the number of historical range calls.
func (p *Provider) HistoryCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.historyCalls
}
