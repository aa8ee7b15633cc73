package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Default limits.
const (
	DefaultRecentWindowDays = 7
	DefaultMaxRangeDays     = 30
	recentForecastDays      = 7
)

// ResolverConfig holds configuration for the resolver.
type ResolverConfig struct {
	// Provider is the upstream forecast provider.
	Provider forecast.Provider

	// Logger for resolver operations.
	Logger zerolog.Logger

	// RecentWindowDays is how far back the start date may be for the
	// forecast tier to be tried (default: 7).
	RecentWindowDays int

	// MaxRangeDays is the largest allowed end-start span (default: 30).
	MaxRangeDays int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Resolver answers historical requests with a cheap forecast-derived tier
// and falls back to a historical range query.
type Resolver struct {
	provider         forecast.Provider
	logger           zerolog.Logger
	recentWindowDays int
	maxRangeDays     int
	now              func() time.Time
}

// NewResolver creates a new resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	recent := cfg.RecentWindowDays
	if recent == 0 {
		recent = DefaultRecentWindowDays
	}

	maxRange := cfg.MaxRangeDays
	if maxRange == 0 {
		maxRange = DefaultMaxRangeDays
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Resolver{
		provider:         cfg.Provider,
		logger:           cfg.Logger.With().Str("component", "history").Logger(),
		recentWindowDays: recent,
		maxRangeDays:     maxRange,
		now:              now,
	}
}

// GetHistoricalData returns daily records for location in [start, end].
// Dates are compared as UTC calendar days.
func (r *Resolver) GetHistoricalData(ctx context.Context, location string, start, end time.Time) (*Result, error) {
	location = strings.TrimSpace(location)
	start, end = geo.Day(start), geo.Day(end)
	today := geo.Day(r.now())

	if err := r.validate(location, start, end, today); err != nil {
		return nil, err
	}

	if geo.DaysBetween(start, today) <= r.recentWindowDays {
		result, err := r.fromRecentForecast(ctx, location, start, end)
		switch {
		case err != nil:
			r.logger.Warn().Err(err).
				Str("location", location).
				Msg("recent forecast tier failed, falling back to history query")
		case len(result.DailyData) > 0:
			return result, nil
		default:
			r.logger.Debug().
				Str("location", location).
				Msg("recent forecast tier had no matching days")
		}
	}

	return r.fromHistory(ctx, location, start, end)
}

func (r *Resolver) validate(location string, start, end, today time.Time) error {
	if location == "" {
		return forecast.NewValidationError("location", "is required")
	}
	if start.After(end) {
		return forecast.NewValidationError("startDate", "must be on or before endDate")
	}
	if end.After(today) {
		return forecast.NewValidationError("endDate", "must not be in the future")
	}
	if geo.DaysBetween(start, end) > r.maxRangeDays {
		return forecast.NewValidationError("endDate", fmt.Sprintf("range must not exceed %d days", r.maxRangeDays))
	}
	return nil
}

func (r *Resolver) fromRecentForecast(ctx context.Context, location string, start, end time.Time) (*Result, error) {
	fc, err := r.provider.FetchForecast(ctx, forecast.Query{
		Location: location,
		Days:     recentForecastDays,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Location:  fc.Location,
		Country:   fc.Country,
		StartDate: start,
		EndDate:   end,
		Source:    SourceRecentForecast,
		DailyData: []DailyRecord{},
	}

	for _, d := range fc.DailyForecasts {
		date := geo.Day(d.Date)
		if date.Before(start) || date.After(end) {
			continue
		}
		result.DailyData = append(result.DailyData, DailyRecord{
			Date:          date,
			MaxTemp:       d.MaxTemp,
			MinTemp:       d.MinTemp,
			AvgTemp:       (d.MaxTemp + d.MinTemp) / 2,
			Condition:     d.Condition,
			ConditionIcon: d.ConditionIcon,
		})
	}

	return result, nil
}

func (r *Resolver) fromHistory(ctx context.Context, location string, start, end time.Time) (*Result, error) {
	hr, err := r.provider.FetchHistoricalRange(ctx, location, start, end)
	if err != nil {
		r.logger.Error().Err(err).
			Str("location", location).
			Time("start", start).
			Time("end", end).
			Msg("history query failed")

		switch {
		case errors.Is(err, forecast.ErrNotFound), errors.Is(err, forecast.ErrEmptyResult),
			errors.Is(err, forecast.ErrUpstreamUnavailable):
			return nil, fmt.Errorf("history for %q: %w", location, err)
		default:
			return nil, fmt.Errorf("history for %q: %w: %w", location, forecast.ErrUpstreamUnavailable, err)
		}
	}

	if hr == nil || len(hr.Days) == 0 {
		return nil, fmt.Errorf("history for %q: %w", location, forecast.ErrEmptyResult)
	}

	result := &Result{
		Location:  hr.Location,
		Country:   hr.Country,
		StartDate: start,
		EndDate:   end,
		Source:    SourceHistory,
		DailyData: make([]DailyRecord, 0, len(hr.Days)),
	}
	if result.Location == "" {
		result.Location = location
	}

	for _, d := range hr.Days {
		result.DailyData = append(result.DailyData, DailyRecord{
			Date:                     geo.Day(d.Date),
			MaxTemp:                  d.MaxTemp,
			MinTemp:                  d.MinTemp,
			AvgTemp:                  d.AvgTemp,
			TotalPrecipitationMm:     d.TotalPrecipitationMm,
			AvgHumidity:              d.AvgHumidity,
			Condition:                d.Condition,
			ConditionIcon:            d.ConditionIcon,
			AvgWindSpeed:             averageWind(d),
			PredominantWindDirection: PredominantWindDirection(d.Hours),
		})
	}

	return result, nil
}

// PredominantWindDirection returns the most frequent hourly wind direction.
// Ties go to the direction seen first.
func PredominantWindDirection(hours []forecast.HourlySample) string {
	counts := make(map[string]int)
	order := make([]string, 0, 8)

	for _, h := range hours {
		if h.WindDirection == "" {
			continue
		}
		if counts[h.WindDirection] == 0 {
			order = append(order, h.WindDirection)
		}
		counts[h.WindDirection]++
	}

	best, bestCount := UnknownWindDirection, 0
	for _, dir := range order {
		if counts[dir] > bestCount {
			best, bestCount = dir, counts[dir]
		}
	}
	return best
}

// averageWind is the mean hourly wind speed, or the day's maximum when no
// hourly samples exist.
func averageWind(d forecast.HistoricalDay) float64 {
	if len(d.Hours) == 0 {
		return d.MaxWindKph
	}
	var sum float64
	for _, h := range d.Hours {
		sum += h.WindKph
	}
	return sum / float64(len(d.Hours))
}
