package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/forecast/forecasttest"
	"github.com/areaforecast/areaforecast/internal/history"
)

var now = time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC)

func today(offset int) time.Time {
	return time.Date(2026, 9, 15+offset, 0, 0, 0, 0, time.UTC)
}

func newResolver(p forecast.Provider) *history.Resolver {
	return history.NewResolver(history.ResolverConfig{
		Provider: p,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return now },
	})
}

func recentForecast(days ...int) func(context.Context, forecast.Query) (*forecast.PointForecast, error) {
	return func(_ context.Context, q forecast.Query) (*forecast.PointForecast, error) {
		fc := &forecast.PointForecast{Location: "Milan", Country: "Italy"}
		for _, d := range days {
			fc.DailyForecasts = append(fc.DailyForecasts, forecast.DailyForecast{
				Date:      today(d),
				MaxTemp:   24,
				MinTemp:   14,
				AvgTemp:   18,
				Condition: "Partly cloudy",
			})
		}
		return fc, nil
	}
}

func TestGetHistoricalData_RecentTierAnswersWithoutHistoryCall(t *testing.T) {
	provider := &forecasttest.Provider{ForecastFunc: recentForecast(-2, -1, 0, 1)}
	r := newResolver(provider)

	result, err := r.GetHistoricalData(context.Background(), "Milan", today(-2), today(-1))
	require.NoError(t, err)

	assert.Equal(t, 0, provider.HistoryCallCount())
	assert.Equal(t, history.SourceRecentForecast, result.Source)
	assert.Equal(t, "Milan", result.Location)
	assert.Equal(t, "Italy", result.Country)
	require.Len(t, result.DailyData, 2)

	d := result.DailyData[0]
	assert.Equal(t, today(-2), d.Date)
	assert.Equal(t, 19.0, d.AvgTemp)
	assert.Equal(t, 0.0, d.TotalPrecipitationMm)
	assert.Equal(t, 0.0, d.AvgHumidity)
	assert.Equal(t, 0.0, d.AvgWindSpeed)
	assert.Empty(t, d.PredominantWindDirection)

	calls := provider.ForecastCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 7, calls[0].Days)
	assert.False(t, calls[0].AirQuality)
	assert.False(t, calls[0].Alerts)
}

func historyRange(_ context.Context, _ string, start, _ time.Time) (*forecast.HistoricalRange, error) {
	return &forecast.HistoricalRange{
		Location: "Milan",
		Country:  "Italy",
		Days: []forecast.HistoricalDay{
			{
				Date:                 start,
				MaxTemp:              25,
				MinTemp:              15,
				AvgTemp:              19.5,
				TotalPrecipitationMm: 2.4,
				AvgHumidity:          70,
				MaxWindKph:           30,
				Condition:            "Light rain",
				Hours: []forecast.HourlySample{
					{WindKph: 10, WindDirection: "SW"},
					{WindKph: 20, WindDirection: "N"},
					{WindKph: 30, WindDirection: "N"},
					{WindKph: 20, WindDirection: "SW"},
					{WindKph: 10, WindDirection: "N"},
				},
			},
		},
	}, nil
}

func TestGetHistoricalData_FallsBackWhenRecentTierHasNoDays(t *testing.T) {
	provider := &forecasttest.Provider{
		ForecastFunc: recentForecast(0, 1, 2),
		HistoryFunc:  historyRange,
	}
	r := newResolver(provider)

	result, err := r.GetHistoricalData(context.Background(), "Milan", today(-3), today(-2))
	require.NoError(t, err)

	assert.Equal(t, 1, provider.HistoryCallCount())
	assert.Len(t, provider.ForecastCalls(), 1)
	assert.Equal(t, history.SourceHistory, result.Source)
	require.Len(t, result.DailyData, 1)

	d := result.DailyData[0]
	assert.Equal(t, 2.4, d.TotalPrecipitationMm)
	assert.Equal(t, 70.0, d.AvgHumidity)
	assert.Equal(t, 18.0, d.AvgWindSpeed)
	assert.Equal(t, "N", d.PredominantWindDirection)
	assert.Equal(t, 19.5, d.AvgTemp)
}

func TestGetHistoricalData_FallsBackWhenRecentTierFails(t *testing.T) {
	provider := &forecasttest.Provider{
		ForecastFunc: func(context.Context, forecast.Query) (*forecast.PointForecast, error) {
			return nil, forecast.ErrUpstreamUnavailable
		},
		HistoryFunc: historyRange,
	}
	r := newResolver(provider)

	result, err := r.GetHistoricalData(context.Background(), "Milan", today(-1), today(-1))
	require.NoError(t, err)
	assert.Equal(t, history.SourceHistory, result.Source)
	assert.Equal(t, 1, provider.HistoryCallCount())
}

func TestGetHistoricalData_OldRangeSkipsRecentTier(t *testing.T) {
	provider := &forecasttest.Provider{HistoryFunc: historyRange}
	r := newResolver(provider)

	_, err := r.GetHistoricalData(context.Background(), "Milan", today(-20), today(-10))
	require.NoError(t, err)

	assert.Empty(t, provider.ForecastCalls())
	assert.Equal(t, 1, provider.HistoryCallCount())
}

func TestGetHistoricalData_EmptyHistory(t *testing.T) {
	provider := &forecasttest.Provider{
		HistoryFunc: func(context.Context, string, time.Time, time.Time) (*forecast.HistoricalRange, error) {
			return &forecast.HistoricalRange{Location: "Milan"}, nil
		},
	}
	r := newResolver(provider)

	_, err := r.GetHistoricalData(context.Background(), "Milan", today(-20), today(-19))
	assert.True(t, errors.Is(err, forecast.ErrEmptyResult))
}

func TestGetHistoricalData_UpstreamFailure(t *testing.T) {
	provider := &forecasttest.Provider{
		HistoryFunc: func(context.Context, string, time.Time, time.Time) (*forecast.HistoricalRange, error) {
			return nil, errors.New("dial tcp: i/o timeout")
		},
	}
	r := newResolver(provider)

	_, err := r.GetHistoricalData(context.Background(), "Milan", today(-20), today(-19))
	assert.True(t, errors.Is(err, forecast.ErrUpstreamUnavailable))
}

func TestGetHistoricalData_NotFoundPropagates(t *testing.T) {
	provider := &forecasttest.Provider{
		HistoryFunc: func(context.Context, string, time.Time, time.Time) (*forecast.HistoricalRange, error) {
			return nil, forecast.ErrNotFound
		},
	}
	r := newResolver(provider)

	_, err := r.GetHistoricalData(context.Background(), "Atlantis", today(-20), today(-19))
	assert.True(t, errors.Is(err, forecast.ErrNotFound))
}

func TestGetHistoricalData_Validation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		start    time.Time
		end      time.Time
		field    string
	}{
		{"empty location", "  ", today(-2), today(-1), "location"},
		{"start after end", "Milan", today(-1), today(-2), "startDate"},
		{"end in future", "Milan", today(-2), today(1), "endDate"},
		{"range too large", "Milan", today(-40), today(-9), "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &forecasttest.Provider{}
			r := newResolver(provider)

			_, err := r.GetHistoricalData(context.Background(), tt.location, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, errors.Is(err, forecast.ErrInvalidInput))

			var ve *forecast.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)

			assert.Empty(t, provider.ForecastCalls())
			assert.Equal(t, 0, provider.HistoryCallCount())
		})
	}
}

func TestGetHistoricalData_ThirtyDayRangeAllowed(t *testing.T) {
	provider := &forecasttest.Provider{HistoryFunc: historyRange}
	r := newResolver(provider)

	_, err := r.GetHistoricalData(context.Background(), "Milan", today(-40), today(-10))
	assert.NoError(t, err)
}

func TestPredominantWindDirection(t *testing.T) {
	assert.Equal(t, history.UnknownWindDirection, history.PredominantWindDirection(nil))
	assert.Equal(t, "E", history.PredominantWindDirection([]forecast.HourlySample{
		{WindDirection: "E"}, {WindDirection: "W"}, {WindDirection: "W"}, {WindDirection: "E"},
	}))
	assert.Equal(t, "W", history.PredominantWindDirection([]forecast.HourlySample{
		{WindDirection: "E"}, {WindDirection: "W"}, {WindDirection: "W"},
	}))
}
