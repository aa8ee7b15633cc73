package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/models"
	"github.com/areaforecast/areaforecast/internal/api/response"
	"github.com/areaforecast/areaforecast/internal/geo"
	"github.com/areaforecast/areaforecast/internal/history"
)

// HistoryResolver answers historical weather queries.
type HistoryResolver interface {
	GetHistoricalData(ctx context.Context, location string, start, end time.Time) (*history.Result, error)
}

// HistoryHandler handles the historical weather endpoint.
type HistoryHandler struct {
	resolver HistoryResolver
	logger   zerolog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(resolver HistoryResolver, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		resolver: resolver,
		logger:   logger.With().Str("handler", "history").Logger(),
	}
}

// GetHistory handles GET /v1/history?location=&startDate=&endDate=.
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	location := q.requiredString("location")
	start := h.date(q, "startDate")
	end := h.date(q, "endDate")
	if !q.valid(w) {
		return
	}

	result, err := h.resolver.GetHistoricalData(r.Context(), location, start, end)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toHistory(result))
}

func (h *HistoryHandler) date(q *queryParams, name string) time.Time {
	raw := q.requiredString(name)
	if raw == "" {
		return time.Time{}
	}
	d, err := geo.ParseDate(raw)
	if err != nil {
		q.fail(name, "must be a date in YYYY-MM-DD format", "INVALID_DATE")
	}
	return d
}

func toHistory(res *history.Result) models.History {
	out := models.History{
		Location:  res.Location,
		Country:   res.Country,
		StartDate: models.Date(res.StartDate),
		EndDate:   models.Date(res.EndDate),
		Source:    string(res.Source),
		DailyData: make([]models.HistoryDay, 0, len(res.DailyData)),
	}

	for _, d := range res.DailyData {
		out.DailyData = append(out.DailyData, models.HistoryDay{
			Date:                     models.Date(d.Date),
			MaxTemp:                  d.MaxTemp,
			MinTemp:                  d.MinTemp,
			AvgTemp:                  d.AvgTemp,
			TotalPrecipitationMm:     d.TotalPrecipitationMm,
			AvgHumidity:              d.AvgHumidity,
			Condition:                d.Condition,
			ConditionIcon:            d.ConditionIcon,
			AvgWindSpeed:             d.AvgWindSpeed,
			PredominantWindDirection: d.PredominantWindDirection,
		})
	}

	return out
}
