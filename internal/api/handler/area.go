package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/models"
	"github.com/areaforecast/areaforecast/internal/api/response"
	"github.com/areaforecast/areaforecast/internal/area"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// AreaForecaster produces aggregated forecasts for a rectangle.
type AreaForecaster interface {
	GetAreaForecast(ctx context.Context, req area.Request) (*area.Forecast, error)
}

// AreaHandler handles area forecast endpoints.
type AreaHandler struct {
	service AreaForecaster
	logger  zerolog.Logger
}

// NewAreaHandler creates a new AreaHandler.
func NewAreaHandler(service AreaForecaster, logger zerolog.Logger) *AreaHandler {
	return &AreaHandler{
		service: service,
		logger:  logger.With().Str("handler", "area").Logger(),
	}
}

// GetAreaForecast handles GET /v1/area-forecast.
func (h *AreaHandler) GetAreaForecast(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	req := area.Request{
		Rectangle: geo.Rectangle{
			LatTopRight:   q.requiredFloat("latTopRight"),
			LonTopRight:   q.requiredFloat("lonTopRight"),
			LatBottomLeft: q.requiredFloat("latBottomLeft"),
			LonBottomLeft: q.requiredFloat("lonBottomLeft"),
		},
		Days:           q.optionalInt("days", area.DefaultDays),
		SamplingPoints: q.optionalInt("samplingPoints", area.DefaultSamplingPoints),
		AirQuality:     q.optionalBool("airQuality"),
		Alerts:         q.optionalBool("alerts"),
	}
	if !q.valid(w) {
		return
	}

	h.respond(w, r, req)
}

// PostAreaForecast handles POST /v1/area-forecast.
func (h *AreaHandler) PostAreaForecast(w http.ResponseWriter, r *http.Request) {
	var input models.AreaForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	coord := func(name string, v *float64) float64 {
		if v == nil {
			fieldErrors = append(fieldErrors, models.FieldError{Field: name, Message: "is required", Code: "REQUIRED"})
			return 0
		}
		return *v
	}

	req := area.Request{
		Rectangle: geo.Rectangle{
			LatTopRight:   coord("latTopRight", input.LatTopRight),
			LonTopRight:   coord("lonTopRight", input.LonTopRight),
			LatBottomLeft: coord("latBottomLeft", input.LatBottomLeft),
			LonBottomLeft: coord("lonBottomLeft", input.LonBottomLeft),
		},
		Days:           input.Days,
		SamplingPoints: input.SamplingPoints,
		AirQuality:     input.AirQuality,
		Alerts:         input.Alerts,
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "missing area coordinates", fieldErrors)
		return
	}
	if req.Days == 0 {
		req.Days = area.DefaultDays
	}
	if req.SamplingPoints == 0 {
		req.SamplingPoints = area.DefaultSamplingPoints
	}

	h.respond(w, r, req)
}

func (h *AreaHandler) respond(w http.ResponseWriter, r *http.Request, req area.Request) {
	result, err := h.service.GetAreaForecast(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAreaForecast(result))
}

func toAreaForecast(f *area.Forecast) models.AreaForecast {
	out := models.AreaForecast{
		Area: models.AreaBounds{
			LatTopRight:   f.Area.LatTopRight,
			LonTopRight:   f.Area.LonTopRight,
			LatBottomLeft: f.Area.LatBottomLeft,
			LonBottomLeft: f.Area.LonBottomLeft,
			WidthKm:       f.Area.WidthKm,
			HeightKm:      f.Area.HeightKm,
		},
		LastUpdated:    models.Timestamp(f.LastUpdated),
		DailyForecasts: make([]models.AreaDailyForecast, 0, len(f.DailyForecasts)),
		SamplingPoints: make([]models.SamplingPoint, 0, len(f.SamplingPoints)),
	}

	for _, d := range f.DailyForecasts {
		conditions := d.ConditionsInArea
		if conditions == nil {
			conditions = []string{}
		}
		out.DailyForecasts = append(out.DailyForecasts, models.AreaDailyForecast{
			Date:                 models.Date(d.Date),
			AvgMaxTemp:           d.AvgMaxTemp,
			AvgMinTemp:           d.AvgMinTemp,
			AvgTemp:              d.AvgTemp,
			AvgChanceOfRain:      d.AvgChanceOfRain,
			PredominantCondition: d.PredominantCondition,
			ConditionIcon:        d.ConditionIcon,
			ReliabilityScore:     d.ReliabilityScore,
			VariabilityScore:     d.VariabilityScore,
			ConditionsInArea:     conditions,
		})
	}

	for _, p := range f.SamplingPoints {
		out.SamplingPoints = append(out.SamplingPoints, models.SamplingPoint{
			Lat:  p.Latitude,
			Lon:  p.Longitude,
			Name: p.Name,
		})
	}

	return out
}
