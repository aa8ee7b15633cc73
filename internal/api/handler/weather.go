package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/api/models"
	"github.com/areaforecast/areaforecast/internal/api/response"
	"github.com/areaforecast/areaforecast/internal/forecast"
)

// WeatherService answers single-location weather queries.
type WeatherService interface {
	GetCurrent(ctx context.Context, location string) (*forecast.CurrentConditions, error)
	GetForecast(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error)
	SearchLocations(ctx context.Context, query string) []string
}

// WeatherHandler handles single-location weather and location search.
type WeatherHandler struct {
	service WeatherService
	logger  zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service WeatherService, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		logger:  logger.With().Str("handler", "weather").Logger(),
	}
}

// GetCurrent handles GET /v1/weather/current?location=.
func (h *WeatherHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	location := q.requiredString("location")
	if !q.valid(w) {
		return
	}

	current, err := h.service.GetCurrent(r.Context(), location)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CurrentWeather{
		Location:      current.Location,
		Country:       current.Country,
		LastUpdated:   models.Timestamp(current.LastUpdated),
		TemperatureC:  current.TemperatureC,
		FeelsLikeC:    current.FeelsLikeC,
		Condition:     current.Condition,
		ConditionIcon: current.ConditionIcon,
		Humidity:      current.Humidity,
		WindKph:       current.WindKph,
		WindDirection: current.WindDirection,
		UV:            current.UV,
	})
}

// GetForecast handles GET /v1/weather/forecast?location=&days=.
func (h *WeatherHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	query := forecast.Query{
		Location:   q.requiredString("location"),
		Days:       q.optionalInt("days", forecast.DefaultPointDays),
		AirQuality: q.optionalBool("airQuality"),
		Alerts:     q.optionalBool("alerts"),
	}
	if !q.valid(w) {
		return
	}

	h.respondForecast(w, r, query)
}

// PostForecast handles POST /v1/weather/forecast.
func (h *WeatherHandler) PostForecast(w http.ResponseWriter, r *http.Request) {
	var input models.WeatherForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	h.respondForecast(w, r, forecast.Query{
		Location:   input.Location,
		Days:       input.Days,
		AirQuality: input.AirQuality,
		Alerts:     input.Alerts,
	})
}

func (h *WeatherHandler) respondForecast(w http.ResponseWriter, r *http.Request, query forecast.Query) {
	pf, err := h.service.GetForecast(r.Context(), query)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toWeatherForecast(pf))
}

// SearchLocations handles GET /v1/locations/search?q=.
// Search failures degrade to an empty result list.
func (h *WeatherHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := newQueryParams(r).raw("q")

	response.JSON(w, r, http.StatusOK, models.LocationSearch{
		Query:   query,
		Results: h.service.SearchLocations(r.Context(), query),
	})
}

func toWeatherForecast(pf *forecast.PointForecast) models.WeatherForecast {
	out := models.WeatherForecast{
		Location:           pf.Location,
		Country:            pf.Country,
		LastUpdated:        models.Timestamp(pf.LastUpdated),
		CurrentTemperature: pf.CurrentTemperature,
		Condition:          pf.Condition,
		ConditionIcon:      pf.ConditionIcon,
		Humidity:           pf.Humidity,
		WindSpeed:          pf.WindSpeed,
		WindDirection:      pf.WindDirection,
		DailyForecasts:     make([]models.WeatherDay, 0, len(pf.DailyForecasts)),
	}

	for _, d := range pf.DailyForecasts {
		out.DailyForecasts = append(out.DailyForecasts, models.WeatherDay{
			Date:          models.Date(d.Date),
			MaxTemp:       d.MaxTemp,
			MinTemp:       d.MinTemp,
			AvgTemp:       d.AvgTemp,
			Condition:     d.Condition,
			ConditionIcon: d.ConditionIcon,
			ChanceOfRain:  d.ChanceOfRain,
			Astronomy: models.Astronomy{
				Sunrise:          d.Sunrise,
				Sunset:           d.Sunset,
				Moonrise:         d.Moonrise,
				Moonset:          d.Moonset,
				MoonPhase:        d.MoonPhase,
				MoonIllumination: d.MoonIllumination,
				IsMoonUp:         d.IsMoonUp,
				IsSunUp:          d.IsSunUp,
			},
		})
	}

	return out
}
