// Package area builds area-level forecasts from a set of per-point forecasts
// sampled inside a rectangle.
package area

import (
	"time"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
)

// Request limits.
const (
	MinDays               = 1
	MaxDays               = 14
	DefaultDays           = 3
	MinSamplingPoints     = 1
	MaxSamplingPoints     = 25
	DefaultSamplingPoints = 5
)

// Request describes an area forecast request.
type Request struct {
	Rectangle      geo.Rectangle
	Days           int
	SamplingPoints int
	AirQuality     bool
	Alerts         bool
}

// Clamp returns a copy of r with Days and SamplingPoints forced into range.
func (r Request) Clamp() Request {
	r.Days = clamp(r.Days, MinDays, MaxDays)
	r.SamplingPoints = clamp(r.SamplingPoints, MinSamplingPoints, MaxSamplingPoints)
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Area is the requested rectangle with its derived dimensions.
type Area struct {
	geo.Rectangle
	WidthKm  float64 `json:"widthKm"`
	HeightKm float64 `json:"heightKm"`
}

// NewArea computes the dimensions of r.
func NewArea(r geo.Rectangle) Area {
	return Area{Rectangle: r, WidthKm: r.WidthKm(), HeightKm: r.HeightKm()}
}

// DailyForecast is one aggregated day across all sample points.
type DailyForecast struct {
	Date                 time.Time `json:"date"`
	AvgMaxTemp           float64   `json:"avgMaxTemp"`
	AvgMinTemp           float64   `json:"avgMinTemp"`
	AvgTemp              float64   `json:"avgTemp"`
	AvgChanceOfRain      float64   `json:"avgChanceOfRain"`
	PredominantCondition string    `json:"predominantCondition"`
	ConditionIcon        string    `json:"conditionIcon"`
	ReliabilityScore     float64   `json:"reliabilityScore"`
	VariabilityScore     float64   `json:"variabilityScore"`
	ConditionsInArea     []string  `json:"conditionsInArea"`
}

// Forecast is the result of an area forecast.
type Forecast struct {
	Area           Area                `json:"area"`
	LastUpdated    time.Time           `json:"lastUpdated"`
	DailyForecasts []DailyForecast     `json:"dailyForecasts"`
	SamplingPoints []forecast.GeoPoint `json:"samplingPoints"`
}
