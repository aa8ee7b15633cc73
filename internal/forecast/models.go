// Package forecast defines the per-point weather domain shared by the area
// engine, the historical resolver and the upstream provider clients.
package forecast

import (
	"strconv"
	"strings"
	"time"
)

// Forecast day limits for a single point.
const (
	MinPointDays     = 1
	MaxPointDays     = 10
	DefaultPointDays = 3
)

// GeoPoint is a named coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// Query returns the "lat,lon" location string understood by providers.
func (p GeoPoint) Query() string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// Query describes a single-point forecast request.
type Query struct {
	Location   string
	Days       int
	AirQuality bool
	Alerts     bool
}

// NormalizeDays returns days when it is within [1,10] and 3 otherwise.
func NormalizeDays(days int) int {
	if days < MinPointDays || days > MaxPointDays {
		return DefaultPointDays
	}
	return days
}

// Astro holds astronomical data carried through unmodified.
type Astro struct {
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	MoonPhase        string `json:"moonPhase"`
	MoonIllumination int    `json:"moonIllumination"`
	IsMoonUp         bool   `json:"isMoonUp"`
	IsSunUp          bool   `json:"isSunUp"`
}

// DailyForecast is one day of a point forecast.
type DailyForecast struct {
	Date          time.Time `json:"date"`
	MaxTemp       float64   `json:"maxTemp"`
	MinTemp       float64   `json:"minTemp"`
	AvgTemp       float64   `json:"avgTemp"`
	Condition     string    `json:"condition"`
	ConditionIcon string    `json:"conditionIcon"`
	ChanceOfRain  float64   `json:"chanceOfRain"`
	Astro
}

// PointForecast is the multi-day forecast for one location.
type PointForecast struct {
	Location           string          `json:"location"`
	Country            string          `json:"country"`
	LastUpdated        time.Time       `json:"lastUpdated"`
	CurrentTemperature float64         `json:"currentTemperature"`
	Condition          string          `json:"condition"`
	ConditionIcon      string          `json:"conditionIcon"`
	Humidity           int             `json:"humidity"`
	WindSpeed          float64         `json:"windSpeed"`
	WindDirection      string          `json:"windDirection"`
	DailyForecasts     []DailyForecast `json:"dailyForecasts"`
}

// CurrentConditions is the observed weather at a location.
type CurrentConditions struct {
	Location      string    `json:"location"`
	Country       string    `json:"country"`
	LastUpdated   time.Time `json:"lastUpdated"`
	TemperatureC  float64   `json:"temperatureC"`
	FeelsLikeC    float64   `json:"feelsLikeC"`
	Condition     string    `json:"condition"`
	ConditionIcon string    `json:"conditionIcon"`
	Humidity      int       `json:"humidity"`
	WindKph       float64   `json:"windKph"`
	WindDirection string    `json:"windDirection"`
	UV            float64   `json:"uv"`
}

// HourlySample is one hour of historical observations.
type HourlySample struct {
	Time          time.Time `json:"time"`
	TempC         float64   `json:"tempC"`
	WindKph       float64   `json:"windKph"`
	WindDirection string    `json:"windDirection"`
}

// HistoricalDay is one day returned by a historical range query.
type HistoricalDay struct {
	Date                 time.Time      `json:"date"`
	MaxTemp              float64        `json:"maxTemp"`
	MinTemp              float64        `json:"minTemp"`
	AvgTemp              float64        `json:"avgTemp"`
	TotalPrecipitationMm float64        `json:"totalPrecipitationMm"`
	AvgHumidity          float64        `json:"avgHumidity"`
	MaxWindKph           float64        `json:"maxWindKph"`
	Condition            string         `json:"condition"`
	ConditionIcon        string         `json:"conditionIcon"`
	Hours                []HourlySample `json:"hours,omitempty"`
}

// HistoricalRange is the provider response for a historical query.
type HistoricalRange struct {
	Location string          `json:"location"`
	Country  string          `json:"country"`
	Days     []HistoricalDay `json:"days"`
}

// FixIconURL turns protocol-relative icon URLs into https URLs.
func FixIconURL(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}
