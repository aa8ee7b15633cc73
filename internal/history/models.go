// Package history resolves historical weather for a location and date range.
package history

import "time"

// Source identifies which tier produced a result.
type Source string

// Result sources.
const (
	SourceRecentForecast Source = "recent_forecast"
	SourceHistory        Source = "history"
)

// UnknownWindDirection is reported when a day has no hourly wind samples.
const UnknownWindDirection = "N/A"

// DailyRecord is one resolved historical day.
type DailyRecord struct {
	Date                     time.Time `json:"date"`
	MaxTemp                  float64   `json:"maxTemp"`
	MinTemp                  float64   `json:"minTemp"`
	AvgTemp                  float64   `json:"avgTemp"`
	TotalPrecipitationMm     float64   `json:"totalPrecipitationMm"`
	AvgHumidity              float64   `json:"avgHumidity"`
	Condition                string    `json:"condition"`
	ConditionIcon            string    `json:"conditionIcon"`
	AvgWindSpeed             float64   `json:"avgWindSpeed"`
	PredominantWindDirection string    `json:"predominantWindDirection"`
}

// Result is the answer to a historical data request.
type Result struct {
	Location  string        `json:"location"`
	Country   string        `json:"country"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"`
	Source    Source        `json:"source"`
	DailyData []DailyRecord `json:"dailyData"`
}
