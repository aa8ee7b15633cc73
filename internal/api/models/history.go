package models

// HistoryDay is one day of historical weather.
type HistoryDay struct {
	Date                     Date    `json:"date"`
	MaxTemp                  float64 `json:"maxTemp"`
	MinTemp                  float64 `json:"minTemp"`
	AvgTemp                  float64 `json:"avgTemp"`
	TotalPrecipitationMm     float64 `json:"totalPrecipitationMm"`
	AvgHumidity              float64 `json:"avgHumidity"`
	Condition                string  `json:"condition"`
	ConditionIcon            string  `json:"conditionIcon"`
	AvgWindSpeed             float64 `json:"avgWindSpeed"`
	PredominantWindDirection string  `json:"predominantWindDirection"`
}

// History is the response of GET /v1/history.
type History struct {
	Location  string       `json:"location"`
	Country   string       `json:"country"`
	StartDate Date         `json:"startDate"`
	EndDate   Date         `json:"endDate"`
	Source    string       `json:"source"`
	DailyData []HistoryDay `json:"dailyData"`
}
