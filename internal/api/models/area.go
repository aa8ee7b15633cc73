package models

// AreaForecastRequest is the POST /v1/area-forecast body.
// Zero Days and SamplingPoints fall back to the service defaults.
type AreaForecastRequest struct {
	LatTopRight    *float64 `json:"latTopRight"`
	LonTopRight    *float64 `json:"lonTopRight"`
	LatBottomLeft  *float64 `json:"latBottomLeft"`
	LonBottomLeft  *float64 `json:"lonBottomLeft"`
	Days           int      `json:"days,omitempty"`
	SamplingPoints int      `json:"samplingPoints,omitempty"`
	AirQuality     bool     `json:"airQuality,omitempty"`
	Alerts         bool     `json:"alerts,omitempty"`
}

// AreaBounds describes the requested rectangle and its size.
type AreaBounds struct {
	LatTopRight   float64 `json:"latTopRight"`
	LonTopRight   float64 `json:"lonTopRight"`
	LatBottomLeft float64 `json:"latBottomLeft"`
	LonBottomLeft float64 `json:"lonBottomLeft"`
	WidthKm       float64 `json:"widthKm"`
	HeightKm      float64 `json:"heightKm"`
}

// AreaDailyForecast is the aggregated forecast for one day.
type AreaDailyForecast struct {
	Date                 Date     `json:"date"`
	AvgMaxTemp           float64  `json:"avgMaxTemp"`
	AvgMinTemp           float64  `json:"avgMinTemp"`
	AvgTemp              float64  `json:"avgTemp"`
	AvgChanceOfRain      float64  `json:"avgChanceOfRain"`
	PredominantCondition string   `json:"predominantCondition"`
	ConditionIcon        string   `json:"conditionIcon"`
	ReliabilityScore     float64  `json:"reliabilityScore"`
	VariabilityScore     float64  `json:"variabilityScore"`
	ConditionsInArea     []string `json:"conditionsInArea"`
}

// AreaForecast is the response of the area forecast endpoints.
type AreaForecast struct {
	Area           AreaBounds          `json:"area"`
	LastUpdated    Timestamp           `json:"lastUpdated"`
	DailyForecasts []AreaDailyForecast `json:"dailyForecasts"`
	SamplingPoints []SamplingPoint     `json:"samplingPoints"`
}
