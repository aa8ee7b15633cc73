package models

// WeatherForecastRequest is the POST /v1/weather/forecast body.
type WeatherForecastRequest struct {
	Location   string `json:"location"`
	Days       int    `json:"days,omitempty"`
	AirQuality bool   `json:"airQuality,omitempty"`
	Alerts     bool   `json:"alerts,omitempty"`
}

// Astronomy holds sun and moon data for a day.
type Astronomy struct {
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	MoonPhase        string `json:"moonPhase"`
	MoonIllumination int    `json:"moonIllumination"`
	IsMoonUp         bool   `json:"isMoonUp"`
	IsSunUp          bool   `json:"isSunUp"`
}

// WeatherDay is one day of a single-location forecast.
type WeatherDay struct {
	Date          Date      `json:"date"`
	MaxTemp       float64   `json:"maxTemp"`
	MinTemp       float64   `json:"minTemp"`
	AvgTemp       float64   `json:"avgTemp"`
	Condition     string    `json:"condition"`
	ConditionIcon string    `json:"conditionIcon"`
	ChanceOfRain  float64   `json:"chanceOfRain"`
	Astronomy     Astronomy `json:"astronomy"`
}

// WeatherForecast is the response of the single-location forecast endpoints.
type WeatherForecast struct {
	Location           string       `json:"location"`
	Country            string       `json:"country"`
	LastUpdated        Timestamp    `json:"lastUpdated"`
	CurrentTemperature float64      `json:"currentTemperature"`
	Condition          string       `json:"condition"`
	ConditionIcon      string       `json:"conditionIcon"`
	Humidity           int          `json:"humidity"`
	WindSpeed          float64      `json:"windSpeed"`
	WindDirection      string       `json:"windDirection"`
	DailyForecasts     []WeatherDay `json:"dailyForecasts"`
}

// CurrentWeather is the response of GET /v1/weather/current.
type CurrentWeather struct {
	Location      string    `json:"location"`
	Country       string    `json:"country"`
	LastUpdated   Timestamp `json:"lastUpdated"`
	TemperatureC  float64   `json:"temperatureC"`
	FeelsLikeC    float64   `json:"feelsLikeC"`
	Condition     string    `json:"condition"`
	ConditionIcon string    `json:"conditionIcon"`
	Humidity      int       `json:"humidity"`
	WindKph       float64   `json:"windKph"`
	WindDirection string    `json:"windDirection"`
	UV            float64   `json:"uv"`
}

// LocationSearch is the response of GET /v1/locations/search.
type LocationSearch struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
}
