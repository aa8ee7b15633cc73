// Package weatherapi implements forecast.Provider on top of the WeatherAPI.com
// REST API.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areaforecast/areaforecast/internal/forecast"
	"github.com/areaforecast/areaforecast/internal/geo"
	"github.com/areaforecast/areaforecast/internal/provider/resilience"
	"github.com/areaforecast/areaforecast/internal/telemetry"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "weatherapi"

	// DefaultBaseURL is the WeatherAPI.com v1 base URL.
	DefaultBaseURL = "https://api.weatherapi.com/v1"

	// errCodeNoLocation is returned by WeatherAPI for unresolvable q values.
	errCodeNoLocation = 1006

	localTimeLayout = "2006-01-02 15:04"
)

// ClientConfig holds configuration for the WeatherAPI client.
type ClientConfig struct {
	// APIKey is the WeatherAPI.com key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to WeatherAPI.com v1).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Metrics records request durations (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a WeatherAPI.com client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	metrics    *telemetry.ProviderMetrics
	logger     zerolog.Logger
}

// NewClient creates a new WeatherAPI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchForecast fetches a multi-day forecast for q.Location.
func (c *Client) FetchForecast(ctx context.Context, q forecast.Query) (*forecast.PointForecast, error) {
	params := url.Values{}
	params.Set("q", q.Location)
	params.Set("days", fmt.Sprint(forecast.NormalizeDays(q.Days)))
	params.Set("aqi", yesNo(q.AirQuality))
	params.Set("alerts", yesNo(q.Alerts))

	var resp forecastResponse
	if err := c.get(ctx, "forecast", "forecast.json", params, &resp); err != nil {
		return nil, err
	}

	return resp.toPointForecast(), nil
}

// FetchCurrent fetches current conditions for location.
func (c *Client) FetchCurrent(ctx context.Context, location string) (*forecast.CurrentConditions, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("aqi", "no")

	var resp forecastResponse
	if err := c.get(ctx, "current", "current.json", params, &resp); err != nil {
		return nil, err
	}

	return &forecast.CurrentConditions{
		Location:      resp.Location.Name,
		Country:       resp.Location.Country,
		LastUpdated:   resp.Current.lastUpdated(),
		TemperatureC:  resp.Current.TempC,
		FeelsLikeC:    resp.Current.FeelsLikeC,
		Condition:     resp.Current.Condition.Text,
		ConditionIcon: forecast.FixIconURL(resp.Current.Condition.Icon),
		Humidity:      resp.Current.Humidity,
		WindKph:       resp.Current.WindKph,
		WindDirection: resp.Current.WindDir,
		UV:            resp.Current.UV,
	}, nil
}

// FetchHistoricalRange fetches observed days in [start, end].
func (c *Client) FetchHistoricalRange(ctx context.Context, location string, start, end time.Time) (*forecast.HistoricalRange, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("dt", start.Format(geo.DateLayout))
	params.Set("end_dt", end.Format(geo.DateLayout))

	var resp forecastResponse
	if err := c.get(ctx, "history", "history.json", params, &resp); err != nil {
		return nil, err
	}

	return resp.toHistoricalRange(), nil
}

// SearchLocations returns "name, region, country" labels matching query.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)

	var resp []locationResponse
	if err := c.get(ctx, "search", "search.json", params, &resp); err != nil {
		return nil, err
	}

	results := make([]string, 0, len(resp))
	for _, l := range resp {
		results = append(results, fmt.Sprintf("%s, %s, %s", l.Name, l.Region, l.Country))
	}
	return results, nil
}

// get performs a GET against endpoint and decodes the JSON body into out.
// Failures are mapped onto the forecast error taxonomy.
func (c *Client) get(ctx context.Context, operation, endpoint string, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.RecordRequest(ctx, ProviderName, operation, time.Since(start), err)
	}()

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", operation).Msg("weatherapi request failed")
		return fmt.Errorf("%w: executing request: %w", forecast.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(operation, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %w", forecast.ErrUpstreamUnavailable, err)
	}

	return nil
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr errorResponse
	if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Code == errCodeNoLocation {
		return fmt.Errorf("%w: %s", forecast.ErrNotFound, apiErr.Error.Message)
	}

	c.logger.Error().
		Int("status", resp.StatusCode).
		Int("api_code", apiErr.Error.Code).
		Str("operation", operation).
		Msg("unexpected weatherapi status")

	err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	if apiErr.Error.Message != "" {
		err = errors.Join(err, errors.New(apiErr.Error.Message))
	}
	return fmt.Errorf("%w: %w", forecast.ErrUpstreamUnavailable, err)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WeatherAPI response types.

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type locationResponse struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	LocalTime string  `json:"localtime"`
}

type conditionResponse struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type currentResponse struct {
	LastUpdated      string            `json:"last_updated"`
	LastUpdatedEpoch int64             `json:"last_updated_epoch"`
	TempC            float64           `json:"temp_c"`
	Condition        conditionResponse `json:"condition"`
	WindKph          float64           `json:"wind_kph"`
	WindDir          string            `json:"wind_dir"`
	Humidity         int               `json:"humidity"`
	FeelsLikeC       float64           `json:"feelslike_c"`
	UV               float64           `json:"uv"`
}

func (c currentResponse) lastUpdated() time.Time {
	if c.LastUpdatedEpoch > 0 {
		return time.Unix(c.LastUpdatedEpoch, 0).UTC()
	}
	if t, err := time.Parse(localTimeLayout, c.LastUpdated); err == nil {
		return t
	}
	return time.Now().UTC()
}

type dayResponse struct {
	MaxTempC          float64           `json:"maxtemp_c"`
	MinTempC          float64           `json:"mintemp_c"`
	AvgTempC          float64           `json:"avgtemp_c"`
	MaxWindKph        float64           `json:"maxwind_kph"`
	TotalPrecipMm     float64           `json:"totalprecip_mm"`
	AvgHumidity       float64           `json:"avghumidity"`
	DailyChanceOfRain float64           `json:"daily_chance_of_rain"`
	Condition         conditionResponse `json:"condition"`
}

type astroResponse struct {
	Sunrise          string `json:"sunrise"`
	Sunset           string `json:"sunset"`
	Moonrise         string `json:"moonrise"`
	Moonset          string `json:"moonset"`
	MoonPhase        string `json:"moon_phase"`
	MoonIllumination int    `json:"moon_illumination"`
	IsMoonUp         int    `json:"is_moon_up"`
	IsSunUp          int    `json:"is_sun_up"`
}

type hourResponse struct {
	TimeEpoch    int64             `json:"time_epoch"`
	Time         string            `json:"time"`
	TempC        float64           `json:"temp_c"`
	WindKph      float64           `json:"wind_kph"`
	WindDir      string            `json:"wind_dir"`
	ChanceOfRain float64           `json:"chance_of_rain"`
	Condition    conditionResponse `json:"condition"`
}

type forecastDayResponse struct {
	Date      string         `json:"date"`
	DateEpoch int64          `json:"date_epoch"`
	Day       dayResponse    `json:"day"`
	Astro     astroResponse  `json:"astro"`
	Hour      []hourResponse `json:"hour"`
}

func (d forecastDayResponse) date() time.Time {
	if t, err := geo.ParseDate(d.Date); err == nil {
		return t
	}
	return geo.Day(time.Unix(d.DateEpoch, 0))
}

type forecastResponse struct {
	Location locationResponse `json:"location"`
	Current  currentResponse  `json:"current"`
	Forecast struct {
		ForecastDay []forecastDayResponse `json:"forecastday"`
	} `json:"forecast"`
}

func (r *forecastResponse) toPointForecast() *forecast.PointForecast {
	pf := &forecast.PointForecast{
		Location:           r.Location.Name,
		Country:            r.Location.Country,
		LastUpdated:        r.Current.lastUpdated(),
		CurrentTemperature: r.Current.TempC,
		Condition:          r.Current.Condition.Text,
		ConditionIcon:      forecast.FixIconURL(r.Current.Condition.Icon),
		Humidity:           r.Current.Humidity,
		WindSpeed:          r.Current.WindKph,
		WindDirection:      r.Current.WindDir,
		DailyForecasts:     make([]forecast.DailyForecast, 0, len(r.Forecast.ForecastDay)),
	}

	for _, fd := range r.Forecast.ForecastDay {
		pf.DailyForecasts = append(pf.DailyForecasts, forecast.DailyForecast{
			Date:          fd.date(),
			MaxTemp:       fd.Day.MaxTempC,
			MinTemp:       fd.Day.MinTempC,
			AvgTemp:       fd.Day.AvgTempC,
			Condition:     fd.Day.Condition.Text,
			ConditionIcon: forecast.FixIconURL(fd.Day.Condition.Icon),
			ChanceOfRain:  fd.Day.DailyChanceOfRain,
			Astro: forecast.Astro{
				Sunrise:          fd.Astro.Sunrise,
				Sunset:           fd.Astro.Sunset,
				Moonrise:         fd.Astro.Moonrise,
				Moonset:          fd.Astro.Moonset,
				MoonPhase:        fd.Astro.MoonPhase,
				MoonIllumination: fd.Astro.MoonIllumination,
				IsMoonUp:         fd.Astro.IsMoonUp == 1,
				IsSunUp:          fd.Astro.IsSunUp == 1,
			},
		})
	}

	return pf
}

func (r *forecastResponse) toHistoricalRange() *forecast.HistoricalRange {
	hr := &forecast.HistoricalRange{
		Location: r.Location.Name,
		Country:  r.Location.Country,
		Days:     make([]forecast.HistoricalDay, 0, len(r.Forecast.ForecastDay)),
	}

	for _, fd := range r.Forecast.ForecastDay {
		day := forecast.HistoricalDay{
			Date:                 fd.date(),
			MaxTemp:              fd.Day.MaxTempC,
			MinTemp:              fd.Day.MinTempC,
			AvgTemp:              fd.Day.AvgTempC,
			TotalPrecipitationMm: fd.Day.TotalPrecipMm,
			AvgHumidity:          fd.Day.AvgHumidity,
			MaxWindKph:           fd.Day.MaxWindKph,
			Condition:            fd.Day.Condition.Text,
			ConditionIcon:        forecast.FixIconURL(fd.Day.Condition.Icon),
			Hours:                make([]forecast.HourlySample, 0, len(fd.Hour)),
		}
		for _, h := range fd.Hour {
			ht, err := time.Parse(localTimeLayout, h.Time)
			if err != nil {
				ht = time.Unix(h.TimeEpoch, 0).UTC()
			}
			day.Hours = append(day.Hours, forecast.HourlySample{
				Time:          ht,
				TempC:         h.TempC,
				WindKph:       h.WindKph,
				WindDirection: h.WindDir,
			})
		}
		hr.Days = append(hr.Days, day)
	}

	return hr
}
