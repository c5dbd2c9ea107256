package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/adapter/upstream"
	"github.com/couchcryptid/hazard-risk-dashboard/internal/domain"
)

// API docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=21.1458&longitude=79.0882&current=temperature_2m,relative_humidity_2m,rain,wind_speed_10m,soil_moisture_0_to_1cm,snowfall&daily=temperature_2m_max,precipitation_sum&timezone=auto

var (
	currentVars = []string{
		"temperature_2m",
		"relative_humidity_2m",
		"rain",
		"wind_speed_10m",
		"soil_moisture_0_to_1cm",
		"snowfall",
	}
	dailyVars = []string{
		"temperature_2m_max",
		"precipitation_sum",
	}
)

// Client implements domain.WeatherProvider using the Open-Meteo forecast API.
type Client struct {
	http    upstream.Doer
	baseURL string
}

// NewClient creates an Open-Meteo client against baseURL.
func NewClient(doer upstream.Doer, baseURL string) *Client {
	return &Client{http: doer, baseURL: baseURL}
}

// FetchWeather returns current conditions and the daily forecast at lat/lon.
// A response without a current block yields a snapshot with nil Current.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", strings.Join(currentVars, ","))
	q.Set("daily", strings.Join(dailyVars, ","))
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.WeatherSnapshot{}, fmt.Errorf("fetch weather: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var apiResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("decode response: %w", err)
	}
	return apiResp.toSnapshot(), nil
}

// Open-Meteo API response types.

type forecastResponse struct {
	Current *currentBlock `json:"current"`
	Daily   *dailyBlock   `json:"daily"`
}

type currentBlock struct {
	Time             string   `json:"time"`
	Temperature2m    *float64 `json:"temperature_2m"`
	RelativeHumidity *float64 `json:"relative_humidity_2m"`
	Rain             *float64 `json:"rain"`
	WindSpeed10m     *float64 `json:"wind_speed_10m"`
	SoilMoisture     *float64 `json:"soil_moisture_0_to_1cm"`
	Snowfall         *float64 `json:"snowfall"`
}

// dailyBlock holds parallel arrays indexed by day. Values may be null.
type dailyBlock struct {
	Time             []string   `json:"time"`
	Temperature2mMax []*float64 `json:"temperature_2m_max"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

func (r forecastResponse) toSnapshot() domain.WeatherSnapshot {
	var s domain.WeatherSnapshot
	if r.Current != nil {
		s.Current = &domain.CurrentConditions{
			TemperatureC:         r.Current.Temperature2m,
			RainMM:               r.Current.Rain,
			WindSpeedKMH:         r.Current.WindSpeed10m,
			SoilMoistureFraction: r.Current.SoilMoisture,
			SnowfallCM:           r.Current.Snowfall,
			RelativeHumidityPct:  r.Current.RelativeHumidity,
		}
	}
	if r.Daily != nil {
		s.Daily = make([]domain.DailyForecast, len(r.Daily.Time))
		for i, date := range r.Daily.Time {
			s.Daily[i] = domain.DailyForecast{
				Date:               date,
				MaxTempC:           at(r.Daily.Temperature2mMax, i),
				PrecipitationSumMM: at(r.Daily.PrecipitationSum, i),
			}
		}
	}
	return s
}

// at returns values[i], or 0 when the array is short or the value is null.
func at(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return 0
	}
	return *values[i]
}
