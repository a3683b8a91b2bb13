package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/weather"
)

// DefaultWeatherAPIHistoryURL is WeatherAPI.com's history endpoint.
const DefaultWeatherAPIHistoryURL = "https://api.weatherapi.com/v1/history.json"

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com history.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey, baseURL string, backoff BackoffConfig) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = DefaultWeatherAPIHistoryURL
	}

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// FetchHourly requests the hourly history for from's date. WeatherAPI returns one
// forecastday per date; only the first is kept so index 0 is local midnight.
func (p *WeatherAPIProvider) FetchHourly(ctx context.Context, coord geometry.Coordinate, from, _ time.Time) (weather.HourlySeries, error) {
	if p.apiKey == "" {
		return weather.HourlySeries{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%.4f,%.4f", coord.Lat, coord.Lng))
		values.Set("dt", from.Format("2006-01-02"))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Location struct {
			Lat  float64 `json:"lat"`
			Lon  float64 `json:"lon"`
			TzID string  `json:"tz_id"`
		} `json:"location"`
		Forecast struct {
			Forecastday []struct {
				Hour []struct {
					Time  string  `json:"time"`
					TempC float64 `json:"temp_c"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("decode weatherapi response: %w", err)
	}

	series := weather.HourlySeries{
		Latitude:  payload.Location.Lat,
		Longitude: payload.Location.Lon,
		Timezone:  payload.Location.TzID,
	}
	if tz, err := time.LoadLocation(payload.Location.TzID); err == nil {
		_, offset := from.In(tz).Zone()
		series.UTCOffsetSeconds = offset
	}

	if len(payload.Forecast.Forecastday) == 0 {
		return series, nil
	}

	for _, h := range payload.Forecast.Forecastday[0].Hour {
		temp := h.TempC
		series.Hourly.Time = append(series.Hourly.Time, h.Time)
		series.Hourly.Temperature2m = append(series.Hourly.Temperature2m, &temp)
	}

	return series, nil
}
