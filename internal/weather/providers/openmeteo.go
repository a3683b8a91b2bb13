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

// DefaultOpenMeteoArchiveURL is the historical hourly endpoint.
const DefaultOpenMeteoArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// OpenMeteoProvider implements the weather.Provider interface for the Open-Meteo archive API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, baseURL string, backoff BackoffConfig) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoArchiveURL
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchHourly requests hourly 2m temperature between the from and to calendar dates
// (both inclusive on the provider side), in provider-resolved local time.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, coord geometry.Coordinate, from, to time.Time) (weather.HourlySeries, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", coord.Lat))
		values.Set("longitude", fmt.Sprintf("%.4f", coord.Lng))
		values.Set("start_date", from.Format("2006-01-02"))
		values.Set("end_date", to.Format("2006-01-02"))
		values.Set("hourly", "temperature_2m")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.HourlySeries{}, err
	}
	defer resp.Body.Close()

	var series weather.HourlySeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("decode openmeteo response: %w", err)
	}

	return series, nil
}
