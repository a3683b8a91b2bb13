package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
)

const openMeteoBody = `{
	"latitude": 52.52,
	"longitude": 13.419998,
	"timezone": "Europe/Berlin",
	"utc_offset_seconds": 7200,
	"hourly": {
		"time": ["2024-05-01T00:00", "2024-05-01T01:00", "2024-05-01T02:00"],
		"temperature_2m": [11.2, null, 10.4]
	}
}`

func TestOpenMeteoProvider_FetchHourly(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, DefaultBackoff())
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	series, err := p.FetchHourly(context.Background(), geometry.Coordinate{Lat: 52.52341, Lng: 13.40889}, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	q := got.URL.Query()
	assert.Equal(t, "52.5234", q.Get("latitude"))
	assert.Equal(t, "13.4089", q.Get("longitude"))
	assert.Equal(t, "2024-05-01", q.Get("start_date"))
	assert.Equal(t, "2024-05-02", q.Get("end_date"))
	assert.Equal(t, "temperature_2m", q.Get("hourly"))
	assert.Equal(t, "auto", q.Get("timezone"))

	assert.Equal(t, "Europe/Berlin", series.Timezone)
	require.Len(t, series.Hourly.Temperature2m, 3)
	assert.InDelta(t, 11.2, *series.Hourly.Temperature2m[0], 1e-9)
	assert.Nil(t, series.Hourly.Temperature2m[1])
}

func TestOpenMeteoProvider_SingleRequestOnFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, DefaultBackoff())
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.FetchHourly(context.Background(), geometry.Coordinate{Lat: 1, Lng: 2}, from, from.AddDate(0, 0, 1))

	require.Error(t, err)
	assert.ErrorIs(t, err, errServerError)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoRequestWithResilience_Retries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	backoff := BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
	p := NewOpenMeteoProvider(srv.Client(), srv.URL, backoff)
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := p.FetchHourly(context.Background(), geometry.Coordinate{Lat: 1, Lng: 2}, from, from.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoRequestWithResilience_InvalidConfig(t *testing.T) {
	p := NewOpenMeteoProvider(nil, "http://127.0.0.1:0", DefaultBackoff())

	_, err := p.FetchHourly(context.Background(), geometry.Coordinate{}, time.Now(), time.Now())

	assert.ErrorIs(t, err, errNoHTTPClient)
}

func TestWeatherAPIProvider_FetchHourly(t *testing.T) {
	body := `{
		"location": {"lat": 52.52, "lon": 13.41, "tz_id": "Europe/Berlin"},
		"forecast": {"forecastday": [{"hour": [
			{"time": "2024-05-01 00:00", "temp_c": 9.5},
			{"time": "2024-05-01 01:00", "temp_c": 9.1}
		]}]}
	}`
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewWeatherAPIProvider(srv.Client(), "secret", srv.URL, DefaultBackoff())
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	series, err := p.FetchHourly(context.Background(), geometry.Coordinate{Lat: 52.52, Lng: 13.41}, from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, "secret", got.URL.Query().Get("key"))
	assert.Equal(t, "52.5200,13.4100", got.URL.Query().Get("q"))
	assert.Equal(t, "2024-05-01", got.URL.Query().Get("dt"))
	require.Len(t, series.Hourly.Temperature2m, 2)
	assert.InDelta(t, 9.1, *series.Hourly.Temperature2m[1], 1e-9)
}

func TestWeatherAPIProvider_RequiresKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "", "", DefaultBackoff())

	_, err := p.FetchHourly(context.Background(), geometry.Coordinate{}, time.Now(), time.Now())

	assert.Error(t, err)
}

func TestOpenMeteoProvider_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("start_date") == "2099-01-01" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, DefaultBackoff())
	coord := geometry.Coordinate{Lat: 52.52, Lng: 13.41}
	future := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		_, err := p.FetchHourly(context.Background(), coord, future, future.AddDate(0, 0, 1))
		require.ErrorIs(t, err, errUnexpected)
	}

	past := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series, err := p.FetchHourly(context.Background(), coord, past, past.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", series.Timezone)
	assert.Equal(t, int32(7), atomic.LoadInt32(&calls))
}

func TestOpenMeteoProvider_ServerErrorsOpenBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, DefaultBackoff())
	coord := geometry.Coordinate{Lat: 1, Lng: 2}
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		_, err := p.FetchHourly(context.Background(), coord, day, day.AddDate(0, 0, 1))
		require.ErrorIs(t, err, errServerError)
	}

	_, err := p.FetchHourly(context.Background(), coord, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}
