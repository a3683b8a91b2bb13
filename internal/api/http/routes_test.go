package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-region-dashboard/internal/dashboard"
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/notify"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/render"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
	"github.com/i474232898/weather-region-dashboard/internal/weather"
)

type constFetcher float64

func (f constFetcher) Fetch(context.Context, geometry.Coordinate, time.Time) (weather.HourlySeries, error) {
	var s weather.HourlySeries
	for i := 0; i < 24; i++ {
		v := float64(f)
		s.Hourly.Temperature2m = append(s.Hourly.Temperature2m, &v)
	}
	return s, nil
}

func newTestApp() *fiber.App {
	tl := timeline.New(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), 15, 15)
	reg := region.NewRegistry(region.Config{Location: time.UTC}, constFetcher(27), nil)
	scene := render.NewScene()
	feed := notify.NewFeed(notify.DefaultTTL)
	ctrl := dashboard.New(tl, reg, scene, feed, dashboard.Options{Location: time.UTC}, nil)

	app := fiber.New()
	RegisterRoutes(app, ctrl, scene, feed)
	return app
}

func post(t *testing.T, app *fiber.App, event, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/"+event, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func drawTriangle(t *testing.T, app *fiber.App) {
	t.Helper()
	require.Equal(t, http.StatusOK, post(t, app, "start-draw", "").StatusCode)
	for _, body := range []string{
		`{"lat":52.50,"lng":13.40}`,
		`{"lat":52.60,"lng":13.40}`,
		`{"lat":52.60,"lng":13.50}`,
	} {
		require.Equal(t, http.StatusOK, post(t, app, "map-click", body).StatusCode)
	}
	require.Equal(t, http.StatusOK, post(t, app, "map-dblclick", "").StatusCode)
}

func TestEvents_UnknownEvent(t *testing.T) {
	app := newTestApp()

	resp := post(t, app, "teleport", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEvents_BodyValidation(t *testing.T) {
	app := newTestApp()

	cases := []struct {
		event string
		body  string
	}{
		{"pointer-down", `{"handle":"middle"}`},
		{"pointer-move", `{"x":10,"track":{"left":0,"width":0}}`},
		{"track-click", `not json`},
		{"map-click", `{"lat":95,"lng":0}`},
		{"set-mode", `{"mode":"week"}`},
		{"delete-region", `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			resp := post(t, app, tc.event, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestEvents_DrawErrorsMapToStatus(t *testing.T) {
	app := newTestApp()

	resp := post(t, app, "confirm-data-source", `{"dataSource":"temperature"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "nothing pending")

	require.Equal(t, http.StatusOK, post(t, app, "start-draw", "").StatusCode)
	require.Equal(t, http.StatusOK, post(t, app, "map-click", `{"lat":1,"lng":1}`).StatusCode)
	resp = post(t, app, "map-dblclick", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "too few points")

	require.Equal(t, http.StatusOK, post(t, app, "cancel-draw", "").StatusCode)
	drawTriangle(t, app)

	resp = post(t, app, "confirm-data-source", `{"dataSource":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, "no data source")
}

func TestEvents_CreateRegionFlow(t *testing.T) {
	app := newTestApp()
	drawTriangle(t, app)

	resp := post(t, app, "confirm-data-source", `{"dataSource":"temperature"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dashboard.State](t, resp)
	assert.False(t, st.ModalOpen)
	require.Len(t, st.Regions, 1)

	regions := decode[[]dashboard.RegionView](t, get(t, app, "/api/v1/regions"))
	require.Len(t, regions, 1)
	assert.Equal(t, "Warm", regions[0].Label)
	assert.Equal(t, "#52c41a", regions[0].Color)
	assert.Equal(t, region.StatusReady, regions[0].Status)

	resp = get(t, app, "/api/v1/scene")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Polygon"`)
	assert.Contains(t, string(raw), "#52c41a")

	notes := decode[[]notify.Notification](t, get(t, app, "/api/v1/notifications"))
	require.NotEmpty(t, notes)
	assert.Equal(t, "Polygon created successfully!", notes[len(notes)-1].Message)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/regions/"+regions[0].ID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[dashboard.State](t, resp).Regions)
}

func TestEvents_TimelineAndView(t *testing.T) {
	app := newTestApp()

	resp := post(t, app, "set-mode", `{"mode":"range"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dashboard.State](t, resp)
	assert.Equal(t, timeline.ModeRange, st.Selection.Mode)

	resp = post(t, app, "track-click", `{"x":0,"track":{"left":0,"width":200}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decode[dashboard.State](t, resp)
	assert.True(t, st.Selection.Start.Equal(st.Window.Start))
	assert.Equal(t, 2*time.Hour, st.Selection.End.Sub(st.Selection.Start))

	resp = post(t, app, "toggle-sidebar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dashboard.State](t, resp).SidebarCollapsed)
}
