package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"

	"github.com/i474232898/weather-region-dashboard/internal/dashboard"
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/notify"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
)

var validate = validator.New()

// Dashboard is the state owner the routes drive.
type Dashboard interface {
	Dispatch(ctx context.Context, ev dashboard.Event) error
	State() dashboard.State
	Regions() []dashboard.RegionView
}

// Scene exports the rendered shapes.
type Scene interface {
	FeatureCollection() *geojson.FeatureCollection
}

// Notifications lists the currently visible notifications.
type Notifications interface {
	Active() []notify.Notification
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, dash Dashboard, scene Scene, feed Notifications) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(dash.State())
	})

	v1.Get("/regions", func(c *fiber.Ctx) error {
		return c.JSON(dash.Regions())
	})

	v1.Delete("/regions/:id", func(c *fiber.Ctx) error {
		return dispatch(c, dash, dashboard.DeleteRegion{ID: c.Params("id")})
	})

	v1.Get("/scene", func(c *fiber.Ctx) error {
		raw, err := scene.FeatureCollection().MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode scene")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(raw)
	})

	v1.Get("/notifications", func(c *fiber.Ctx) error {
		return c.JSON(feed.Active())
	})

	v1.Post("/events/:name", func(c *fiber.Ctx) error {
		decode, ok := decoders[c.Params("name")]
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown event "+c.Params("name"))
		}

		ev, err := decode(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return dispatch(c, dash, ev)
	})
}

func dispatch(c *fiber.Ctx, dash Dashboard, ev dashboard.Event) error {
	if err := dash.Dispatch(c.UserContext(), ev); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(dash.State())
}

// toHTTPError maps domain errors onto status codes. Fetch failures never reach here;
// they are reported on the region itself.
func toHTTPError(err error) error {
	var (
		drawErr *region.DrawValidationError
		selErr  *region.SelectionError
	)
	switch {
	case errors.As(err, &drawErr), errors.As(err, &selErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, region.ErrNotDrawing), errors.Is(err, region.ErrNoPendingRegion):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

type handleRequest struct {
	Handle timeline.Handle `json:"handle" validate:"required,oneof=primary secondary"`
}

type positionRequest struct {
	X     float64        `json:"x"`
	Track timeline.Track `json:"track"`
}

type modeRequest struct {
	Mode timeline.Mode `json:"mode" validate:"required,oneof=single range"`
}

type dataSourceRequest struct {
	DataSource region.DataSource `json:"dataSource"`
}

type regionRequest struct {
	ID string `json:"id" validate:"required"`
}

func bind[T any](c *fiber.Ctx) (T, error) {
	var req T
	if err := c.BodyParser(&req); err != nil {
		return req, err
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func constant(ev dashboard.Event) func(*fiber.Ctx) (dashboard.Event, error) {
	return func(*fiber.Ctx) (dashboard.Event, error) { return ev, nil }
}

var decoders = map[string]func(*fiber.Ctx) (dashboard.Event, error){
	"pointer-down": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[handleRequest](c)
		return dashboard.PointerDown{Handle: req.Handle}, err
	},
	"pointer-move": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[positionRequest](c)
		return dashboard.PointerMove{X: req.X, Track: req.Track}, err
	},
	"pointer-up": constant(dashboard.PointerUp{}),
	"track-click": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[positionRequest](c)
		return dashboard.TrackClick{X: req.X, Track: req.Track}, err
	},
	"map-click": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[geometry.Coordinate](c)
		return dashboard.MapClick{Coord: req}, err
	},
	"map-dblclick": constant(dashboard.MapDoubleClick{}),
	"set-mode": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[modeRequest](c)
		return dashboard.SetMode{Mode: req.Mode}, err
	},
	"start-draw":  constant(dashboard.StartDraw{}),
	"cancel-draw": constant(dashboard.CancelDraw{}),
	"confirm-data-source": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[dataSourceRequest](c)
		return dashboard.ConfirmDataSource{Source: req.DataSource}, err
	},
	"close-modal": constant(dashboard.CloseModal{}),
	"delete-region": func(c *fiber.Ctx) (dashboard.Event, error) {
		req, err := bind[regionRequest](c)
		return dashboard.DeleteRegion{ID: req.ID}, err
	},
	"recenter":       constant(dashboard.Recenter{}),
	"toggle-sidebar": constant(dashboard.ToggleSidebar{}),
	"escape":         constant(dashboard.Escape{}),
	"refresh":        constant(dashboard.Refresh{}),
}
