package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-region-dashboard/internal/classify"
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/notify"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
)

// DraftID is the surface id of the polygon being drawn.
const DraftID = "draft"

// Surface renders region shapes.
type Surface interface {
	DrawRegion(id string, vertices []geometry.Coordinate)
	SetFill(id, color string)
	SetPopup(id, text string)
	RemoveRegion(id string)
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level notify.Level, msg string)
}

// Options configures presentation details of the controller.
type Options struct {
	Rules     []classify.Rule
	Location  *time.Location
	MapCenter geometry.Coordinate
	MapZoom   int
	Now       func() time.Time
}

// MapView is the map camera.
type MapView struct {
	Center geometry.Coordinate `json:"center"`
	Zoom   int                 `json:"zoom"`
}

// APIStatus is the last weather API outcome shown in the sidebar.
type APIStatus struct {
	Level   notify.Level `json:"level"`
	Message string       `json:"message"`
}

// Controller owns the dashboard state and reacts to input events one at a time.
type Controller struct {
	// dispatchMu serialises event handling; timelineChanged and followUps belong to it.
	// refreshMu keeps network follow-ups sequential.
	dispatchMu      sync.Mutex
	timelineChanged bool
	followUps       []func(context.Context)

	refreshMu sync.Mutex

	// renderMu orders surface updates against deletions.
	renderMu sync.Mutex
	drawn    map[string]bool

	uiMu             sync.RWMutex
	modalOpen        bool
	sidebarCollapsed bool
	mapView          MapView
	apiStatus        APIStatus
	loading          int

	timeline *timeline.Model
	registry *region.Registry
	surface  Surface
	notifier Notifier
	opts     Options
	logger   *zap.Logger
}

// New wires a controller to its collaborators and subscribes to timeline and region changes.
func New(tl *timeline.Model, reg *region.Registry, surface Surface, notifier Notifier, opts Options, logger *zap.Logger) *Controller {
	if len(opts.Rules) == 0 {
		opts.Rules = classify.DefaultRules()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		mapView:  MapView{Center: opts.MapCenter, Zoom: opts.MapZoom},
		drawn:    make(map[string]bool),
		timeline: tl,
		registry: reg,
		surface:  surface,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}

	// Listeners fire synchronously inside Dispatch, so the flag is guarded by dispatchMu.
	tl.OnChange(func(timeline.Selection) { c.timelineChanged = true })
	reg.OnUpdate(c.renderRegion)

	return c
}

// Dispatch handles ev and then runs the fetches it triggered: the first fetch of a new
// region, or a sequential refresh of every region after a timeline change. The fetches
// run outside the dispatch lock, so other events are handled while they wait on the
// network. Errors are already reported to the notifier when Dispatch returns them.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	c.dispatchMu.Lock()
	c.logger.Debug("dispatch", zap.String("event", ev.Name()))

	err := c.handle(ev)

	if c.timelineChanged {
		c.timelineChanged = false
		sel := c.timeline.Selection()
		c.followUps = append(c.followUps, func(ctx context.Context) { c.refreshAll(ctx, sel) })
	}
	followUps := c.followUps
	c.followUps = nil
	c.dispatchMu.Unlock()

	if len(followUps) > 0 {
		c.refreshMu.Lock()
		defer c.refreshMu.Unlock()
		for _, fn := range followUps {
			fn(ctx)
		}
	}

	return err
}

func (c *Controller) handle(ev Event) error {
	switch e := ev.(type) {
	case PointerDown:
		return c.timeline.BeginDrag(e.Handle)
	case PointerMove:
		c.timeline.DragTo(e.X, e.Track)
		return nil
	case PointerUp:
		c.timeline.EndDrag()
		return nil
	case TrackClick:
		c.timeline.ClickTrack(e.X, e.Track)
		return nil
	case SetMode:
		return c.timeline.SetMode(e.Mode)
	case Refresh:
		c.timelineChanged = true
		return nil

	case StartDraw:
		c.startDraw()
		return nil
	case MapClick:
		return c.addVertex(e.Coord)
	case MapDoubleClick:
		if !c.registry.Drawing() {
			return nil
		}
		return c.completeDraw()
	case CancelDraw:
		c.cancelDraw()
		return nil
	case CloseModal:
		c.cancelDraw()
		return nil
	case Escape:
		c.uiMu.RLock()
		modal := c.modalOpen
		c.uiMu.RUnlock()
		if c.registry.Drawing() || modal {
			c.cancelDraw()
		}
		return nil
	case ConfirmDataSource:
		return c.confirm(e.Source)
	case DeleteRegion:
		c.deleteRegion(e.ID)
		return nil

	case Recenter:
		c.uiMu.Lock()
		c.mapView = MapView{Center: c.opts.MapCenter, Zoom: c.opts.MapZoom}
		c.uiMu.Unlock()
		return nil
	case ToggleSidebar:
		c.uiMu.Lock()
		c.sidebarCollapsed = !c.sidebarCollapsed
		c.uiMu.Unlock()
		return nil
	}

	return fmt.Errorf("unhandled event %q", ev.Name())
}

func (c *Controller) startDraw() {
	c.registry.StartDraw()
	c.surface.RemoveRegion(DraftID)
	c.setModal(false)
	c.notifier.Notify(notify.LevelInfo, "Click on the map to start drawing a polygon")
}

func (c *Controller) cancelDraw() {
	c.registry.CancelDraw()
	c.surface.RemoveRegion(DraftID)
	c.setModal(false)
	c.notifier.Notify(notify.LevelInfo, "Polygon drawing cancelled")
}

func (c *Controller) addVertex(coord geometry.Coordinate) error {
	if !c.registry.Drawing() {
		return nil
	}

	completed, err := c.registry.AddVertex(coord)
	if err != nil {
		return err
	}

	if completed {
		pending, _ := c.registry.Pending()
		c.surface.DrawRegion(DraftID, pending.Vertices)
		c.setModal(true)
		return nil
	}

	verts := c.registry.Vertices()
	if len(verts) >= 2 {
		c.surface.DrawRegion(DraftID, verts)
	}

	cfg := c.registry.Config()
	if remaining := cfg.MinVertices - len(verts); remaining > 0 {
		c.notifier.Notify(notify.LevelInfo, fmt.Sprintf("Add %d more points (minimum)", remaining))
	} else {
		c.notifier.Notify(notify.LevelInfo, fmt.Sprintf("Double-click to complete polygon (%d/%d points)", len(verts), cfg.MaxVertices))
	}
	return nil
}

func (c *Controller) completeDraw() error {
	pending, err := c.registry.CompleteDraw()
	if err != nil {
		var dv *region.DrawValidationError
		if errors.As(err, &dv) {
			c.notifier.Notify(notify.LevelError, fmt.Sprintf("Minimum %d points required", dv.Min))
		}
		return err
	}

	c.surface.DrawRegion(DraftID, pending.Vertices)
	c.setModal(true)
	return nil
}

func (c *Controller) confirm(source region.DataSource) error {
	if _, ok := c.registry.Pending(); !ok {
		c.notifier.Notify(notify.LevelError, "No polygon to confirm")
		return region.ErrNoPendingRegion
	}
	if !source.Valid() {
		err := &region.SelectionError{DataSource: source}
		c.notifier.Notify(notify.LevelError, "Please select a data source")
		return err
	}

	reg, err := c.registry.Register(source)
	if err != nil {
		return err
	}
	c.surface.RemoveRegion(DraftID)
	c.setModal(false)

	sel := c.timeline.Selection()
	c.followUps = append(c.followUps, func(ctx context.Context) {
		c.beginLoading()
		_ = c.registry.RefreshRegion(ctx, reg.ID, sel)
		c.endLoading()

		if _, ok := c.registry.Get(reg.ID); ok {
			c.notifier.Notify(notify.LevelSuccess, "Polygon created successfully!")
		}
	})
	return nil
}

func (c *Controller) deleteRegion(id string) {
	c.renderMu.Lock()
	if !c.registry.DeleteRegion(id) {
		c.renderMu.Unlock()
		return
	}

	c.surface.RemoveRegion(id)
	delete(c.drawn, id)

	// Popups are numbered by position.
	for i, reg := range c.registry.Regions() {
		c.surface.SetPopup(reg.ID, c.popupText(reg, i))
	}
	c.renderMu.Unlock()

	c.notifier.Notify(notify.LevelInfo, "Polygon deleted")
}

func (c *Controller) refreshAll(ctx context.Context, sel timeline.Selection) {
	if len(c.registry.Regions()) == 0 {
		return
	}

	c.beginLoading()
	defer c.endLoading()

	if err := c.registry.RefreshAll(ctx, sel); err != nil {
		c.logger.Warn("refresh completed with failures", zap.Error(err))
	}
}

// renderRegion is the registry observer. It draws the shape on first sight and
// restyles it for the region's status.
func (c *Controller) renderRegion(reg region.Region) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	idx := c.registry.Index(reg.ID)
	if idx < 0 {
		return
	}

	first := !c.drawn[reg.ID]
	c.drawn[reg.ID] = true

	if first {
		c.surface.DrawRegion(reg.ID, reg.Vertices)
		c.surface.SetFill(reg.ID, classify.FallbackColor)
	}

	switch reg.Status {
	case region.StatusLoading:
		if first {
			c.surface.SetPopup(reg.ID, c.popupText(reg, idx))
		}

	case region.StatusReady:
		color, _ := classify.ColorFor(reg.Observation.Temperature, c.opts.Rules)
		c.surface.SetFill(reg.ID, color)
		c.surface.SetPopup(reg.ID, c.popupText(reg, idx))
		c.setAPIStatus(notify.LevelSuccess, "Last updated: "+c.opts.Now().In(c.opts.Location).Format("15:04:05"))

	case region.StatusErrored:
		c.surface.SetFill(reg.ID, classify.ErrorColor)
		c.surface.SetPopup(reg.ID, c.popupText(reg, idx))
		c.setAPIStatus(notify.LevelError, "Failed to fetch weather data")
		c.notifier.Notify(notify.LevelError, "Failed to fetch weather data")
	}
}

// popupText describes reg at zero-based position idx.
func (c *Controller) popupText(reg region.Region, idx int) string {
	title := fmt.Sprintf("Region %d", idx+1)

	switch {
	case reg.Status == region.StatusErrored:
		return title + "\nError loading weather data"
	case reg.Observation != nil:
		obs := reg.Observation
		_, label := classify.ColorFor(obs.Temperature, c.opts.Rules)
		return fmt.Sprintf("%s\nTemperature: %.1f°C (%s)\nTime: %s\nLocation: %.3f, %.3f",
			title, obs.Temperature, label,
			timeline.FormatTime(obs.Timestamp, c.opts.Location),
			reg.Centroid.Lat, reg.Centroid.Lng)
	}
	return title + "\nLoading weather data..."
}

func (c *Controller) setModal(open bool) {
	c.uiMu.Lock()
	c.modalOpen = open
	c.uiMu.Unlock()
}

func (c *Controller) setAPIStatus(level notify.Level, msg string) {
	c.uiMu.Lock()
	c.apiStatus = APIStatus{Level: level, Message: msg}
	c.uiMu.Unlock()
}

func (c *Controller) beginLoading() {
	c.uiMu.Lock()
	c.loading++
	c.uiMu.Unlock()
}

func (c *Controller) endLoading() {
	c.uiMu.Lock()
	c.loading--
	c.uiMu.Unlock()
}
