package region

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/metrics"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
	"github.com/i474232898/weather-region-dashboard/internal/weather"
)

const (
	DefaultMinVertices = 3
	DefaultMaxVertices = 12
)

// Fetcher returns the hourly series covering instant at coord.
type Fetcher interface {
	Fetch(ctx context.Context, coord geometry.Coordinate, instant time.Time) (weather.HourlySeries, error)
}

// Config bounds polygon size and sets the zone used to pick the hour of day.
type Config struct {
	MinVertices int
	MaxVertices int
	Location    *time.Location
}

// Registry holds the draw session and the registered regions in creation order.
type Registry struct {
	mu sync.Mutex

	cfg     Config
	fetcher Fetcher
	logger  *zap.Logger

	regions []*Region

	drawing  bool
	vertices []geometry.Coordinate
	pending  *Pending

	observers []func(Region)
	newID     func() string
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, fetcher Fetcher, logger *zap.Logger) *Registry {
	if cfg.MinVertices <= 0 {
		cfg.MinVertices = DefaultMinVertices
	}
	if cfg.MaxVertices < cfg.MinVertices {
		cfg.MaxVertices = DefaultMaxVertices
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// Config returns the effective configuration.
func (r *Registry) Config() Config {
	return r.cfg
}

// OnUpdate registers fn to receive a copy of a region after each state change.
func (r *Registry) OnUpdate(fn func(Region)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *Registry) publish(reg Region) {
	r.mu.Lock()
	observers := r.observers
	r.mu.Unlock()

	for _, fn := range observers {
		fn(reg)
	}
}

// StartDraw opens a fresh draw session, discarding any unconfirmed polygon.
func (r *Registry) StartDraw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drawing = true
	r.vertices = nil
	r.pending = nil
}

// CancelDraw closes the draw session and drops collected vertices and any pending polygon.
func (r *Registry) CancelDraw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drawing = false
	r.vertices = nil
	r.pending = nil
}

// Drawing reports whether a draw session is open.
func (r *Registry) Drawing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawing
}

// Vertices returns the vertices collected in the current session.
func (r *Registry) Vertices() []geometry.Coordinate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]geometry.Coordinate(nil), r.vertices...)
}

// Pending returns the completed-but-unconfirmed polygon, if any.
func (r *Registry) Pending() (Pending, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending == nil {
		return Pending{}, false
	}
	return Pending{
		Vertices: append([]geometry.Coordinate(nil), r.pending.Vertices...),
		Centroid: r.pending.Centroid,
	}, true
}

// AddVertex appends coord to the session. Reaching the maximum vertex count completes
// the polygon, in which case completed is true.
func (r *Registry) AddVertex(coord geometry.Coordinate) (completed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.drawing {
		return false, ErrNotDrawing
	}

	r.vertices = append(r.vertices, coord)
	if len(r.vertices) >= r.cfg.MaxVertices {
		r.completeLocked()
		return true, nil
	}
	return false, nil
}

// CompleteDraw turns the collected vertices into a pending polygon. With fewer than
// the minimum it returns *DrawValidationError and the session stays open.
func (r *Registry) CompleteDraw() (Pending, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.drawing {
		return Pending{}, ErrNotDrawing
	}
	if len(r.vertices) < r.cfg.MinVertices {
		return Pending{}, &DrawValidationError{Have: len(r.vertices), Min: r.cfg.MinVertices}
	}

	r.completeLocked()
	return *r.pending, nil
}

func (r *Registry) completeLocked() {
	verts := append([]geometry.Coordinate(nil), r.vertices...)
	r.pending = &Pending{
		Vertices: verts,
		Centroid: geometry.Centroid(verts),
	}
	r.drawing = false
	r.vertices = nil
}

// ConfirmRegion registers the pending polygon under a new id and refreshes it for sel.
// Validation failures leave all state untouched. A failed refresh does not fail the
// confirmation; the returned region carries StatusErrored instead.
func (r *Registry) ConfirmRegion(ctx context.Context, source DataSource, sel timeline.Selection) (Region, error) {
	reg, err := r.Register(source)
	if err != nil {
		return Region{}, err
	}

	_ = r.RefreshRegion(ctx, reg.ID, sel)

	if got, ok := r.Get(reg.ID); ok {
		return got, nil
	}
	return reg, nil
}

// Register turns the pending polygon into a region in loading status without fetching.
// Callers follow up with RefreshRegion.
func (r *Registry) Register(source DataSource) (Region, error) {
	r.mu.Lock()
	if r.pending == nil {
		r.mu.Unlock()
		return Region{}, ErrNoPendingRegion
	}
	if !source.Valid() {
		r.mu.Unlock()
		return Region{}, &SelectionError{DataSource: source}
	}

	reg := &Region{
		ID:         r.newID(),
		Vertices:   r.pending.Vertices,
		Centroid:   r.pending.Centroid,
		DataSource: source,
		Status:     StatusLoading,
	}
	r.regions = append(r.regions, reg)
	r.pending = nil
	snapshot := reg.clone()
	metrics.RegionsRegistered.Set(float64(len(r.regions)))
	r.mu.Unlock()

	r.logger.Info("region confirmed",
		zap.String("region_id", snapshot.ID),
		zap.Int("vertices", len(snapshot.Vertices)),
		zap.Float64("centroid_lat", snapshot.Centroid.Lat),
		zap.Float64("centroid_lng", snapshot.Centroid.Lng))
	r.publish(snapshot)

	return snapshot, nil
}

// RefreshRegion fetches the temperature for sel's query instant at the region centroid.
// On failure the region is marked errored and its observation cleared. If the region is
// deleted while the fetch is in flight the result is dropped.
func (r *Registry) RefreshRegion(ctx context.Context, id string, sel timeline.Selection) error {
	r.mu.Lock()
	reg := r.findLocked(id)
	if reg == nil {
		r.mu.Unlock()
		return nil
	}
	centroid := reg.Centroid
	reg.Status = StatusLoading
	loading := reg.clone()
	r.mu.Unlock()

	r.publish(loading)

	instant := sel.QueryInstant()
	temp, err := r.temperature(ctx, centroid, instant)

	r.mu.Lock()
	reg = r.findLocked(id)
	if reg == nil {
		r.mu.Unlock()
		r.logger.Debug("region deleted during refresh", zap.String("region_id", id))
		return nil
	}
	if err != nil {
		reg.Status = StatusErrored
		reg.Observation = nil
		reg.Err = err.Error()
	} else {
		reg.Status = StatusReady
		reg.Observation = &Observation{Temperature: temp, Timestamp: instant}
		reg.Err = ""
	}
	updated := reg.clone()
	r.mu.Unlock()

	if err != nil {
		metrics.RegionRefreshesTotal.WithLabelValues("error").Inc()
		r.logger.Warn("region refresh failed", zap.String("region_id", id), zap.Error(err))
	} else {
		metrics.RegionRefreshesTotal.WithLabelValues("ok").Inc()
		r.logger.Debug("region refreshed",
			zap.String("region_id", id),
			zap.Float64("temperature", temp),
			zap.Time("instant", instant))
	}

	r.publish(updated)
	return err
}

func (r *Registry) temperature(ctx context.Context, coord geometry.Coordinate, instant time.Time) (float64, error) {
	series, err := r.fetcher.Fetch(ctx, coord, instant)
	if err != nil {
		return 0, err
	}
	return series.TemperatureAt(instant, r.cfg.Location)
}

// RefreshAll refreshes every region one at a time in registry order. A failure on one
// region does not stop the rest; all failures are joined into the returned error.
func (r *Registry) RefreshAll(ctx context.Context, sel timeline.Selection) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.regions))
	for _, reg := range r.regions {
		ids = append(ids, reg.ID)
	}
	r.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := r.RefreshRegion(ctx, id, sel); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteRegion removes the region with id. It reports whether anything was removed.
func (r *Registry) DeleteRegion(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regions {
		if reg.ID == id {
			r.regions = append(r.regions[:i], r.regions[i+1:]...)
			metrics.RegionsRegistered.Set(float64(len(r.regions)))
			return true
		}
	}
	return false
}

// Get returns a copy of the region with id.
func (r *Registry) Get(id string) (Region, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := r.findLocked(id)
	if reg == nil {
		return Region{}, false
	}
	return reg.clone(), true
}

// Index returns the zero-based position of id, or -1.
func (r *Registry) Index(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, reg := range r.regions {
		if reg.ID == id {
			return i
		}
	}
	return -1
}

// Regions returns copies of all regions in registry order.
func (r *Registry) Regions() []Region {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Region, 0, len(r.regions))
	for _, reg := range r.regions {
		out = append(out, reg.clone())
	}
	return out
}

func (r *Registry) findLocked(id string) *Region {
	for _, reg := range r.regions {
		if reg.ID == id {
			return reg
		}
	}
	return nil
}
