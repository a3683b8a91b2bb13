package region

import (
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
)

// DataSource tags what a region displays.
type DataSource string

const DataSourceTemperature DataSource = "temperature"

// Valid reports whether d is a supported data source.
func (d DataSource) Valid() bool {
	return d == DataSourceTemperature
}

// Status is a region's data state.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusErrored Status = "errored"
)

// Observation is the temperature applied to a region for a queried instant.
type Observation struct {
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// Region is a user-drawn polygon bound to a data source.
type Region struct {
	ID          string                `json:"id"`
	Vertices    []geometry.Coordinate `json:"vertices"`
	Centroid    geometry.Coordinate   `json:"centroid"`
	DataSource  DataSource            `json:"dataSource"`
	Observation *Observation          `json:"observation,omitempty"`
	Status      Status                `json:"status"`
	Err         string                `json:"error,omitempty"`
}

func (r *Region) clone() Region {
	c := *r
	c.Vertices = append([]geometry.Coordinate(nil), r.Vertices...)
	if r.Observation != nil {
		obs := *r.Observation
		c.Observation = &obs
	}
	return c
}

// Pending is a completed polygon waiting for a data source.
type Pending struct {
	Vertices []geometry.Coordinate `json:"vertices"`
	Centroid geometry.Coordinate   `json:"centroid"`
}

var (
	// ErrNotDrawing is returned when a draw operation runs outside a draw session.
	ErrNotDrawing = errors.New("not drawing")

	// ErrNoPendingRegion is returned by ConfirmRegion when nothing has been completed.
	ErrNoPendingRegion = errors.New("no polygon to confirm")
)

// DrawValidationError is returned when a polygon is completed with too few vertices.
// The draw session stays open.
type DrawValidationError struct {
	Have int
	Min  int
}

func (e *DrawValidationError) Error() string {
	return fmt.Sprintf("minimum %d points required, have %d", e.Min, e.Have)
}

// SelectionError is returned when a region is confirmed without a usable data source.
type SelectionError struct {
	DataSource DataSource
}

func (e *SelectionError) Error() string {
	if e.DataSource == "" {
		return "please select a data source"
	}
	return fmt.Sprintf("unsupported data source %q", e.DataSource)
}
