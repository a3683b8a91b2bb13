package dashboard

import (
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
)

// Event is a named input from the input layer.
type Event interface {
	Name() string
}

type (
	// PointerDown starts dragging a timeline handle.
	PointerDown struct {
		Handle timeline.Handle
	}
	// PointerMove moves the dragged handle.
	PointerMove struct {
		X     float64
		Track timeline.Track
	}
	// PointerUp ends a drag.
	PointerUp struct{}
	// TrackClick is a click on the timeline track outside a drag.
	TrackClick struct {
		X     float64
		Track timeline.Track
	}
	MapClick struct {
		Coord geometry.Coordinate
	}
	MapDoubleClick struct {
		Coord geometry.Coordinate
	}
	SetMode struct {
		Mode timeline.Mode
	}
	StartDraw         struct{}
	CancelDraw        struct{}
	ConfirmDataSource struct {
		Source region.DataSource
	}
	CloseModal   struct{}
	DeleteRegion struct {
		ID string
	}
	Recenter      struct{}
	ToggleSidebar struct{}
	Escape        struct{}
	// Refresh re-fetches every region for the current selection.
	Refresh struct{}
)

func (PointerDown) Name() string       { return "pointer-down" }
func (PointerMove) Name() string       { return "pointer-move" }
func (PointerUp) Name() string         { return "pointer-up" }
func (TrackClick) Name() string        { return "track-click" }
func (MapClick) Name() string          { return "map-click" }
func (MapDoubleClick) Name() string    { return "map-dblclick" }
func (SetMode) Name() string           { return "set-mode" }
func (StartDraw) Name() string         { return "start-draw" }
func (CancelDraw) Name() string        { return "cancel-draw" }
func (ConfirmDataSource) Name() string { return "confirm-data-source" }
func (CloseModal) Name() string        { return "close-modal" }
func (DeleteRegion) Name() string      { return "delete-region" }
func (Recenter) Name() string          { return "recenter" }
func (ToggleSidebar) Name() string     { return "toggle-sidebar" }
func (Escape) Name() string            { return "escape" }
func (Refresh) Name() string           { return "refresh" }
