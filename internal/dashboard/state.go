package dashboard

import (
	"github.com/i474232898/weather-region-dashboard/internal/classify"
	"github.com/i474232898/weather-region-dashboard/internal/geometry"
	"github.com/i474232898/weather-region-dashboard/internal/region"
	"github.com/i474232898/weather-region-dashboard/internal/timeline"
)

// State is a read-only snapshot of the dashboard.
type State struct {
	Window           timeline.Window       `json:"window"`
	WindowStartLabel string                `json:"windowStartLabel"`
	WindowEndLabel   string                `json:"windowEndLabel"`
	Selection        timeline.Selection    `json:"selection"`
	SelectionLabel   string                `json:"selectionLabel"`
	Dragging         timeline.Handle       `json:"dragging,omitempty"`
	Drawing          bool                  `json:"drawing"`
	DraftVertices    []geometry.Coordinate `json:"draftVertices"`
	Pending          *region.Pending       `json:"pending,omitempty"`
	ModalOpen        bool                  `json:"modalOpen"`
	SidebarCollapsed bool                  `json:"sidebarCollapsed"`
	MapView          MapView               `json:"mapView"`
	APIStatus        APIStatus             `json:"apiStatus"`
	Loading          bool                  `json:"loading"`
	Regions          []RegionView          `json:"regions"`
}

// RegionView is a region with its display classification.
type RegionView struct {
	region.Region
	Index int    `json:"index"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// State returns a snapshot. It does not wait for an in-flight dispatch.
func (c *Controller) State() State {
	sel := c.timeline.Selection()
	win := c.timeline.Window()

	st := State{
		Window:           win,
		WindowStartLabel: timeline.FormatTime(win.Start, c.opts.Location),
		WindowEndLabel:   timeline.FormatTime(win.End, c.opts.Location),
		Selection:        sel,
		SelectionLabel:   sel.Label(c.opts.Location),
		Dragging:         c.timeline.Dragging(),
		Drawing:          c.registry.Drawing(),
		DraftVertices:    c.registry.Vertices(),
		Regions:          c.Regions(),
	}
	if p, ok := c.registry.Pending(); ok {
		st.Pending = &p
	}

	c.uiMu.RLock()
	st.ModalOpen = c.modalOpen
	st.SidebarCollapsed = c.sidebarCollapsed
	st.MapView = c.mapView
	st.APIStatus = c.apiStatus
	st.Loading = c.loading > 0
	c.uiMu.RUnlock()

	return st
}

// Regions returns every region with its colour and label, in registry order.
func (c *Controller) Regions() []RegionView {
	regions := c.registry.Regions()
	out := make([]RegionView, 0, len(regions))
	for i, reg := range regions {
		view := RegionView{Region: reg, Index: i + 1}
		switch {
		case reg.Status == region.StatusErrored:
			view.Color, view.Label = classify.ErrorColor, "Error"
		case reg.Observation != nil:
			view.Color, view.Label = classify.ColorFor(reg.Observation.Temperature, c.opts.Rules)
		default:
			view.Color, view.Label = classify.FallbackColor, "Loading..."
		}
		out = append(out, view)
	}
	return out
}
