package render

import (
	"sync"

	"github.com/paulmach/orb/geojson"

	"github.com/i474232898/weather-region-dashboard/internal/geometry"
)

// Shape is one rendered polygon.
type Shape struct {
	ID       string
	Vertices []geometry.Coordinate
	Fill     string
	Popup    string
}

// Scene is an in-memory rendering surface. Shapes keep their draw order and are
// exported as a GeoJSON FeatureCollection for the browser map to display.
type Scene struct {
	mu     sync.RWMutex
	order  []string
	shapes map[string]*Shape
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{shapes: make(map[string]*Shape)}
}

// DrawRegion adds or replaces the outline of id. Fill and popup are kept on redraw.
func (s *Scene) DrawRegion(id string, vertices []geometry.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	verts := append([]geometry.Coordinate(nil), vertices...)
	if shape, ok := s.shapes[id]; ok {
		shape.Vertices = verts
		return
	}
	s.shapes[id] = &Shape{ID: id, Vertices: verts}
	s.order = append(s.order, id)
}

// SetFill restyles id. Unknown ids are ignored.
func (s *Scene) SetFill(id, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shape, ok := s.shapes[id]; ok {
		shape.Fill = color
	}
}

// SetPopup attaches or replaces the popup text of id. Unknown ids are ignored.
func (s *Scene) SetPopup(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if shape, ok := s.shapes[id]; ok {
		shape.Popup = text
	}
}

// RemoveRegion drops id from the scene.
func (s *Scene) RemoveRegion(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shapes[id]; !ok {
		return
	}
	delete(s.shapes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Shape returns a copy of the shape with id.
func (s *Scene) Shape(id string) (Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shape, ok := s.shapes[id]
	if !ok {
		return Shape{}, false
	}
	c := *shape
	c.Vertices = append([]geometry.Coordinate(nil), shape.Vertices...)
	return c, true
}

// Len returns the number of shapes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FeatureCollection exports the scene in draw order. Shapes with fewer than three
// vertices are emitted as LineStrings.
func (s *Scene) FeatureCollection() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	for _, id := range s.order {
		shape := s.shapes[id]

		var f *geojson.Feature
		if len(shape.Vertices) >= 3 {
			f = geojson.NewFeature(geometry.ToPolygon(shape.Vertices))
		} else {
			f = geojson.NewFeature(geometry.ToLineString(shape.Vertices))
		}
		f.ID = shape.ID
		f.Properties["id"] = shape.ID
		f.Properties["fill"] = shape.Fill
		f.Properties["popup"] = shape.Popup
		fc.Append(f)
	}
	return fc
}
