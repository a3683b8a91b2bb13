package geometry

import (
	"github.com/paulmach/orb"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Point returns the coordinate as an orb.Point in [lng, lat] order.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Centroid returns the arithmetic mean of the vertices' latitude and longitude.
// It is a plain vertex average, not an area-weighted polygon centroid.
func Centroid(vertices []Coordinate) Coordinate {
	if len(vertices) == 0 {
		return Coordinate{}
	}

	var lat, lng float64
	for _, v := range vertices {
		lat += v.Lat
		lng += v.Lng
	}

	n := float64(len(vertices))
	return Coordinate{Lat: lat / n, Lng: lng / n}
}

// ToPolygon converts an open vertex list into a closed single-ring orb.Polygon.
func ToPolygon(vertices []Coordinate) orb.Polygon {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, v.Point())
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// ToLineString is used for drafts that do not yet form a polygon.
func ToLineString(vertices []Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(vertices))
	for _, v := range vertices {
		ls = append(ls, v.Point())
	}
	return ls
}
