package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestCentroid_Square(t *testing.T) {
	square := []Coordinate{{0, 0}, {0, 2}, {2, 2}, {2, 0}}

	c := Centroid(square)

	assert.InDelta(t, 1.0, c.Lat, 1e-9)
	assert.InDelta(t, 1.0, c.Lng, 1e-9)
}

func TestCentroid_OrderIndependent(t *testing.T) {
	a := []Coordinate{{52.5, 13.4}, {52.6, 13.5}, {52.4, 13.6}}
	b := []Coordinate{{52.4, 13.6}, {52.5, 13.4}, {52.6, 13.5}}

	ca, cb := Centroid(a), Centroid(b)
	assert.InDelta(t, ca.Lat, cb.Lat, 1e-12)
	assert.InDelta(t, ca.Lng, cb.Lng, 1e-12)
}

func TestCentroid_IgnoresVertexSpacing(t *testing.T) {
	// Three vertices bunched in one corner pull the mean towards it.
	pts := []Coordinate{{0, 0}, {0, 0.1}, {0.1, 0}, {4, 4}}

	c := Centroid(pts)

	assert.InDelta(t, 1.025, c.Lat, 1e-9)
	assert.InDelta(t, 1.025, c.Lng, 1e-9)
}

func TestCentroid_Empty(t *testing.T) {
	assert.Equal(t, Coordinate{}, Centroid(nil))
}

func TestToPolygon_ClosesRingInLngLatOrder(t *testing.T) {
	poly := ToPolygon([]Coordinate{{Lat: 1, Lng: 10}, {Lat: 2, Lng: 20}, {Lat: 3, Lng: 30}})

	if assert.Len(t, poly, 1) {
		ring := poly[0]
		assert.Len(t, ring, 4)
		assert.Equal(t, orb.Point{10, 1}, ring[0])
		assert.True(t, ring.Closed())
	}
}
