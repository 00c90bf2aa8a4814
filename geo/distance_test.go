package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		p := Point{Lat: 12.9716, Lng: 77.5946}
		assert.Zero(t, DistanceKm(p, p))
	})

	t.Run("about one km per 0.009 degrees longitude on the equator", func(t *testing.T) {
		d := DistanceKm(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 0.009})
		assert.InDelta(t, 1.0, d, 0.01)
	})

	t.Run("symmetric", func(t *testing.T) {
		a := Point{Lat: 12.9716, Lng: 77.5946}
		b := Point{Lat: 13.0827, Lng: 80.2707}
		assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
	})

	t.Run("bangalore to chennai is roughly 290 km", func(t *testing.T) {
		d := DistanceKm(Point{Lat: 12.9716, Lng: 77.5946}, Point{Lat: 13.0827, Lng: 80.2707})
		assert.InDelta(t, 290, d, 10)
	})
}

func TestBoundingDelta(t *testing.T) {
	t.Run("equator box is near-square", func(t *testing.T) {
		dLat, dLng := BoundingDelta(0, 5)
		assert.InDelta(t, dLat, dLng, 1e-9)
	})

	t.Run("longitude delta widens away from the equator", func(t *testing.T) {
		dLat, dLng := BoundingDelta(60, 5)
		assert.Greater(t, dLng, dLat)
	})

	t.Run("cosine clamp keeps the delta finite near the poles", func(t *testing.T) {
		_, dLng := BoundingDelta(89.9999, 5)
		assert.Less(t, dLng, 5.0)
	})
}
