package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_ZeroForSamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.0, -74.0},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMeters(p[0], p[1], p[0], p[1]))
	}
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	d1 := DistanceMeters(40.0, -74.0, 41.0, -73.0)
	d2 := DistanceMeters(41.0, -73.0, 40.0, -74.0)
	assert.Equal(t, d1, d2)
}

func TestDistanceMeters_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude on a 6,371km sphere is pi*R/180 meters.
	want := math.Pi * EarthRadiusMeters / 180
	got := DistanceMeters(40.0, -74.0, 41.0, -74.0)
	assert.InDelta(t, want, got, 0.01)
}

func TestDistanceMeters_ConstructedOffset(t *testing.T) {
	// Moving north by d/R radians of latitude covers d meters.
	const meters = 50.0
	lat2 := 40.0 + (meters/EarthRadiusMeters)*(180/math.Pi)
	got := DistanceMeters(40.0, -74.0, lat2, -74.0)
	assert.InDelta(t, meters, got, 1e-6)
}

func TestDistanceMeters_NaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(DistanceMeters(math.NaN(), 0, 0, 0)))
}
