package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_IdentityIsZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{40.0, -74.0},
		{-33.86, 151.21},
		{90, 0},
		{-90, 180},
	}

	for _, p := range points {
		pt := LatLon(p[0], p[1])
		assert.Zero(t, Distance(pt, pt))
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := LatLon(40.0, -74.0)
	b := LatLon(41.5, -73.2)

	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_KnownValues(t *testing.T) {
	// ~140 m: one thousandth of a degree in both axes at latitude 40.
	near := Distance(LatLon(40.0, -74.0), LatLon(40.001, -74.001))
	assert.InDelta(t, 140, near, 2)

	// One degree of latitude is ~111.2 km regardless of longitude.
	far := Distance(LatLon(40.0, -74.0), LatLon(41.0, -74.0))
	assert.InDelta(t, 111195, far, 200)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(40.0, -74.0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
}

func TestLatLon_Ordering(t *testing.T) {
	pt := LatLon(40.0, -74.0)

	assert.Equal(t, 40.0, pt.Lat())
	assert.Equal(t, -74.0, pt.Lon())
}
