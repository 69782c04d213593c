// Package geo implements the great-circle distance contract and the
// radius filtering used by the notification fan-out.
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// LatLon builds an orb.Point from latitude/longitude in that order.
// orb stores points as (lon, lat); going through this helper keeps the
// argument order consistent everywhere a point is constructed.
func LatLon(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// ValidCoordinates reports whether lat/lon are in WGS84 range.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Distance returns the haversine great-circle distance between two points
// in meters. Symmetric, and zero for identical points.
func Distance(a, b orb.Point) float64 {
	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}
