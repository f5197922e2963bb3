package geo

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance computations.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two lat/lon points in
// kilometers. The s2 angle between the two points is computed with the
// haversine formula, so this is the standard spherical result scaled to the
// mean Earth radius.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}
