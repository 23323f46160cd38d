// Package geo computes great-circle distances for geofence checks.
package geo

import "math"

// EarthRadiusMeters is the spherical-earth approximation radius.
const EarthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance in meters between two
// coordinates given in degrees. Pure function; NaN or out-of-range inputs
// propagate into the result.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
