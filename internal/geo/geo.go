// Package geo holds the little spherical geometry the note map needs.
package geo

import "math"

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two coordinates
// using the haversine formula. Good to well under a meter at city scale.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Within reports whether a point lies inside radiusMeters of a center.
func Within(centerLat, centerLng, lat, lng, radiusMeters float64) bool {
	return DistanceMeters(centerLat, centerLng, lat, lng) <= radiusMeters
}
