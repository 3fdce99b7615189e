package geo

import "math"

// HaversineDistance computes the great-circle distance between two
// coordinates in meters.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // meters

	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Geofence classifies a coordinate as inside or outside a circular area
// around a reference point.
type Geofence struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Contains reports whether the coordinate lies within the fence radius.
func (g Geofence) Contains(lat, lon float64) bool {
	return HaversineDistance(g.Latitude, g.Longitude, lat, lon) <= g.RadiusMeters
}
