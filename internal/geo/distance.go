package geo

import "math"

const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometers between two
// coordinate pairs (haversine formula).
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// WithinRadius reports whether two points lie within radiusKm of each other.
func WithinRadius(lat1, lon1, lat2, lon2, radiusKm float64) bool {
	return Distance(lat1, lon1, lat2, lon2) <= radiusKm
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
