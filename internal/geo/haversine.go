// Package geo provides great-circle distance and reverse geocoding.
package geo

import "math"

// earthRadiusMiles is the sphere radius used for distance calculations.
const earthRadiusMiles = 3959

// Distance returns the great-circle distance in miles between two
// latitude/longitude points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
