package functions

import "math"

const earthMeanRadiusKm = 6371.0087714

// Haversin returns the great-circle distance in kilometers between two
// points given as (lat1, lon1, lat2, lon2) in degrees.
func Haversin(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(p1)*math.Cos(p2)*sinLon*sinLon
	return 2 * earthMeanRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
