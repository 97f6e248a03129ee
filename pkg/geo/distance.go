package geo

import "math"

const (
	// EarthRadiusM is the mean Earth radius used by Haversine, in meters.
	EarthRadiusM = 6_371_000.0

	// MetersPerDegLat is the constant length of one degree of latitude.
	MetersPerDegLat = 111_320.0
)

// MetersPerDegLng returns the length of one degree of longitude at the given latitude.
func MetersPerDegLng(lat float64) float64 {
	return MetersPerDegLat * math.Cos(radians(lat))
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dphi := radians(lat2 - lat1)
	dlmb := radians(lng2 - lng1)

	sinPhi := math.Sin(dphi / 2)
	sinLmb := math.Sin(dlmb / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLmb*sinLmb
	return 2 * EarthRadiusM * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
