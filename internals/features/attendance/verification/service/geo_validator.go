package service

import "math"

// Jari-jari bumi (meter) untuk Haversine
const earthRadiusMeters = 6371000.0

type GeoResult struct {
	Valid          bool    `json:"valid"`
	DistanceMeters float64 `json:"distance_meters"`
}

// ValidateGeofence: great-circle distance (Haversine) + cek radius, inklusif di
// batas (distance == radius ⇒ valid). Pure function tanpa side effect; caller
// yang bertanggung jawab menolak koordinat di luar range sebelum ke sini.
func ValidateGeofence(userLat, userLng, venueLat, venueLng, radiusMeters float64) GeoResult {
	distance := HaversineMeters(userLat, userLng, venueLat, venueLng)
	return GeoResult{
		Valid:          distance <= radiusMeters,
		DistanceMeters: distance,
	}
}

func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := degToRad(lat1)
	phi2 := degToRad(lat2)
	dPhi := degToRad(lat2 - lat1)
	dLambda := degToRad(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
