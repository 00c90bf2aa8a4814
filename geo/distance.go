package geo

import "math"

const earthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle distance between a and b using the
// haversine formula. The same function backs both the candidate radius filter
// and the pricing legs so the two can never disagree.
func DistanceKm(a, b Point) float64 {
	lat1 := degreesToRadians(a.Lat)
	lon1 := degreesToRadians(a.Lng)
	lat2 := degreesToRadians(b.Lat)
	lon2 := degreesToRadians(b.Lng)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// BoundingDelta returns the latitude and longitude deltas (in degrees) of a box
// that encloses a circle of radiusKm around lat. Used as a cheap SQL prefilter
// before the exact haversine check.
func BoundingDelta(lat, radiusKm float64) (dLat, dLng float64) {
	dLat = radiusKm / 111.0
	cos := math.Cos(degreesToRadians(lat))
	if cos < 0.01 {
		cos = 0.01
	}
	dLng = radiusKm / (111.0 * cos)
	return dLat, dLng
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
