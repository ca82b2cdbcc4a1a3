package geo

import "math"

// VectorDim is the dimension of the ECEF vector stored next to every located document.
const VectorDim = 3

// ToECEF converts latitude/longitude (degrees) to a unit-sphere ECEF vector.
// Euclidean order between unit vectors matches great-circle order, so an L2 KNN
// over these vectors returns documents nearest-first.
func ToECEF(latDeg, lonDeg float64) [3]float32 {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	return [3]float32{
		float32(math.Cos(lat) * math.Cos(lon)),
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
	}
}

// Vector returns the ECEF vector of p as a slice for KNN storage and queries.
func (p Point) Vector() []float32 {
	v := ToECEF(p.lat, p.lon)
	return v[:]
}
