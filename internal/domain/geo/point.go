package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// EarthRadiusMeters is the mean radius of Earth used for Haversine distance.
const EarthRadiusMeters = 6_371_000.0

// ErrInvalidCoordinates is returned for latitude outside [-90,90] or longitude outside [-180,180].
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a validated WGS84 coordinate pair.
type Point struct {
	lat float64
	lon float64
}

// NewPoint validates and creates a Point.
func NewPoint(lat, lon float64) (Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("lat=%g lon=%g: %w", lat, lon, ErrInvalidCoordinates)
	}
	return Point{lat: lat, lon: lon}, nil
}

// Lat returns the latitude in degrees.
func (p Point) Lat() float64 { return p.lat }

// Lon returns the longitude in degrees.
func (p Point) Lon() float64 { return p.lon }

// IsPlaceholder reports whether p is the (0,0) point that upstream exports use for "unknown".
func (p Point) IsPlaceholder() bool { return p.lat == 0 && p.lon == 0 }

// DistanceKm returns the great-circle distance to q in kilometers.
func (p Point) DistanceKm(q Point) float64 {
	return Haversine(p.lat, p.lon, q.lat, q.lon) / 1000
}

// LonLat renders the point in the "lon,lat" form expected by GEO index fields.
func (p Point) LonLat() string {
	return strconv.FormatFloat(p.lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.lat, 'f', -1, 64)
}

// Haversine returns the great-circle distance in meters between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
