// Package geo provides great-circle distance computation for geofencing.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusM is the spherical Earth radius in meters used by the haversine formula.
const EarthRadiusM = 6371000

// ErrInvalidCoordinate indicates a latitude or longitude outside the WGS84 domain.
var ErrInvalidCoordinate = errors.New("geo: coordinate out of range")

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the position lies within [-90,90] latitude and [-180,180] longitude.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return ErrInvalidCoordinate
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceMeters returns the haversine distance between two positions in meters.
// The result is finite and non-negative for any finite input.
func DistanceMeters(originLat, originLng, targetLat, targetLng float64) float64 {
	dLat := toRadians(targetLat - originLat)
	dLng := toRadians(targetLng - originLng)
	lat1 := toRadians(originLat)
	lat2 := toRadians(targetLat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusM * c
}

// Distance returns the haversine distance between two Coordinates in meters.
func Distance(origin, target Coordinates) float64 {
	return DistanceMeters(origin.Latitude, origin.Longitude, target.Latitude, target.Longitude)
}
