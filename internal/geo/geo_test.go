package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceSamePoint(t *testing.T) {
	points := []Coordinates{
		{Latitude: 0, Longitude: 0},
		{Latitude: 40.7128, Longitude: -74.0060},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 90, Longitude: 0},
	}
	for _, p := range points {
		require.InDelta(t, 0, Distance(p, p), 1e-9)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	b := Coordinates{Latitude: 51.5074, Longitude: -0.1278}
	require.InDelta(t, Distance(a, b), Distance(b, a), 1e-6)
}

func TestDistanceKnownValue(t *testing.T) {
	// New York -> London is roughly 5570 km on a spherical model.
	a := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	b := Coordinates{Latitude: 51.5074, Longitude: -0.1278}
	d := Distance(a, b)
	require.InDelta(t, 5570000, d, 20000)
}

func TestDistanceShortRange(t *testing.T) {
	// ~111 m per 0.001 degrees of latitude.
	a := Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	b := Coordinates{Latitude: 40.7138, Longitude: -74.0060}
	require.InDelta(t, 111.2, Distance(a, b), 1.0)
}

func TestDistanceFinite(t *testing.T) {
	d := DistanceMeters(89.9999, 179.9999, -89.9999, -179.9999)
	require.False(t, math.IsNaN(d))
	require.False(t, math.IsInf(d, 0))
	require.GreaterOrEqual(t, d, 0.0)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Coordinates{Latitude: 90, Longitude: -180}.Validate())
	require.NoError(t, Coordinates{Latitude: -90, Longitude: 180}.Validate())
	require.ErrorIs(t, Coordinates{Latitude: 90.1, Longitude: 0}.Validate(), ErrInvalidCoordinate)
	require.ErrorIs(t, Coordinates{Latitude: 0, Longitude: -180.5}.Validate(), ErrInvalidCoordinate)
	require.ErrorIs(t, Coordinates{Latitude: math.NaN(), Longitude: 0}.Validate(), ErrInvalidCoordinate)
}
