package timeclock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/geo"
)

// offsetNorth returns a point approximately meters north of the origin.
func offsetNorth(origin geo.Coordinates, meters float64) geo.Coordinates {
	return geo.Coordinates{
		Latitude:  origin.Latitude + meters/111320.0,
		Longitude: origin.Longitude,
	}
}

func TestMatchNoAssignments(t *testing.T) {
	_, err := Match(geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}, nil)
	require.ErrorIs(t, err, ErrNoAssignments)
}

func TestMatchOutOfRange(t *testing.T) {
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	far := offsetNorth(pos, 500)
	assigned := []AssignedWorkplace{
		{WorkplaceID: uuid.New(), Name: "Depot", Latitude: far.Latitude, Longitude: far.Longitude, RadiusM: 100},
	}
	_, err := Match(pos, assigned)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestMatchNearestWins(t *testing.T) {
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	nearCenter := offsetNorth(pos, 40)
	farCenter := offsetNorth(pos, 60)

	// B has the larger radius but A is closer; nearest wins.
	a := AssignedWorkplace{WorkplaceID: uuid.New(), Name: "A", Latitude: nearCenter.Latitude, Longitude: nearCenter.Longitude, RadiusM: 50}
	b := AssignedWorkplace{WorkplaceID: uuid.New(), Name: "B", Latitude: farCenter.Latitude, Longitude: farCenter.Longitude, RadiusM: 100}

	matched, err := Match(pos, []AssignedWorkplace{b, a})
	require.NoError(t, err)
	require.Equal(t, a.WorkplaceID, matched.WorkplaceID)
	require.InDelta(t, 40, matched.DistanceM, 1)
}

func TestMatchBoundaryInclusive(t *testing.T) {
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	center := offsetNorth(pos, 80)
	d := geo.Distance(pos, center)

	assigned := []AssignedWorkplace{
		{WorkplaceID: uuid.New(), Name: "Edge", Latitude: center.Latitude, Longitude: center.Longitude, RadiusM: d},
	}
	matched, err := Match(pos, assigned)
	require.NoError(t, err)
	require.Equal(t, assigned[0].WorkplaceID, matched.WorkplaceID)
}

func TestMatchEquidistantTieBreak(t *testing.T) {
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	center := offsetNorth(pos, 30)

	first := AssignedWorkplace{WorkplaceID: uuid.New(), Name: "First", Latitude: center.Latitude, Longitude: center.Longitude, RadiusM: 50}
	second := AssignedWorkplace{WorkplaceID: uuid.New(), Name: "Second", Latitude: center.Latitude, Longitude: center.Longitude, RadiusM: 50}

	matched, err := Match(pos, []AssignedWorkplace{first, second})
	require.NoError(t, err)
	require.Equal(t, first.WorkplaceID, matched.WorkplaceID)
}

func TestMatchAtWorkplaceCenter(t *testing.T) {
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}
	assigned := []AssignedWorkplace{
		{WorkplaceID: uuid.New(), Name: "HQ", Latitude: pos.Latitude, Longitude: pos.Longitude, RadiusM: 100},
	}
	matched, err := Match(pos, assigned)
	require.NoError(t, err)
	require.InDelta(t, 0, matched.DistanceM, 1e-9)
}
