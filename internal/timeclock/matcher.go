package timeclock

import (
	"github.com/shiftwise/shiftwise/internal/geo"
)

// Candidate is a workplace whose geofence contains the observed position.
type Candidate struct {
	AssignedWorkplace
	DistanceM float64 `json:"distance_m"`
}

// Match selects the workplace a worker may clock in at from the observed
// position. It is a pure selection function; committing the clock-in is the
// caller's job.
//
// The nearest eligible workplace wins. The geofence boundary is inclusive:
// distance equal to radius_m is eligible. When two candidates are exactly
// equidistant the one appearing first in the assignment list is chosen, so
// the result is deterministic for a given assignment order.
func Match(pos geo.Coordinates, assigned []AssignedWorkplace) (Candidate, error) {
	if len(assigned) == 0 {
		return Candidate{}, ErrNoAssignments
	}

	var best Candidate
	found := false
	for _, wp := range assigned {
		d := geo.DistanceMeters(wp.Latitude, wp.Longitude, pos.Latitude, pos.Longitude)
		if d > wp.RadiusM {
			continue
		}
		if !found || d < best.DistanceM {
			best = Candidate{AssignedWorkplace: wp, DistanceM: d}
			found = true
		}
	}
	if !found {
		return Candidate{}, ErrOutOfRange
	}
	return best, nil
}
