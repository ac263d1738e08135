// Package timeclock implements geofenced clock-in matching and the shift
// state machine that guards time entries.
package timeclock

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Method enumerates how a time entry was recorded.
type Method string

const (
	// MethodSelf is a worker clocking themselves in or out.
	MethodSelf Method = "self"
	// MethodAdmin is an admin override on behalf of a worker.
	MethodAdmin Method = "admin"
	// MethodSeed marks entries created by seed tooling.
	MethodSeed Method = "seed"
)

// TimeEntry is a single shift record. A nil ClockOutAt denotes an open shift;
// a nil WorkplaceID survives workplace deletion mid-shift.
type TimeEntry struct {
	ID          uuid.UUID  `json:"id"`
	WorkerID    uuid.UUID  `json:"worker_id"`
	WorkplaceID *uuid.UUID `json:"workplace_id"`
	ClockInAt   time.Time  `json:"clock_in_at"`
	ClockOutAt  *time.Time `json:"clock_out_at"`
	Method      Method     `json:"method"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Open reports whether the entry is an open shift.
func (e TimeEntry) Open() bool {
	return e.ClockOutAt == nil
}

// AssignedWorkplace is the read model the matcher operates on: an assignment
// resolved to its workplace geofence. Assignments whose workplace no longer
// exists are filtered out by the repository.
type AssignedWorkplace struct {
	WorkplaceID uuid.UUID `json:"workplace_id"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RadiusM     float64   `json:"radius_m"`
}

// EntryWithRelations joins an entry with display data for activity feeds.
type EntryWithRelations struct {
	TimeEntry
	WorkplaceName string `json:"workplace_name,omitempty"`
	WorkerName    string `json:"worker_name,omitempty"`
	WorkerEmail   string `json:"worker_email,omitempty"`
}

var (
	// ErrNoAssignments indicates the worker has no assigned workplaces.
	ErrNoAssignments = errors.New("timeclock: no assigned workplaces")
	// ErrOutOfRange indicates the position matches no assigned geofence.
	ErrOutOfRange = errors.New("timeclock: outside workplace radius")
	// ErrAlreadyClockedIn indicates an open shift already exists.
	ErrAlreadyClockedIn = errors.New("timeclock: already clocked in")
	// ErrNotClockedIn indicates no open shift exists for the worker.
	ErrNotClockedIn = errors.New("timeclock: not clocked in")
	// ErrNoActiveShiftAtWorkplace indicates no open shift matches the
	// requested worker and workplace pair.
	ErrNoActiveShiftAtWorkplace = errors.New("timeclock: no active shift found")
	// ErrInvalidPosition indicates malformed coordinates.
	ErrInvalidPosition = errors.New("timeclock: invalid position")
	// ErrWorkplaceNotFound indicates the referenced workplace does not exist.
	ErrWorkplaceNotFound = errors.New("timeclock: workplace not found")
)
