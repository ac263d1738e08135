// Package workplace manages workplace geofences and worker assignments.
package workplace

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// MinRadiusM is the smallest permitted geofence radius.
	MinRadiusM = 10
	// DefaultRadiusM applies when a workplace is created without a radius.
	DefaultRadiusM = 50
)

// Workplace is a physical location with a circular geofence.
type Workplace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RadiusM     float64   `json:"radius_m"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Assignment relates a worker to a workplace. Unique per pair.
type Assignment struct {
	ID          uuid.UUID `json:"id"`
	WorkerID    uuid.UUID `json:"worker_id"`
	WorkplaceID uuid.UUID `json:"workplace_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// AssignmentWithWorkplace resolves an assignment to its workplace. The
// workplace is nil when it has been deleted out from under the assignment.
type AssignmentWithWorkplace struct {
	Assignment
	Workplace *Workplace `json:"workplace"`
}

// UpsertInput carries admin create/update parameters.
type UpsertInput struct {
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	RadiusM     float64
}

var (
	// ErrNotFound indicates the workplace does not exist.
	ErrNotFound = errors.New("workplace: not found")
	// ErrAlreadyAssigned indicates the worker already holds this assignment.
	ErrAlreadyAssigned = errors.New("workplace: worker already assigned")
	// ErrAssignmentNotFound indicates no such worker/workplace assignment.
	ErrAssignmentNotFound = errors.New("workplace: assignment not found")
	// ErrInvalidReference indicates the worker or workplace id does not resolve.
	ErrInvalidReference = errors.New("workplace: unknown worker or workplace")
	// ErrInvalidInput indicates a rejected create/update payload.
	ErrInvalidInput = errors.New("workplace: invalid input")
)
