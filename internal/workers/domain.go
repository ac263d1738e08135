// Package workers manages worker profiles and admin provisioning.
package workers

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/stats"
	"github.com/shiftwise/shiftwise/internal/timeclock"
	"github.com/shiftwise/shiftwise/internal/workplace"
)

// Profile is a user account. The password hash never leaves the repository
// layer.
type Profile struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"full_name"`
	Phone     string      `json:"phone,omitempty"`
	Role      shared.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ProfileWithAssignments pairs a profile with its workplace assignments for
// admin listings.
type ProfileWithAssignments struct {
	Profile
	Assignments []workplace.AssignmentWithWorkplace `json:"assignments"`
}

// Detail is the full admin view of a single worker.
type Detail struct {
	Profile     Profile                             `json:"profile"`
	Assignments []workplace.AssignmentWithWorkplace `json:"assignments"`
	OpenEntry   *timeclock.TimeEntry                `json:"open_entry"`
	Entries     []timeclock.TimeEntry               `json:"entries"`
	Stats       stats.Snapshot                      `json:"stats"`
}

// CreateInput carries admin provisioning parameters.
type CreateInput struct {
	Email       string
	Password    string
	FullName    string
	Phone       string
	Role        shared.Role
	WorkplaceID *uuid.UUID
}

// UpdateInput carries admin profile edits. Role changes take effect on the
// worker's next request.
type UpdateInput struct {
	FullName string
	Phone    string
	Role     shared.Role
}

// SelfUpdateInput carries the fields a worker may change on their own
// profile.
type SelfUpdateInput struct {
	FullName string
	Phone    string
}

var (
	// ErrNotFound indicates the worker does not exist.
	ErrNotFound = errors.New("workers: not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("workers: email already registered")
	// ErrInvalidInput indicates a rejected payload.
	ErrInvalidInput = errors.New("workers: invalid input")
)
