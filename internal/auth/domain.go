// Package auth handles credential checks, bearer-token sessions and the
// request middleware that resolves them.
package auth

import (
	"errors"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/shared"
)

// Credentials is the login view of a user profile. It never leaves this
// package.
type Credentials struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         shared.Role
}

// ErrSessionNotFound indicates an unknown or expired bearer token.
var ErrSessionNotFound = errors.New("auth: session not found")
