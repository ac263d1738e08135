package shared

import (
	"context"

	"github.com/google/uuid"
)

// Role describes what a caller is allowed to do.
type Role string

const (
	// RoleAdmin manages workplaces, workers and overrides.
	RoleAdmin Role = "admin"
	// RoleWorker may clock in and out at assigned workplaces.
	RoleWorker Role = "worker"
)

// Identity is the authenticated caller resolved by the session layer.
// Core services trust this input.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type identityContextKey struct{}

// ContextWithIdentity stores the caller identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}
