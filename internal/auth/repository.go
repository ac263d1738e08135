package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftwise/shiftwise/internal/shared"
)

// Repository reads credential rows from user_profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ByEmail returns the credentials for a login attempt.
func (r *Repository) ByEmail(ctx context.Context, email string) (Credentials, error) {
	const query = `SELECT id, email, password_hash, role FROM user_profiles WHERE email = $1`

	var c Credentials
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).
		Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credentials{}, shared.ErrInvalidCredentials
		}
		return Credentials{}, err
	}
	return c, nil
}

// Role returns the current role for a user id. Resolved on every request so
// role changes apply without re-login.
func (r *Repository) Role(ctx context.Context, id uuid.UUID) (shared.Role, error) {
	var role shared.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM user_profiles WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return role, nil
}
