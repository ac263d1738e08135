package workers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftwise/shiftwise/internal/platform/db"
	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/workplace"
)

// Repository provides PostgreSQL backed persistence for user profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, full_name, phone, role, created_at, updated_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	var phone pgtype.Text
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &phone, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Profile{}, err
	}
	p.Phone = phone.String
	return p, nil
}

// Create inserts a profile and, when workplaceID is set, its initial
// assignment in the same transaction.
func (r *Repository) Create(ctx context.Context, input CreateInput, passwordHash string, workplaceID *uuid.UUID) (Profile, error) {
	const insertProfile = `
		INSERT INTO user_profiles (id, email, password_hash, full_name, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + profileColumns

	const insertAssignment = `
		INSERT INTO worker_assignments (id, worker_id, workplace_id, assigned_at)
		VALUES ($1, $2, $3, NOW())`

	var phone pgtype.Text
	if input.Phone != "" {
		phone = pgtype.Text{String: input.Phone, Valid: true}
	}

	var created Profile
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		p, err := scanProfile(tx.QueryRow(ctx, insertProfile,
			uuid.New(), input.Email, passwordHash, input.FullName, phone, input.Role))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrEmailTaken
			}
			return err
		}
		if workplaceID != nil {
			if _, err := tx.Exec(ctx, insertAssignment, uuid.New(), p.ID, *workplaceID); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == "23503" {
					return workplace.ErrInvalidReference
				}
				return err
			}
		}
		created = p
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return created, nil
}

// GetByID fetches a single profile.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// List returns all profiles ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM user_profiles ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Update applies admin edits to a profile.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Profile, error) {
	const query = `
		UPDATE user_profiles
		SET full_name = $2, phone = $3, role = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	var phone pgtype.Text
	if input.Phone != "" {
		phone = pgtype.Text{String: input.Phone, Valid: true}
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id, input.FullName, phone, input.Role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// UpdateSelf applies a worker's own edits, leaving role untouched.
func (r *Repository) UpdateSelf(ctx context.Context, id uuid.UUID, input SelfUpdateInput) (Profile, error) {
	const query = `
		UPDATE user_profiles
		SET full_name = $2, phone = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	var phone pgtype.Text
	if input.Phone != "" {
		phone = pgtype.Text{String: input.Phone, Valid: true}
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id, input.FullName, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// Role returns the current role for an id. The auth middleware re-reads it
// on every request so demotions apply immediately.
func (r *Repository) Role(ctx context.Context, id uuid.UUID) (shared.Role, error) {
	var role shared.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM user_profiles WHERE id = $1`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return role, nil
}
