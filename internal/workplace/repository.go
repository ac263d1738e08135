package workplace

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for workplaces and
// assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const workplaceColumns = `id, name, description, latitude, longitude, radius_m, created_at, updated_at`

func scanWorkplace(row pgx.Row) (Workplace, error) {
	var w Workplace
	var description pgtype.Text
	err := row.Scan(&w.ID, &w.Name, &description, &w.Latitude, &w.Longitude, &w.RadiusM, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return Workplace{}, err
	}
	w.Description = description.String
	return w, nil
}

// Create inserts a new workplace.
func (r *Repository) Create(ctx context.Context, input UpsertInput) (Workplace, error) {
	const query = `
		INSERT INTO workplaces (id, name, description, latitude, longitude, radius_m, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + workplaceColumns

	var description pgtype.Text
	if input.Description != "" {
		description = pgtype.Text{String: input.Description, Valid: true}
	}
	return scanWorkplace(r.pool.QueryRow(ctx, query,
		uuid.New(), input.Name, description, input.Latitude, input.Longitude, input.RadiusM))
}

// Update mutates an existing workplace in place.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (Workplace, error) {
	const query = `
		UPDATE workplaces
		SET name = $2, description = $3, latitude = $4, longitude = $5, radius_m = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + workplaceColumns

	var description pgtype.Text
	if input.Description != "" {
		description = pgtype.Text{String: input.Description, Valid: true}
	}
	w, err := scanWorkplace(r.pool.QueryRow(ctx, query,
		id, input.Name, description, input.Latitude, input.Longitude, input.RadiusM))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Workplace{}, ErrNotFound
		}
		return Workplace{}, err
	}
	return w, nil
}

// Delete removes a workplace. Assignments cascade and open entries keep a
// null workplace reference, per the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workplaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a single workplace.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Workplace, error) {
	const query = `SELECT ` + workplaceColumns + ` FROM workplaces WHERE id = $1`
	w, err := scanWorkplace(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Workplace{}, ErrNotFound
		}
		return Workplace{}, err
	}
	return w, nil
}

// List returns all workplaces.
func (r *Repository) List(ctx context.Context) ([]Workplace, error) {
	const query = `SELECT ` + workplaceColumns + ` FROM workplaces ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Workplace
	for rows.Next() {
		w, err := scanWorkplace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// Assign relates a worker to a workplace.
func (r *Repository) Assign(ctx context.Context, workerID, workplaceID uuid.UUID) (Assignment, error) {
	const query = `
		INSERT INTO worker_assignments (id, worker_id, workplace_id, assigned_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, worker_id, workplace_id, assigned_at`

	var a Assignment
	err := r.pool.QueryRow(ctx, query, uuid.New(), workerID, workplaceID).
		Scan(&a.ID, &a.WorkerID, &a.WorkplaceID, &a.AssignedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Assignment{}, ErrAlreadyAssigned
			case "23503":
				return Assignment{}, ErrInvalidReference
			}
		}
		return Assignment{}, err
	}
	return a, nil
}

// RemoveAssignment deletes the worker/workplace relation.
func (r *Repository) RemoveAssignment(ctx context.Context, workerID, workplaceID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM worker_assignments WHERE worker_id = $1 AND workplace_id = $2`, workerID, workplaceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// AssignmentsForWorker lists a worker's assignments with workplaces resolved.
func (r *Repository) AssignmentsForWorker(ctx context.Context, workerID uuid.UUID) ([]AssignmentWithWorkplace, error) {
	const query = `
		SELECT wa.id, wa.worker_id, wa.workplace_id, wa.assigned_at,
		       w.id, w.name, w.description, w.latitude, w.longitude, w.radius_m, w.created_at, w.updated_at
		FROM worker_assignments wa
		LEFT JOIN workplaces w ON wa.workplace_id = w.id
		WHERE wa.worker_id = $1
		ORDER BY wa.assigned_at, wa.id`

	rows, err := r.pool.Query(ctx, query, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AssignmentWithWorkplace
	for rows.Next() {
		var item AssignmentWithWorkplace
		var wpID pgtype.UUID
		var name, description pgtype.Text
		var lat, lng, radius pgtype.Float8
		var createdAt, updatedAt pgtype.Timestamptz
		err := rows.Scan(&item.ID, &item.WorkerID, &item.WorkplaceID, &item.AssignedAt,
			&wpID, &name, &description, &lat, &lng, &radius, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		if wpID.Valid {
			item.Workplace = &Workplace{
				ID:          uuid.UUID(wpID.Bytes),
				Name:        name.String,
				Description: description.String,
				Latitude:    lat.Float64,
				Longitude:   lng.Float64,
				RadiusM:     radius.Float64,
				CreatedAt:   createdAt.Time,
				UpdatedAt:   updatedAt.Time,
			}
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
