package timeclock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for time entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations that must run inside a transaction.
// The open-entry checks take row locks so that concurrent transitions for
// the same worker serialize.
type TxRepository interface {
	OpenEntryForUpdate(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error)
	OpenEntryAtWorkplaceForUpdate(ctx context.Context, workerID, workplaceID uuid.UUID) (*TimeEntry, error)
	InsertEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	CloseEntry(ctx context.Context, entryID uuid.UUID, clockOutAt time.Time, method Method, actorID uuid.UUID) (TimeEntry, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &txRepo{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const entryColumns = `id, worker_id, workplace_id, clock_in_at, clock_out_at, method, created_by, notes, created_at`

func scanEntry(row pgx.Row) (TimeEntry, error) {
	var e TimeEntry
	var workplaceID pgtype.UUID
	var clockOutAt pgtype.Timestamptz
	var notes pgtype.Text
	err := row.Scan(&e.ID, &e.WorkerID, &workplaceID, &e.ClockInAt, &clockOutAt, &e.Method, &e.CreatedBy, &notes, &e.CreatedAt)
	if err != nil {
		return TimeEntry{}, err
	}
	if workplaceID.Valid {
		id := uuid.UUID(workplaceID.Bytes)
		e.WorkplaceID = &id
	}
	if clockOutAt.Valid {
		t := clockOutAt.Time
		e.ClockOutAt = &t
	}
	e.Notes = notes.String
	return e, nil
}

// AssignedWorkplaces returns the worker's assignments resolved to workplace
// geofences, ordered by assignment time. Assignments whose workplace has been
// deleted drop out through the inner join.
func (r *Repository) AssignedWorkplaces(ctx context.Context, workerID uuid.UUID) ([]AssignedWorkplace, error) {
	const query = `
		SELECT wa.workplace_id, w.name, w.latitude, w.longitude, w.radius_m
		FROM worker_assignments wa
		JOIN workplaces w ON wa.workplace_id = w.id
		WHERE wa.worker_id = $1
		ORDER BY wa.assigned_at, wa.id`

	rows, err := r.pool.Query(ctx, query, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AssignedWorkplace
	for rows.Next() {
		var wp AssignedWorkplace
		if err := rows.Scan(&wp.WorkplaceID, &wp.Name, &wp.Latitude, &wp.Longitude, &wp.RadiusM); err != nil {
			return nil, err
		}
		result = append(result, wp)
	}
	return result, rows.Err()
}

// OpenEntry returns the worker's open entry, or nil when off shift.
func (r *Repository) OpenEntry(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE worker_id = $1 AND clock_out_at IS NULL
		ORDER BY clock_in_at DESC
		LIMIT 1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, workerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// EntriesForWorker returns the worker's entry history, newest first.
func (r *Repository) EntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE worker_id = $1
		ORDER BY clock_in_at DESC`
	args := []any{workerID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

const recentEntriesQuery = `
	SELECT te.id, te.worker_id, te.workplace_id, te.clock_in_at, te.clock_out_at,
	       te.method, te.created_by, te.notes, te.created_at,
	       w.name, COALESCE(up.full_name, ''), up.email
	FROM time_entries te
	LEFT JOIN workplaces w ON te.workplace_id = w.id
	JOIN user_profiles up ON te.worker_id = up.id
	ORDER BY te.clock_in_at DESC
	LIMIT $1`

const openEntriesQuery = `
	SELECT te.id, te.worker_id, te.workplace_id, te.clock_in_at, te.clock_out_at,
	       te.method, te.created_by, te.notes, te.created_at,
	       w.name, COALESCE(up.full_name, ''), up.email
	FROM time_entries te
	LEFT JOIN workplaces w ON te.workplace_id = w.id
	JOIN user_profiles up ON te.worker_id = up.id
	WHERE te.clock_out_at IS NULL
	ORDER BY te.clock_in_at DESC`

// RecentEntries returns the newest entries across all workers with display
// relations resolved, for the admin activity feed.
func (r *Repository) RecentEntries(ctx context.Context, limit int) ([]EntryWithRelations, error) {
	if limit <= 0 {
		limit = 25
	}
	return r.queryEntriesWithRelations(ctx, recentEntriesQuery, limit)
}

// OpenEntries returns all currently open shifts with relations resolved.
func (r *Repository) OpenEntries(ctx context.Context) ([]EntryWithRelations, error) {
	return r.queryEntriesWithRelations(ctx, openEntriesQuery)
}

func (r *Repository) queryEntriesWithRelations(ctx context.Context, query string, args ...any) ([]EntryWithRelations, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []EntryWithRelations
	for rows.Next() {
		var e EntryWithRelations
		var workplaceID pgtype.UUID
		var clockOutAt pgtype.Timestamptz
		var notes, workplaceName pgtype.Text
		err := rows.Scan(&e.ID, &e.WorkerID, &workplaceID, &e.ClockInAt, &clockOutAt,
			&e.Method, &e.CreatedBy, &notes, &e.CreatedAt,
			&workplaceName, &e.WorkerName, &e.WorkerEmail)
		if err != nil {
			return nil, err
		}
		if workplaceID.Valid {
			id := uuid.UUID(workplaceID.Bytes)
			e.WorkplaceID = &id
		}
		if clockOutAt.Valid {
			t := clockOutAt.Time
			e.ClockOutAt = &t
		}
		e.Notes = notes.String
		e.WorkplaceName = workplaceName.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (t *txRepo) OpenEntryForUpdate(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE worker_id = $1 AND clock_out_at IS NULL
		ORDER BY clock_in_at DESC
		LIMIT 1
		FOR UPDATE`

	entry, err := scanEntry(t.tx.QueryRow(ctx, query, workerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (t *txRepo) OpenEntryAtWorkplaceForUpdate(ctx context.Context, workerID, workplaceID uuid.UUID) (*TimeEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE worker_id = $1 AND workplace_id = $2 AND clock_out_at IS NULL
		ORDER BY clock_in_at DESC
		LIMIT 1
		FOR UPDATE`

	entry, err := scanEntry(t.tx.QueryRow(ctx, query, workerID, workplaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (t *txRepo) InsertEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	const query = `
		INSERT INTO time_entries (id, worker_id, workplace_id, clock_in_at, method, created_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + entryColumns

	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var workplaceID pgtype.UUID
	if entry.WorkplaceID != nil {
		workplaceID = pgtype.UUID{Bytes: *entry.WorkplaceID, Valid: true}
	}
	var notes pgtype.Text
	if entry.Notes != "" {
		notes = pgtype.Text{String: entry.Notes, Valid: true}
	}

	inserted, err := scanEntry(t.tx.QueryRow(ctx, query,
		id, entry.WorkerID, workplaceID, entry.ClockInAt, string(entry.Method), entry.CreatedBy, notes, entry.CreatedAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// uniq_open_entry_per_worker: a concurrent clock-in won the race.
			if pgErr.Code == "23505" {
				return TimeEntry{}, ErrAlreadyClockedIn
			}
			if pgErr.Code == "23503" {
				return TimeEntry{}, ErrWorkplaceNotFound
			}
		}
		return TimeEntry{}, err
	}
	return inserted, nil
}

func (t *txRepo) CloseEntry(ctx context.Context, entryID uuid.UUID, clockOutAt time.Time, method Method, actorID uuid.UUID) (TimeEntry, error) {
	const query = `
		UPDATE time_entries
		SET clock_out_at = $2, method = $3, created_by = $4
		WHERE id = $1 AND clock_out_at IS NULL
		RETURNING ` + entryColumns

	entry, err := scanEntry(t.tx.QueryRow(ctx, query, entryID, clockOutAt, string(method), actorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TimeEntry{}, ErrNotClockedIn
		}
		return TimeEntry{}, err
	}
	return entry, nil
}
