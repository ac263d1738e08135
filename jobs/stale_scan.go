package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiftwise/shiftwise/internal/shared"
)

// DefaultStaleShiftThreshold marks shifts open longer than this as likely
// forgotten.
const DefaultStaleShiftThreshold = 16 * time.Hour

// StaleShiftScanJob flags shifts left open past the threshold. It only logs
// and audits. Closing a forgotten shift stays an explicit admin decision.
type StaleShiftScanJob struct {
	Pool      *pgxpool.Pool
	Audit     *shared.AuditLogger
	Logger    *slog.Logger
	Threshold time.Duration
	clock     func() time.Time
}

// NewStaleShiftScanJob wires dependencies for the scan handler.
func NewStaleShiftScanJob(pool *pgxpool.Pool, audit *shared.AuditLogger, logger *slog.Logger, threshold time.Duration) *StaleShiftScanJob {
	if threshold <= 0 {
		threshold = DefaultStaleShiftThreshold
	}
	return &StaleShiftScanJob{
		Pool:      pool,
		Audit:     audit,
		Logger:    logger,
		Threshold: threshold,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type staleShift struct {
	EntryID   uuid.UUID
	WorkerID  uuid.UUID
	ClockInAt time.Time
}

// Handle processes stale-shift scan tasks.
func (j *StaleShiftScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("stale scan: handler not configured")
	}
	var payload StaleShiftScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	threshold := payload.Threshold
	if threshold <= 0 {
		threshold = j.Threshold
	}

	logger := j.logger().With(slog.Duration("threshold", threshold))

	stale, err := j.fetchStale(ctx, threshold)
	if err != nil {
		logger.Error("load open shifts", slog.Any("error", err))
		return err
	}
	if len(stale) == 0 {
		logger.Info("no stale shifts found")
		return nil
	}

	now := j.now()
	for _, shift := range stale {
		age := now.Sub(shift.ClockInAt)
		logger.Warn("stale open shift",
			slog.String("entry_id", shift.EntryID.String()),
			slog.String("worker_id", shift.WorkerID.String()),
			slog.Duration("age", age))
		if j.Audit != nil {
			_ = j.Audit.Record(ctx, shared.AuditLog{
				Action:   "shift.stale_detected",
				Entity:   "time_entry",
				EntityID: shift.EntryID.String(),
				Meta: map[string]any{
					"worker_id":   shift.WorkerID.String(),
					"clock_in_at": shift.ClockInAt,
					"age_hours":   age.Hours(),
				},
			})
		}
	}

	logger.Info("completed stale shift scan", slog.Int("flagged", len(stale)))
	return nil
}

func (j *StaleShiftScanJob) fetchStale(ctx context.Context, threshold time.Duration) ([]staleShift, error) {
	if j.Pool == nil {
		return nil, errors.New("stale scan: pool not configured")
	}
	rows, err := j.Pool.Query(ctx,
		`SELECT id, worker_id, clock_in_at FROM time_entries WHERE clock_out_at IS NULL AND clock_in_at < $1 ORDER BY clock_in_at`,
		j.now().Add(-threshold))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []staleShift
	for rows.Next() {
		var s staleShift
		if err := rows.Scan(&s.EntryID, &s.WorkerID, &s.ClockInAt); err != nil {
			return nil, err
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}

func (j *StaleShiftScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStaleShiftScan))
	}
	return slog.Default().With(slog.String("job", TaskStaleShiftScan))
}

func (j *StaleShiftScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
