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

	"github.com/shiftwise/shiftwise/internal/stats"
)

// StatsWarmupJob refreshes cached snapshots for workers with recent clock
// activity so dashboard reads stay warm.
type StatsWarmupJob struct {
	Stats  *stats.Service
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(statsSvc *stats.Service, pool *pgxpool.Pool, logger *slog.Logger) *StatsWarmupJob {
	return &StatsWarmupJob{
		Stats:  statsSvc,
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes snapshot warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Lookback <= 0 {
		payload.Lookback = stats.TrailingWindow
	}

	logger := j.logger().With(slog.Duration("lookback", payload.Lookback))
	logger.Info("starting stats warmup")

	workers, err := j.activeWorkers(ctx, payload.Lookback)
	if err != nil {
		logger.Error("load active workers", slog.Any("error", err))
		return err
	}
	if len(workers) == 0 {
		logger.Info("no active workers to warm")
		return nil
	}

	start := j.now()
	warmed := 0
	for _, workerID := range workers {
		if _, err := j.Stats.Refresh(ctx, workerID); err != nil {
			logger.Error("refresh snapshot", slog.String("worker_id", workerID.String()), slog.Any("error", err))
			return err
		}
		warmed++
	}

	logger.Info("completed stats warmup", slog.Int("workers", warmed), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *StatsWarmupJob) activeWorkers(ctx context.Context, lookback time.Duration) ([]uuid.UUID, error) {
	if j.Pool == nil {
		return nil, errors.New("stats warmup: pool not configured")
	}
	rows, err := j.Pool.Query(ctx,
		`SELECT DISTINCT worker_id FROM time_entries WHERE clock_in_at >= $1 OR clock_out_at IS NULL`,
		j.now().Add(-lookback))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		workers = append(workers, id)
	}
	return workers, rows.Err()
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskStatsWarmup))
}

func (j *StatsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
