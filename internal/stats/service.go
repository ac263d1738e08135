package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/shiftwise/shiftwise/internal/timeclock"
)

// Repository yields a worker's entry history, newest first.
type Repository interface {
	EntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]timeclock.TimeEntry, error)
}

// Service computes cached trailing-window snapshots.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
	nowFn func() time.Time
}

// NewService builds a Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// WorkerSnapshot returns the worker's trailing 7-day snapshot, serving from
// cache when possible. Concurrent requests for the same worker collapse into
// a single recompute.
func (s *Service) WorkerSnapshot(ctx context.Context, workerID uuid.UUID) (Snapshot, error) {
	result, err, _ := s.group.Do(workerID.String(), func() (any, error) {
		return s.cache.Fetch(ctx, workerID, func(ctx context.Context) (Snapshot, error) {
			return s.compute(ctx, workerID)
		})
	})
	if err != nil {
		return Snapshot{}, err
	}
	return result.(Snapshot), nil
}

// Refresh recomputes a worker's snapshot and stores it, bypassing the cache
// read. Used by the warmup job.
func (s *Service) Refresh(ctx context.Context, workerID uuid.UUID) (Snapshot, error) {
	snap, err := s.compute(ctx, workerID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.cache.Store(ctx, workerID, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Service) compute(ctx context.Context, workerID uuid.UUID) (Snapshot, error) {
	entries, err := s.repo.EntriesForWorker(ctx, workerID, 0)
	if err != nil {
		return Snapshot{}, err
	}
	return Compute(entries, s.nowFn()), nil
}
