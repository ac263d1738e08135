package stats

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/timeclock"
)

type mockRepo struct {
	entries map[uuid.UUID][]timeclock.TimeEntry
	calls   int
}

func (m *mockRepo) EntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]timeclock.TimeEntry, error) {
	m.calls++
	return m.entries[workerID], nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute))
}

func TestWorkerSnapshotCaches(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	out := now.Add(-1 * time.Hour)
	repo := &mockRepo{entries: map[uuid.UUID][]timeclock.TimeEntry{
		workerID: {
			{ID: uuid.New(), WorkerID: workerID, ClockInAt: now.Add(-2 * time.Hour), ClockOutAt: &out},
		},
	}}
	svc := newTestService(t, repo)
	svc.nowFn = func() time.Time { return now }
	ctx := context.Background()

	first, err := svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.InDelta(t, 1.0, first.TotalHoursPastWeek, 1e-9)
	require.Equal(t, 1, first.TotalShiftsPastWeek)
	require.Equal(t, 1, repo.calls)

	second, err := svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.Equal(t, first, second)
	// Second call is served from redis.
	require.Equal(t, 1, repo.calls)
}

func TestRefreshOverwritesCache(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	repo := &mockRepo{entries: map[uuid.UUID][]timeclock.TimeEntry{}}
	svc := newTestService(t, repo)
	svc.nowFn = func() time.Time { return now }
	ctx := context.Background()

	empty, err := svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.Zero(t, empty.TotalShiftsPastWeek)

	out := now.Add(-30 * time.Minute)
	repo.entries[workerID] = []timeclock.TimeEntry{
		{ID: uuid.New(), WorkerID: workerID, ClockInAt: now.Add(-90 * time.Minute), ClockOutAt: &out},
	}

	refreshed, err := svc.Refresh(ctx, workerID)
	require.NoError(t, err)
	require.Equal(t, 1, refreshed.TotalShiftsPastWeek)

	cached, err := svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.Equal(t, refreshed, cached)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	workerID := uuid.New()
	repo := &mockRepo{entries: map[uuid.UUID][]timeclock.TimeEntry{}}
	svc := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	require.NoError(t, svc.cache.Invalidate(ctx, workerID))

	_, err = svc.WorkerSnapshot(ctx, workerID)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}
