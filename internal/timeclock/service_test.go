package timeclock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/geo"
)

// memoryRepo serializes WithTx callbacks with a mutex, matching the atomicity
// the storage collaborator must provide.
type memoryRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID][]AssignedWorkplace
	entries     []TimeEntry
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{assignments: make(map[uuid.UUID][]AssignedWorkplace)}
}

func (r *memoryRepo) AssignedWorkplaces(ctx context.Context, workerID uuid.UUID) ([]AssignedWorkplace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AssignedWorkplace(nil), r.assignments[workerID]...), nil
}

func (r *memoryRepo) OpenEntry(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.openEntryLocked(workerID, nil), nil
}

func (r *memoryRepo) EntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []TimeEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].WorkerID == workerID {
			result = append(result, r.entries[i])
		}
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) openEntryLocked(workerID uuid.UUID, workplaceID *uuid.UUID) *TimeEntry {
	for i := range r.entries {
		e := &r.entries[i]
		if e.WorkerID != workerID || e.ClockOutAt != nil {
			continue
		}
		if workplaceID != nil && (e.WorkplaceID == nil || *e.WorkplaceID != *workplaceID) {
			continue
		}
		copied := *e
		return &copied
	}
	return nil
}

func (r *memoryRepo) openCount(workerID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.WorkerID == workerID && e.ClockOutAt == nil {
			n++
		}
	}
	return n
}

func (tx *memoryTx) OpenEntryForUpdate(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error) {
	return tx.repo.openEntryLocked(workerID, nil), nil
}

func (tx *memoryTx) OpenEntryAtWorkplaceForUpdate(ctx context.Context, workerID, workplaceID uuid.UUID) (*TimeEntry, error) {
	return tx.repo.openEntryLocked(workerID, &workplaceID), nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	if tx.repo.openEntryLocked(entry.WorkerID, nil) != nil {
		return TimeEntry{}, ErrAlreadyClockedIn
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	tx.repo.entries = append(tx.repo.entries, entry)
	return entry, nil
}

func (tx *memoryTx) CloseEntry(ctx context.Context, entryID uuid.UUID, clockOutAt time.Time, method Method, actorID uuid.UUID) (TimeEntry, error) {
	for i := range tx.repo.entries {
		e := &tx.repo.entries[i]
		if e.ID == entryID && e.ClockOutAt == nil {
			out := clockOutAt
			e.ClockOutAt = &out
			e.Method = method
			e.CreatedBy = actorID
			return *e, nil
		}
	}
	return TimeEntry{}, ErrNotClockedIn
}

func assignWorkplace(repo *memoryRepo, workerID uuid.UUID, lat, lon, radius float64) uuid.UUID {
	id := uuid.New()
	repo.assignments[workerID] = append(repo.assignments[workerID], AssignedWorkplace{
		WorkplaceID: id,
		Name:        "Site",
		Latitude:    lat,
		Longitude:   lon,
		RadiusM:     radius,
	})
	return id
}

func TestClockInLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	workplaceID := assignWorkplace(repo, workerID, 40.7128, -74.0060, 100)
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	result, err := svc.ClockIn(ctx, workerID, pos)
	require.NoError(t, err)
	require.Equal(t, workplaceID, result.Workplace.WorkplaceID)
	require.NotNil(t, result.Entry.WorkplaceID)
	require.Equal(t, workplaceID, *result.Entry.WorkplaceID)
	require.Nil(t, result.Entry.ClockOutAt)
	require.Equal(t, MethodSelf, result.Entry.Method)

	_, err = svc.ClockIn(ctx, workerID, pos)
	require.ErrorIs(t, err, ErrAlreadyClockedIn)

	before := time.Now().UTC()
	closed, err := svc.ClockOut(ctx, workerID)
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutAt)
	require.WithinDuration(t, before, *closed.ClockOutAt, 2*time.Second)
	require.Equal(t, 0, repo.openCount(workerID))
}

func TestClockInNoAssignments(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.ClockIn(context.Background(), uuid.New(), geo.Coordinates{Latitude: 1, Longitude: 1})
	require.ErrorIs(t, err, ErrNoAssignments)
}

func TestClockInOutOfRange(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	workerID := uuid.New()
	assignWorkplace(repo, workerID, 40.7128, -74.0060, 100)

	// ~1.1 km north of the geofence center.
	_, err := svc.ClockIn(context.Background(), workerID, geo.Coordinates{Latitude: 40.7228, Longitude: -74.0060})
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestClockInInvalidPosition(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	workerID := uuid.New()
	assignWorkplace(repo, workerID, 0, 0, 100)

	_, err := svc.ClockIn(context.Background(), workerID, geo.Coordinates{Latitude: 91, Longitude: 0})
	require.ErrorIs(t, err, ErrInvalidPosition)
}

func TestClockOutNotClockedIn(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.ClockOut(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotClockedIn)
}

func TestConcurrentClockInSingleWinner(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	assignWorkplace(repo, workerID, 40.7128, -74.0060, 100)
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClockIn(ctx, workerID, pos)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrAlreadyClockedIn)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, repo.openCount(workerID))
}

func TestAdminClockInBypassesGeofence(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	workplaceID := uuid.New()
	adminID := uuid.New()

	// No assignment exists; the override still succeeds.
	entry, err := svc.AdminClockIn(ctx, workerID, workplaceID, adminID, "forgot phone", "")
	require.NoError(t, err)
	require.Equal(t, MethodAdmin, entry.Method)
	require.Equal(t, adminID, entry.CreatedBy)
	require.Equal(t, "forgot phone", entry.Notes)

	_, err = svc.AdminClockIn(ctx, workerID, workplaceID, adminID, "", "")
	require.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestAdminClockOutScopedToWorkplace(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	workplaceID := uuid.New()
	otherWorkplace := uuid.New()
	adminID := uuid.New()

	_, err := svc.AdminClockIn(ctx, workerID, workplaceID, adminID, "", "")
	require.NoError(t, err)

	_, err = svc.AdminClockOut(ctx, workerID, &otherWorkplace, adminID, "")
	require.ErrorIs(t, err, ErrNoActiveShiftAtWorkplace)

	closed, err := svc.AdminClockOut(ctx, workerID, &workplaceID, adminID, "")
	require.NoError(t, err)
	require.NotNil(t, closed.ClockOutAt)
	require.Equal(t, MethodAdmin, closed.Method)
}

func TestConcurrentClockInAndOut(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	workerID := uuid.New()
	assignWorkplace(repo, workerID, 40.7128, -74.0060, 100)
	pos := geo.Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	_, err := svc.ClockIn(ctx, workerID, pos)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ClockOut(ctx, workerID)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ClockIn(ctx, workerID, pos)
		}()
	}
	wg.Wait()

	require.LessOrEqual(t, repo.openCount(workerID), 1)
}
