package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/timeclock"
)

func entry(workerID uuid.UUID, in time.Time, out *time.Time) timeclock.TimeEntry {
	return timeclock.TimeEntry{
		ID:         uuid.New(),
		WorkerID:   workerID,
		ClockInAt:  in,
		ClockOutAt: out,
		Method:     timeclock.MethodSelf,
		CreatedAt:  in,
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestComputeEmptyHistory(t *testing.T) {
	snap := Compute(nil, time.Now())
	require.Zero(t, snap.TotalHoursPastWeek)
	require.Zero(t, snap.TotalShiftsPastWeek)
	require.Zero(t, snap.AverageShiftDurationHours)
	require.Nil(t, snap.LastClockInAt)
	require.Nil(t, snap.LastClockOutAt)
}

func TestComputeSingleCompletedShift(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	entries := []timeclock.TimeEntry{
		entry(workerID, now.Add(-2*time.Hour), ptr(now.Add(-1*time.Hour))),
	}

	snap := Compute(entries, now)
	require.InDelta(t, 1.0, snap.TotalHoursPastWeek, 1e-9)
	require.Equal(t, 1, snap.TotalShiftsPastWeek)
	require.InDelta(t, 1.0, snap.AverageShiftDurationHours, 1e-9)
	require.Equal(t, now.Add(-2*time.Hour), *snap.LastClockInAt)
	require.Equal(t, now.Add(-1*time.Hour), *snap.LastClockOutAt)
}

func TestComputeOpenShiftCountsThroughNow(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	entries := []timeclock.TimeEntry{
		entry(workerID, now.Add(-90*time.Minute), nil),
	}

	snap := Compute(entries, now)
	require.InDelta(t, 1.5, snap.TotalHoursPastWeek, 1e-9)
	require.Equal(t, 1, snap.TotalShiftsPastWeek)
	// No completed shift, so the average stays zero.
	require.Zero(t, snap.AverageShiftDurationHours)
	require.Nil(t, snap.LastClockOutAt)
}

func TestComputeLastClockOutFromOlderEntry(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	// Latest shift is still open; the most recent completed shift supplies
	// the last clock-out.
	entries := []timeclock.TimeEntry{
		entry(workerID, now.Add(-1*time.Hour), nil),
		entry(workerID, now.Add(-26*time.Hour), ptr(now.Add(-18*time.Hour))),
	}

	snap := Compute(entries, now)
	require.Equal(t, now.Add(-1*time.Hour), *snap.LastClockInAt)
	require.Equal(t, now.Add(-18*time.Hour), *snap.LastClockOutAt)
	require.Equal(t, 2, snap.TotalShiftsPastWeek)
	require.InDelta(t, 9.0, snap.TotalHoursPastWeek, 1e-9)
	require.InDelta(t, 8.0, snap.AverageShiftDurationHours, 1e-9)
}

func TestComputeEntryBeforeWindowExcludedFromTotals(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	entries := []timeclock.TimeEntry{
		entry(workerID, now.Add(-10*24*time.Hour), ptr(now.Add(-10*24*time.Hour+8*time.Hour))),
	}

	snap := Compute(entries, now)
	require.Zero(t, snap.TotalHoursPastWeek)
	require.Zero(t, snap.TotalShiftsPastWeek)
	require.Zero(t, snap.AverageShiftDurationHours)
	// The stale entry still drives the last-seen timestamps.
	require.Equal(t, now.Add(-10*24*time.Hour), *snap.LastClockInAt)
	require.Equal(t, now.Add(-10*24*time.Hour+8*time.Hour), *snap.LastClockOutAt)
}

func TestComputeShiftStraddlingWindowIsClipped(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	windowStart := now.Add(-TrailingWindow)
	// Started 2h before the window, ended 3h after it opened: 3h counted,
	// but the average sees the full 5h shift.
	entries := []timeclock.TimeEntry{
		entry(workerID, windowStart.Add(-2*time.Hour), ptr(windowStart.Add(3*time.Hour))),
	}

	snap := Compute(entries, now)
	require.InDelta(t, 3.0, snap.TotalHoursPastWeek, 1e-9)
	require.Equal(t, 1, snap.TotalShiftsPastWeek)
	require.InDelta(t, 5.0, snap.AverageShiftDurationHours, 1e-9)
}

func TestComputeIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	workerID := uuid.New()
	entries := []timeclock.TimeEntry{
		entry(workerID, now.Add(-3*time.Hour), nil),
		entry(workerID, now.Add(-30*time.Hour), ptr(now.Add(-22*time.Hour))),
		entry(workerID, now.Add(-9*24*time.Hour), ptr(now.Add(-9*24*time.Hour+4*time.Hour))),
	}

	first := Compute(entries, now)
	second := Compute(entries, now)
	require.Equal(t, first, second)
}
