// Package stats derives trailing-window shift statistics from a worker's
// time entry history.
package stats

import (
	"time"

	"github.com/shiftwise/shiftwise/internal/timeclock"
)

// TrailingWindow is the reporting period ending at the reference instant.
const TrailingWindow = 7 * 24 * time.Hour

// Snapshot is a trailing 7-day statistics view of a worker's shifts.
type Snapshot struct {
	TotalHoursPastWeek        float64    `json:"total_hours_past_week"`
	TotalShiftsPastWeek       int        `json:"total_shifts_past_week"`
	AverageShiftDurationHours float64    `json:"average_shift_duration_hours"`
	LastClockInAt             *time.Time `json:"last_clock_in_at"`
	LastClockOutAt            *time.Time `json:"last_clock_out_at"`
}

// Compute builds a Snapshot from the worker's entries, which must be ordered
// descending by clock-in time. Open shifts count as ongoing through now.
// Pure computation: identical inputs produce identical snapshots.
func Compute(entries []timeclock.TimeEntry, now time.Time) Snapshot {
	var snap Snapshot
	if len(entries) == 0 {
		return snap
	}

	lastIn := entries[0].ClockInAt
	snap.LastClockInAt = &lastIn
	for _, e := range entries {
		if e.ClockOutAt != nil {
			out := *e.ClockOutAt
			snap.LastClockOutAt = &out
			break
		}
	}

	windowStart := now.Add(-TrailingWindow)
	var total time.Duration
	var completed []time.Duration
	for _, e := range entries {
		end := now
		if e.ClockOutAt != nil {
			end = *e.ClockOutAt
		}
		if end.Before(windowStart) {
			continue
		}
		start := e.ClockInAt
		if start.Before(windowStart) {
			start = windowStart
		}
		total += end.Sub(start)
		snap.TotalShiftsPastWeek++
		if e.ClockOutAt != nil {
			// Average uses the full shift length, not the clipped overlap.
			completed = append(completed, e.ClockOutAt.Sub(e.ClockInAt))
		}
	}

	snap.TotalHoursPastWeek = total.Hours()
	if len(completed) > 0 {
		var sum time.Duration
		for _, d := range completed {
			sum += d
		}
		snap.AverageShiftDurationHours = (sum / time.Duration(len(completed))).Hours()
	}
	return snap
}
