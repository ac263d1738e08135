// Package jobs contains the background worker, its task handlers and the
// cron schedule glue.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup pre-populates snapshot caches for active workers.
	TaskStatsWarmup = "stats:warmup"
	// TaskStaleShiftScan flags shifts left open past a threshold.
	TaskStaleShiftScan = "shift:stale_scan"
)

// StatsWarmupPayload bounds which workers get their snapshot refreshed.
type StatsWarmupPayload struct {
	// Lookback selects workers with activity in this window. Zero means the
	// trailing week.
	Lookback time.Duration `json:"lookback"`
}

// NewStatsWarmupTask constructs an Asynq task.
func NewStatsWarmupTask(payload StatsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data), nil
}

// StaleShiftScanPayload carries the open-shift age threshold.
type StaleShiftScanPayload struct {
	// Threshold marks shifts open longer than this as stale. Zero falls back
	// to the handler default.
	Threshold time.Duration `json:"threshold"`
}

// NewStaleShiftScanTask constructs an Asynq task.
func NewStaleShiftScanTask(payload StaleShiftScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStaleShiftScan, data), nil
}
