package timeclock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/geo"
	"github.com/shiftwise/shiftwise/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	AssignedWorkplaces(ctx context.Context, workerID uuid.UUID) ([]AssignedWorkplace, error)
	OpenEntry(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error)
	EntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]TimeEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates clock-in and clock-out transitions. Every transition
// re-checks the open entry inside a transaction so that a worker can never
// hold two open shifts, regardless of concurrent requests.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	idem  *shared.IdempotencyStore
	nowFn func() time.Time
}

// NewService builds a Service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore) *Service {
	return &Service{
		repo:  repo,
		audit: audit,
		idem:  idem,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// ClockInResult carries the created entry and the matched workplace.
type ClockInResult struct {
	Entry     TimeEntry `json:"entry"`
	Workplace Candidate `json:"workplace"`
}

// ClockIn records a self-service clock-in at the nearest assigned workplace
// containing the observed position.
func (s *Service) ClockIn(ctx context.Context, workerID uuid.UUID, pos geo.Coordinates) (ClockInResult, error) {
	if err := pos.Validate(); err != nil {
		return ClockInResult{}, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	assigned, err := s.repo.AssignedWorkplaces(ctx, workerID)
	if err != nil {
		return ClockInResult{}, err
	}
	matched, err := Match(pos, assigned)
	if err != nil {
		return ClockInResult{}, err
	}

	entry, err := s.openShift(ctx, workerID, &matched.WorkplaceID, MethodSelf, workerID, "")
	if err != nil {
		return ClockInResult{}, err
	}
	s.record(ctx, workerID, "timeclock:clock_in", entry, map[string]any{
		"workplace_id": matched.WorkplaceID,
		"distance_m":   matched.DistanceM,
		"method":       MethodSelf,
	})
	return ClockInResult{Entry: entry, Workplace: matched}, nil
}

// ClockOut closes the worker's open shift.
func (s *Service) ClockOut(ctx context.Context, workerID uuid.UUID) (TimeEntry, error) {
	entry, err := s.closeShift(ctx, workerID, nil, MethodSelf, workerID)
	if err != nil {
		return TimeEntry{}, err
	}
	s.record(ctx, workerID, "timeclock:clock_out", entry, map[string]any{"method": MethodSelf})
	return entry, nil
}

// AdminClockIn opens a shift on behalf of a worker at an explicit workplace.
// Admin override bypasses geofence matching but not the open-shift invariant.
func (s *Service) AdminClockIn(ctx context.Context, workerID, workplaceID, actorID uuid.UUID, notes, idemKey string) (TimeEntry, error) {
	if workplaceID == uuid.Nil {
		return TimeEntry{}, ErrWorkplaceNotFound
	}
	if err := s.checkIdempotency(ctx, idemKey); err != nil {
		return TimeEntry{}, err
	}

	entry, err := s.openShift(ctx, workerID, &workplaceID, MethodAdmin, actorID, notes)
	if err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return TimeEntry{}, err
	}
	s.record(ctx, actorID, "timeclock:admin_clock_in", entry, map[string]any{
		"worker_id":    workerID,
		"workplace_id": workplaceID,
		"method":       MethodAdmin,
	})
	return entry, nil
}

// AdminClockOut closes a worker's open shift. When workplaceID is non-nil the
// open entry must belong to that workplace.
func (s *Service) AdminClockOut(ctx context.Context, workerID uuid.UUID, workplaceID *uuid.UUID, actorID uuid.UUID, idemKey string) (TimeEntry, error) {
	if err := s.checkIdempotency(ctx, idemKey); err != nil {
		return TimeEntry{}, err
	}

	entry, err := s.closeShift(ctx, workerID, workplaceID, MethodAdmin, actorID)
	if err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return TimeEntry{}, err
	}
	s.record(ctx, actorID, "timeclock:admin_clock_out", entry, map[string]any{
		"worker_id": workerID,
		"method":    MethodAdmin,
	})
	return entry, nil
}

// OpenEntry returns the worker's open shift, or nil when off the clock.
func (s *Service) OpenEntry(ctx context.Context, workerID uuid.UUID) (*TimeEntry, error) {
	return s.repo.OpenEntry(ctx, workerID)
}

// RecentEntriesForWorker returns the worker's newest entries.
func (s *Service) RecentEntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]TimeEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.EntriesForWorker(ctx, workerID, limit)
}

func (s *Service) openShift(ctx context.Context, workerID uuid.UUID, workplaceID *uuid.UUID, method Method, actorID uuid.UUID, notes string) (TimeEntry, error) {
	now := s.nowFn()
	var created TimeEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		open, err := tx.OpenEntryForUpdate(ctx, workerID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrAlreadyClockedIn
		}
		created, err = tx.InsertEntry(ctx, TimeEntry{
			WorkerID:    workerID,
			WorkplaceID: workplaceID,
			ClockInAt:   now,
			Method:      method,
			CreatedBy:   actorID,
			Notes:       notes,
			CreatedAt:   now,
		})
		return err
	})
	if err != nil {
		return TimeEntry{}, err
	}
	return created, nil
}

func (s *Service) closeShift(ctx context.Context, workerID uuid.UUID, workplaceID *uuid.UUID, method Method, actorID uuid.UUID) (TimeEntry, error) {
	now := s.nowFn()
	var closed TimeEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var open *TimeEntry
		var err error
		if workplaceID != nil {
			open, err = tx.OpenEntryAtWorkplaceForUpdate(ctx, workerID, *workplaceID)
			if err != nil {
				return err
			}
			if open == nil {
				return ErrNoActiveShiftAtWorkplace
			}
		} else {
			open, err = tx.OpenEntryForUpdate(ctx, workerID)
			if err != nil {
				return err
			}
			if open == nil {
				return ErrNotClockedIn
			}
		}
		closed, err = tx.CloseEntry(ctx, open.ID, now, method, actorID)
		return err
	})
	if err != nil {
		return TimeEntry{}, err
	}
	return closed, nil
}

func (s *Service) checkIdempotency(ctx context.Context, key string) error {
	if s.idem == nil || key == "" {
		return nil
	}
	return s.idem.CheckAndInsert(ctx, key, "timeclock")
}

func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if s.idem == nil || key == "" {
		return
	}
	_ = s.idem.Delete(ctx, key)
}

func (s *Service) record(ctx context.Context, actorID uuid.UUID, action string, entry TimeEntry, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "time_entry",
		EntityID: entry.ID.String(),
		Meta:     meta,
	})
}
