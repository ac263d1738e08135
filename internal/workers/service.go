package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/stats"
	"github.com/shiftwise/shiftwise/internal/timeclock"
	"github.com/shiftwise/shiftwise/internal/workplace"
)

// RepositoryPort abstracts profile persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput, passwordHash string, workplaceID *uuid.UUID) (Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Profile, error)
	UpdateSelf(ctx context.Context, id uuid.UUID, input SelfUpdateInput) (Profile, error)
}

// AssignmentsPort resolves a worker's workplace assignments.
type AssignmentsPort interface {
	AssignmentsForWorker(ctx context.Context, workerID uuid.UUID) ([]workplace.AssignmentWithWorkplace, error)
}

// TimeclockPort resolves a worker's clock activity.
type TimeclockPort interface {
	OpenEntry(ctx context.Context, workerID uuid.UUID) (*timeclock.TimeEntry, error)
	RecentEntriesForWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]timeclock.TimeEntry, error)
}

// StatsPort resolves a worker's trailing snapshot.
type StatsPort interface {
	WorkerSnapshot(ctx context.Context, workerID uuid.UUID) (stats.Snapshot, error)
}

// AuditPort records admin mutations.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

const minPasswordLength = 8

// Service applies validation, hashing and audit around worker management.
type Service struct {
	repo        RepositoryPort
	assignments AssignmentsPort
	timeclock   TimeclockPort
	stats       StatsPort
	audit       AuditPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort, assignments AssignmentsPort, tc TimeclockPort, st StatsPort, audit AuditPort) *Service {
	return &Service{
		repo:        repo,
		assignments: assignments,
		timeclock:   tc,
		stats:       st,
		audit:       audit,
	}
}

// Create provisions a worker account. When WorkplaceID is set the initial
// assignment lands in the same transaction as the profile.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, input CreateInput) (Profile, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Email == "" {
		return Profile{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.FullName == "" {
		return Profile{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLength {
		return Profile{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if input.Role == "" {
		input.Role = shared.RoleWorker
	}
	if input.Role != shared.RoleAdmin && input.Role != shared.RoleWorker {
		return Profile{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, input, string(hash), input.WorkplaceID)
	if err != nil {
		return Profile{}, err
	}
	s.recordAudit(ctx, actorID, "worker.create", created.ID)
	return created, nil
}

// Update applies admin edits to a worker profile.
func (s *Service) Update(ctx context.Context, actorID, workerID uuid.UUID, input UpdateInput) (Profile, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.FullName == "" {
		return Profile{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if input.Role != shared.RoleAdmin && input.Role != shared.RoleWorker {
		return Profile{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}
	updated, err := s.repo.Update(ctx, workerID, input)
	if err != nil {
		return Profile{}, err
	}
	s.recordAudit(ctx, actorID, "worker.update", workerID)
	return updated, nil
}

// UpdateSelf applies a worker's own profile edits.
func (s *Service) UpdateSelf(ctx context.Context, workerID uuid.UUID, input SelfUpdateInput) (Profile, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	if input.FullName == "" {
		return Profile{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	return s.repo.UpdateSelf(ctx, workerID, input)
}

// Get fetches a single profile.
func (s *Service) Get(ctx context.Context, workerID uuid.UUID) (Profile, error) {
	return s.repo.GetByID(ctx, workerID)
}

// List returns all profiles with their assignments resolved.
func (s *Service) List(ctx context.Context) ([]ProfileWithAssignments, error) {
	profiles, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]ProfileWithAssignments, 0, len(profiles))
	for _, p := range profiles {
		assignments, err := s.assignments.AssignmentsForWorker(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, ProfileWithAssignments{Profile: p, Assignments: assignments})
	}
	return result, nil
}

// Detail assembles the admin view of a worker, including activity and the
// trailing snapshot.
func (s *Service) Detail(ctx context.Context, workerID uuid.UUID) (Detail, error) {
	profile, err := s.repo.GetByID(ctx, workerID)
	if err != nil {
		return Detail{}, err
	}
	assignments, err := s.assignments.AssignmentsForWorker(ctx, workerID)
	if err != nil {
		return Detail{}, err
	}
	open, err := s.timeclock.OpenEntry(ctx, workerID)
	if err != nil {
		return Detail{}, err
	}
	entries, err := s.timeclock.RecentEntriesForWorker(ctx, workerID, 0)
	if err != nil {
		return Detail{}, err
	}
	snapshot, err := s.stats.WorkerSnapshot(ctx, workerID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Profile:     profile,
		Assignments: assignments,
		OpenEntry:   open,
		Entries:     entries,
		Stats:       snapshot,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, entityID uuid.UUID) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "worker",
		EntityID: entityID.String(),
	})
}
