package workplace

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shiftwise/shiftwise/internal/shared"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input UpsertInput) (Workplace, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (Workplace, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (Workplace, error)
	List(ctx context.Context) ([]Workplace, error)
	Assign(ctx context.Context, workerID, workplaceID uuid.UUID) (Assignment, error)
	RemoveAssignment(ctx context.Context, workerID, workplaceID uuid.UUID) error
	AssignmentsForWorker(ctx context.Context, workerID uuid.UUID) ([]AssignmentWithWorkplace, error)
}

// AuditPort records admin mutations.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service applies validation and audit around workplace persistence.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	collator *collate.Collator
}

// NewService builds a Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		collator: collate.New(language.English, collate.Loose),
	}
}

// Create validates and stores a new workplace.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, input UpsertInput) (Workplace, error) {
	normalized, err := NormalizeInput(input)
	if err != nil {
		return Workplace{}, err
	}
	w, err := s.repo.Create(ctx, normalized)
	if err != nil {
		return Workplace{}, fmt.Errorf("create workplace: %w", err)
	}
	s.recordAudit(ctx, actorID, "workplace.create", w.ID)
	return w, nil
}

// Update validates and stores changes to an existing workplace.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, input UpsertInput) (Workplace, error) {
	normalized, err := NormalizeInput(input)
	if err != nil {
		return Workplace{}, err
	}
	w, err := s.repo.Update(ctx, id, normalized)
	if err != nil {
		return Workplace{}, err
	}
	s.recordAudit(ctx, actorID, "workplace.update", w.ID)
	return w, nil
}

// Delete removes a workplace. Open entries pointing at it keep a null
// workplace reference rather than blocking the delete.
func (s *Service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "workplace.delete", id)
	return nil
}

// Get fetches a single workplace.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Workplace, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all workplaces ordered by name.
func (s *Service) List(ctx context.Context) ([]Workplace, error) {
	workplaces, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(workplaces, func(i, j int) bool {
		return s.collator.CompareString(workplaces[i].Name, workplaces[j].Name) < 0
	})
	return workplaces, nil
}

// Assign relates a worker to a workplace. A repeated assignment is returned
// as the existing relation rather than an error.
func (s *Service) Assign(ctx context.Context, actorID, workerID, workplaceID uuid.UUID) (Assignment, error) {
	a, err := s.repo.Assign(ctx, workerID, workplaceID)
	if err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			existing, findErr := s.findAssignment(ctx, workerID, workplaceID)
			if findErr != nil {
				return Assignment{}, findErr
			}
			return existing, nil
		}
		return Assignment{}, err
	}
	s.recordAudit(ctx, actorID, "workplace.assign", workplaceID)
	return a, nil
}

// RemoveAssignment severs the worker/workplace relation.
func (s *Service) RemoveAssignment(ctx context.Context, actorID, workerID, workplaceID uuid.UUID) error {
	if err := s.repo.RemoveAssignment(ctx, workerID, workplaceID); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "workplace.unassign", workplaceID)
	return nil
}

// AssignmentsForWorker lists a worker's assignments with workplaces resolved.
func (s *Service) AssignmentsForWorker(ctx context.Context, workerID uuid.UUID) ([]AssignmentWithWorkplace, error) {
	return s.repo.AssignmentsForWorker(ctx, workerID)
}

func (s *Service) findAssignment(ctx context.Context, workerID, workplaceID uuid.UUID) (Assignment, error) {
	assignments, err := s.repo.AssignmentsForWorker(ctx, workerID)
	if err != nil {
		return Assignment{}, err
	}
	for _, a := range assignments {
		if a.WorkplaceID == workplaceID {
			return a.Assignment, nil
		}
	}
	return Assignment{}, ErrAssignmentNotFound
}

func (s *Service) recordAudit(ctx context.Context, actorID uuid.UUID, action string, entityID uuid.UUID) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "workplace",
		EntityID: entityID.String(),
	})
}
