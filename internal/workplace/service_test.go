package workplace

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftwise/internal/shared"
)

type fakeRepo struct {
	workplaces  map[uuid.UUID]Workplace
	assignments []Assignment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{workplaces: map[uuid.UUID]Workplace{}}
}

func (f *fakeRepo) Create(ctx context.Context, input UpsertInput) (Workplace, error) {
	w := Workplace{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		RadiusM:     input.RadiusM,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.workplaces[w.ID] = w
	return w, nil
}

func (f *fakeRepo) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (Workplace, error) {
	w, ok := f.workplaces[id]
	if !ok {
		return Workplace{}, ErrNotFound
	}
	w.Name = input.Name
	w.Description = input.Description
	w.Latitude = input.Latitude
	w.Longitude = input.Longitude
	w.RadiusM = input.RadiusM
	w.UpdatedAt = time.Now()
	f.workplaces[id] = w
	return w, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.workplaces[id]; !ok {
		return ErrNotFound
	}
	delete(f.workplaces, id)
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.WorkplaceID != id {
			kept = append(kept, a)
		}
	}
	f.assignments = kept
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (Workplace, error) {
	w, ok := f.workplaces[id]
	if !ok {
		return Workplace{}, ErrNotFound
	}
	return w, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]Workplace, error) {
	var result []Workplace
	for _, w := range f.workplaces {
		result = append(result, w)
	}
	return result, nil
}

func (f *fakeRepo) Assign(ctx context.Context, workerID, workplaceID uuid.UUID) (Assignment, error) {
	if _, ok := f.workplaces[workplaceID]; !ok {
		return Assignment{}, ErrInvalidReference
	}
	for _, a := range f.assignments {
		if a.WorkerID == workerID && a.WorkplaceID == workplaceID {
			return Assignment{}, ErrAlreadyAssigned
		}
	}
	a := Assignment{ID: uuid.New(), WorkerID: workerID, WorkplaceID: workplaceID, AssignedAt: time.Now()}
	f.assignments = append(f.assignments, a)
	return a, nil
}

func (f *fakeRepo) RemoveAssignment(ctx context.Context, workerID, workplaceID uuid.UUID) error {
	for i, a := range f.assignments {
		if a.WorkerID == workerID && a.WorkplaceID == workplaceID {
			f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (f *fakeRepo) AssignmentsForWorker(ctx context.Context, workerID uuid.UUID) ([]AssignmentWithWorkplace, error) {
	var result []AssignmentWithWorkplace
	for _, a := range f.assignments {
		if a.WorkerID != workerID {
			continue
		}
		item := AssignmentWithWorkplace{Assignment: a}
		if w, ok := f.workplaces[a.WorkplaceID]; ok {
			wCopy := w
			item.Workplace = &wCopy
		}
		result = append(result, item)
	}
	return result, nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(ctx context.Context, entry shared.AuditLog) error {
	r.actions = append(r.actions, entry.Action)
	return nil
}

func TestCreateAppliesDefaultsAndAudits(t *testing.T) {
	repo := newFakeRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)
	actor := uuid.New()

	created, err := svc.Create(context.Background(), actor, UpsertInput{
		Name:      "  Warehouse North  ",
		Latitude:  52.1,
		Longitude: 4.3,
	})
	require.NoError(t, err)
	require.Equal(t, "Warehouse North", created.Name)
	require.EqualValues(t, DefaultRadiusM, created.RadiusM)
	require.Equal(t, []string{"workplace.create"}, audit.actions)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	actor := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, actor, UpsertInput{Name: "   ", Latitude: 1, Longitude: 1})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, actor, UpsertInput{Name: "x", Latitude: 91, Longitude: 0})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, actor, UpsertInput{Name: "x", Latitude: 0, Longitude: -181})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, actor, UpsertInput{Name: "x", Latitude: 0, Longitude: 0, RadiusM: 3})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListOrdersByName(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	actor := uuid.New()
	ctx := context.Background()

	for _, name := range []string{"office zulu", "Office Alpha", "office midway"} {
		_, err := svc.Create(ctx, actor, UpsertInput{Name: name, Latitude: 0, Longitude: 0})
		require.NoError(t, err)
	}

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "Office Alpha", listed[0].Name)
	require.Equal(t, "office midway", listed[1].Name)
	require.Equal(t, "office zulu", listed[2].Name)
}

func TestAssignIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	actor := uuid.New()
	workerID := uuid.New()
	ctx := context.Background()

	wp, err := svc.Create(ctx, actor, UpsertInput{Name: "Depot", Latitude: 0, Longitude: 0})
	require.NoError(t, err)

	first, err := svc.Assign(ctx, actor, workerID, wp.ID)
	require.NoError(t, err)

	// Assigning again returns the existing relation instead of failing.
	second, err := svc.Assign(ctx, actor, workerID, wp.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.assignments, 1)
}

func TestAssignUnknownWorkplace(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)
	_, err := svc.Assign(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestRemoveAssignment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	actor := uuid.New()
	workerID := uuid.New()
	ctx := context.Background()

	wp, err := svc.Create(ctx, actor, UpsertInput{Name: "Depot", Latitude: 0, Longitude: 0})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, actor, workerID, wp.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveAssignment(ctx, actor, workerID, wp.ID))
	require.ErrorIs(t, svc.RemoveAssignment(ctx, actor, workerID, wp.ID), ErrAssignmentNotFound)
}

func TestDeleteCascadesAssignments(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	actor := uuid.New()
	workerID := uuid.New()
	ctx := context.Background()

	wp, err := svc.Create(ctx, actor, UpsertInput{Name: "Depot", Latitude: 0, Longitude: 0})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, actor, workerID, wp.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, actor, wp.ID))

	assignments, err := svc.AssignmentsForWorker(ctx, workerID)
	require.NoError(t, err)
	require.Empty(t, assignments)
}
