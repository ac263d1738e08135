package workplace

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/platform/httpx"
	"github.com/shiftwise/shiftwise/internal/shared"
)

// Handler wires admin HTTP endpoints for workplaces and assignments.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountAdminRoutes registers workplace management routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/workplaces", h.handleCreate)
	r.Get("/workplaces", h.handleList)
	r.Get("/workplaces/{workplaceID}", h.handleGet)
	r.Put("/workplaces/{workplaceID}", h.handleUpdate)
	r.Delete("/workplaces/{workplaceID}", h.handleDelete)
	r.Post("/assignments", h.handleAssign)
	r.Delete("/assignments", h.handleUnassign)
	r.Get("/workers/{workerID}/assignments", h.handleWorkerAssignments)
}

type upsertRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	Latitude    float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" validate:"min=-180,max=180"`
	RadiusM     float64 `json:"radius_m" validate:"omitempty,min=0"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), identity.UserID, UpsertInput{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusM:     req.RadiusM,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "workplaceID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid workplace id")
		return
	}

	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), identity.UserID, id, UpsertInput{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		RadiusM:     req.RadiusM,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "workplaceID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid workplace id")
		return
	}
	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workplaceID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid workplace id")
		return
	}
	wp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	workplaces, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list workplaces", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"workplaces": workplaces})
}

type assignmentRequest struct {
	WorkerID    string `json:"worker_id" validate:"required,uuid"`
	WorkplaceID string `json:"workplace_id" validate:"required,uuid"`
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	workerID, workplaceID, ok := h.decodeAssignment(w, r)
	if !ok {
		return
	}
	a, err := h.service.Assign(r.Context(), identity.UserID, workerID, workplaceID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, a)
}

func (h *Handler) handleUnassign(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	workerID, workplaceID, ok := h.decodeAssignment(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveAssignment(r.Context(), identity.UserID, workerID, workplaceID); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWorkerAssignments(w http.ResponseWriter, r *http.Request) {
	workerID, err := uuid.Parse(chi.URLParam(r, "workerID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return
	}
	assignments, err := h.service.AssignmentsForWorker(r.Context(), workerID)
	if err != nil {
		h.logger.Error("worker assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

func (h *Handler) decodeAssignment(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	var req assignmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return uuid.Nil, uuid.Nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return uuid.Nil, uuid.Nil, false
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return uuid.Nil, uuid.Nil, false
	}
	workplaceID, err := uuid.Parse(req.WorkplaceID)
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid workplace id")
		return uuid.Nil, uuid.Nil, false
	}
	return workerID, workplaceID, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.ProblemKind(w, http.StatusNotFound, "workplace_not_found", "Not Found", "workplace not found")
	case errors.Is(err, ErrAssignmentNotFound):
		httpx.ProblemKind(w, http.StatusNotFound, "assignment_not_found", "Not Found", "assignment not found")
	case errors.Is(err, ErrInvalidReference):
		httpx.ProblemKind(w, http.StatusUnprocessableEntity, "invalid_reference", "Invalid Reference", "unknown worker or workplace")
	case errors.Is(err, ErrInvalidInput):
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
	default:
		h.logger.Error("workplace operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
