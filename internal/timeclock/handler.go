package timeclock

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/geo"
	"github.com/shiftwise/shiftwise/internal/observability"
	"github.com/shiftwise/shiftwise/internal/platform/httpx"
	"github.com/shiftwise/shiftwise/internal/shared"
)

// Handler wires HTTP endpoints for clock transitions and activity feeds.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	repo     *Repository
	metrics  *observability.Metrics
	validate *validator.Validate
}

// NewHandler constructs a Handler instance. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, repo *Repository, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		repo:     repo,
		metrics:  metrics,
		validate: validator.New(),
	}
}

// MountWorkerRoutes registers self-service routes. Callers must be
// authenticated workers.
func (h *Handler) MountWorkerRoutes(r chi.Router) {
	r.Post("/clock-in", h.handleClockIn)
	r.Post("/clock-out", h.handleClockOut)
	r.Get("/entries", h.handleOwnEntries)
	r.Get("/status", h.handleOwnStatus)
}

// MountAdminRoutes registers admin override and feed routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/clock", h.handleAdminClock)
	r.Get("/entries/recent", h.handleRecentEntries)
	r.Get("/entries/open", h.handleOpenEntries)
}

type clockInRequest struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

func (h *Handler) handleClockIn(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req clockInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	result, err := h.service.ClockIn(r.Context(), identity.UserID, geo.Coordinates{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		h.metrics.ObserveClockEvent("clock_in", "rejected")
		h.respondError(w, err)
		return
	}
	h.metrics.ObserveClockEvent("clock_in", "ok")
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleClockOut(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	entry, err := h.service.ClockOut(r.Context(), identity.UserID)
	if err != nil {
		h.metrics.ObserveClockEvent("clock_out", "rejected")
		h.respondError(w, err)
		return
	}
	h.metrics.ObserveClockEvent("clock_out", "ok")
	httpx.JSON(w, http.StatusOK, entry)
}

type adminClockRequest struct {
	WorkerID    string `json:"worker_id" validate:"required,uuid"`
	WorkplaceID string `json:"workplace_id" validate:"omitempty,uuid"`
	Action      string `json:"action" validate:"required,oneof=clock-in clock-out"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

func (h *Handler) handleAdminClock(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req adminClockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return
	}
	var workplaceID *uuid.UUID
	if req.WorkplaceID != "" {
		id, err := uuid.Parse(req.WorkplaceID)
		if err != nil {
			httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid workplace id")
			return
		}
		workplaceID = &id
	}
	idemKey := r.Header.Get("Idempotency-Key")

	var entry TimeEntry
	kind := "admin_clock_out"
	switch req.Action {
	case "clock-in":
		kind = "admin_clock_in"
		if workplaceID == nil {
			httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "workplace_id is required for clock-in")
			return
		}
		entry, err = h.service.AdminClockIn(r.Context(), workerID, *workplaceID, identity.UserID, req.Notes, idemKey)
	case "clock-out":
		entry, err = h.service.AdminClockOut(r.Context(), workerID, workplaceID, identity.UserID, idemKey)
	}
	if err != nil {
		h.metrics.ObserveClockEvent(kind, "rejected")
		h.respondError(w, err)
		return
	}
	h.metrics.ObserveClockEvent(kind, "ok")
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) handleOwnEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.RecentEntriesForWorker(r.Context(), identity.UserID, limit)
	if err != nil {
		h.logger.Error("list own entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleOwnStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	open, err := h.service.OpenEntry(r.Context(), identity.UserID)
	if err != nil {
		h.logger.Error("open entry lookup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clocked_in": open != nil,
		"entry":      open,
	})
}

func (h *Handler) handleRecentEntries(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.repo.RecentEntries(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleOpenEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.repo.OpenEntries(r.Context())
	if err != nil {
		h.logger.Error("open entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoAssignments):
		httpx.ProblemKind(w, http.StatusUnprocessableEntity, "no_assignments", "Clock-In Rejected", "no assigned workplaces")
	case errors.Is(err, ErrOutOfRange):
		httpx.ProblemKind(w, http.StatusUnprocessableEntity, "out_of_range", "Clock-In Rejected", "outside workplace radius")
	case errors.Is(err, ErrAlreadyClockedIn):
		httpx.ProblemKind(w, http.StatusConflict, "already_clocked_in", "Clock-In Rejected", "already clocked in")
	case errors.Is(err, ErrNotClockedIn):
		httpx.ProblemKind(w, http.StatusConflict, "not_clocked_in", "Clock-Out Rejected", "not clocked in")
	case errors.Is(err, ErrNoActiveShiftAtWorkplace):
		httpx.ProblemKind(w, http.StatusConflict, "no_active_shift", "Clock-Out Rejected", "no active shift found")
	case errors.Is(err, ErrInvalidPosition):
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed coordinates")
	case errors.Is(err, ErrWorkplaceNotFound):
		httpx.ProblemKind(w, http.StatusNotFound, "workplace_not_found", "Not Found", "workplace not found")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.ProblemKind(w, http.StatusConflict, "duplicate_request", "Duplicate", "request already processed")
	default:
		h.logger.Error("timeclock operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
