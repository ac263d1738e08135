package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/platform/httpx"
	"github.com/shiftwise/shiftwise/internal/shared"
)

// Handler exposes snapshot endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountWorkerRoutes registers the self-service stats route.
func (h *Handler) MountWorkerRoutes(r chi.Router) {
	r.Get("/stats", h.handleOwnStats)
}

// MountAdminRoutes registers per-worker stats for admins.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/workers/{workerID}/stats", h.handleWorkerStats)
}

func (h *Handler) handleOwnStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	h.respondSnapshot(w, r, identity.UserID)
}

func (h *Handler) handleWorkerStats(w http.ResponseWriter, r *http.Request) {
	workerID, err := uuid.Parse(chi.URLParam(r, "workerID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return
	}
	h.respondSnapshot(w, r, workerID)
}

func (h *Handler) respondSnapshot(w http.ResponseWriter, r *http.Request, workerID uuid.UUID) {
	snap, err := h.service.WorkerSnapshot(r.Context(), workerID)
	if err != nil {
		h.logger.Error("worker snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}
