package workers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/platform/httpx"
	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/workplace"
)

// Handler wires worker management endpoints.
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

// MountWorkerRoutes registers self-service profile routes.
func (h *Handler) MountWorkerRoutes(r chi.Router) {
	r.Get("/profile", h.handleOwnProfile)
	r.Put("/profile", h.handleUpdateOwnProfile)
}

// MountAdminRoutes registers admin worker management routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/workers", h.handleCreate)
	r.Get("/workers", h.handleList)
	r.Get("/workers/{workerID}", h.handleDetail)
	r.Put("/workers/{workerID}", h.handleUpdate)
}

type createRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required,max=200"`
	Phone       string `json:"phone" validate:"omitempty,max=40"`
	Role        string `json:"role" validate:"omitempty,oneof=admin worker"`
	WorkplaceID string `json:"workplace_id" validate:"omitempty,uuid"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
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

	created, err := h.service.Create(r.Context(), identity.UserID, CreateInput{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Role:        shared.Role(req.Role),
		WorkplaceID: workplaceID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type updateRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Role     string `json:"role" validate:"required,oneof=admin worker"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	workerID, err := uuid.Parse(chi.URLParam(r, "workerID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), identity.UserID, workerID, UpdateInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     shared.Role(req.Role),
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

type selfUpdateRequest struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
}

func (h *Handler) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req selfUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateSelf(r.Context(), identity.UserID, SelfUpdateInput{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleOwnProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profile)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	listed, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list workers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pagination := shared.NewPagination(page, perPage, len(listed))
	start := (pagination.Page - 1) * pagination.PerPage
	if start > len(listed) {
		start = len(listed)
	}
	end := start + pagination.PerPage
	if end > len(listed) {
		end = len(listed)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"workers":    listed[start:end],
		"pagination": pagination,
	})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	workerID, err := uuid.Parse(chi.URLParam(r, "workerID"))
	if err != nil {
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", "invalid worker id")
		return
	}
	detail, err := h.service.Detail(r.Context(), workerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.ProblemKind(w, http.StatusNotFound, "worker_not_found", "Not Found", "worker not found")
	case errors.Is(err, ErrEmailTaken):
		httpx.ProblemKind(w, http.StatusConflict, "email_taken", "Conflict", "email already registered")
	case errors.Is(err, ErrInvalidInput):
		httpx.ProblemKind(w, http.StatusBadRequest, "validation_error", "Validation Failed", err.Error())
	case errors.Is(err, workplace.ErrInvalidReference):
		httpx.ProblemKind(w, http.StatusUnprocessableEntity, "invalid_reference", "Invalid Reference", "unknown workplace")
	default:
		h.logger.Error("worker operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
