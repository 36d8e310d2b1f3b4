package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coursepilot/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ImportsService is the interface that wraps methods for background course imports.
type ImportsService interface {
	// Method StartImport registers an import job and enqueues it for background
	// processing. The returned job is in the pending state.
	StartImport(ctx context.Context, req models.ImportCourseRequest) (*models.ImportJob, error)
	// Method GetImport retrieves the current state of an import job.
	//
	// A missing or expired job is reported as (nil, nil).
	GetImport(ctx context.Context, id string) (*models.ImportJob, error)
	// Method CancelImport requests cancellation of a pending or running import.
	//
	// Jobs that already finished cannot be cancelled and produce an error.
	CancelImport(ctx context.Context, id string) error
}

// ImportsHandler handles HTTP requests for background course imports
type ImportsHandler struct {
	BaseHandler
	service ImportsService
}

// NewImportsHandler creates a new import handler
func NewImportsHandler(svc ImportsService, logger *zap.Logger) *ImportsHandler {
	return &ImportsHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all import handler routes on the API router
func (h *ImportsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Get("/{id}", h.GetByID)
		r.Delete("/{id}", h.Cancel)
	})
}

// Start handles POST /api/v1/imports
// @Summary Start a course import
// @Description Enqueue a background job that builds a structured course from raw video titles
// @Tags imports
// @Accept json
// @Produce json
// @Param request body model.ImportCourseRequest true "Course name, video titles, and optional durations"
// @Success 202 {object} model.ImportJob
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/imports [post]
func (h *ImportsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.ImportCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := h.service.StartImport(r.Context(), req)
	if err != nil {
		if isValidationMessage(err) || strings.Contains(err.Error(), "does not match") {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to start import", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to start import")
		return
	}

	h.respondJSON(w, http.StatusAccepted, job)
}

// GetByID handles GET /api/v1/imports/{id}
// @Summary Get import job status
// @Description Get the stage, progress, and outcome of a background import
// @Tags imports
// @Accept json
// @Produce json
// @Param id path string true "Import job ID"
// @Success 200 {object} model.ImportJob
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/imports/{id} [get]
func (h *ImportsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.service.GetImport(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get import job", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get import job")
		return
	}
	if job == nil {
		h.respondError(w, http.StatusNotFound, "import job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

// Cancel handles DELETE /api/v1/imports/{id}
// @Summary Cancel an import
// @Description Request cancellation of a pending or running import job
// @Tags imports
// @Accept json
// @Produce json
// @Param id path string true "Import job ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/imports/{id} [delete]
func (h *ImportsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.CancelImport(r.Context(), id); err != nil {
		if isNotFoundMessage(err) {
			h.respondError(w, http.StatusNotFound, "import job not found")
			return
		}
		if strings.Contains(err.Error(), "already") {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to cancel import", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to cancel import")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
