package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/planner"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PlansService is the interface that wraps methods for study plan business logic.
type PlansService interface {
	// Method CreatePlan generates and persists a study plan for a course.
	//
	// The schedule settings are validated first; a *planner.ValidationError is
	// returned for bad input. A missing course is reported as (nil, nil).
	CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error)
	// Method GetPlan retrieves a plan by its id, (nil, nil) when missing.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// Method GetPlanByCourse retrieves the most recent plan for a course.
	//
	// A course without plans is reported as (nil, nil).
	GetPlanByCourse(ctx context.Context, courseID string) (*models.Plan, error)
	// Method DeletePlan removes a plan and all progress recorded against it.
	DeletePlan(ctx context.Context, id string) error
	// Method PlanProgress reports overall completion for a plan, (nil, nil)
	// when the plan does not exist.
	PlanProgress(ctx context.Context, id string) (*models.PlanProgressResponse, error)
}

// ProgressService is the interface that wraps methods for video progress tracking.
type ProgressService interface {
	// Method UpdateProgress records a completion change for one video and keeps
	// the owning session's completion flag in sync.
	UpdateProgress(ctx context.Context, planID string, req models.UpdateProgressRequest) error
	// Method GetProgress reports whether one video has been watched. Videos
	// with no recorded progress report false.
	GetProgress(ctx context.Context, planID string, sessionIndex, videoIndex int) (bool, error)
	// Method SessionProgress reports the completed fraction for one session.
	SessionProgress(ctx context.Context, planID string, sessionIndex int) (*models.SessionProgressResponse, error)
}

// PlansHandler handles HTTP requests for study plans and their progress
type PlansHandler struct {
	BaseHandler
	service  PlansService
	progress ProgressService
}

// NewPlansHandler creates a new plan handler
func NewPlansHandler(svc PlansService, progress ProgressService, logger *zap.Logger) *PlansHandler {
	return &PlansHandler{
		service:     svc,
		progress:    progress,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all plan handler routes on the API router
func (h *PlansHandler) RegisterRoutes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.GetByCourse)
		r.Get("/{id}", h.GetByID)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/progress", h.PlanProgress)
		r.Put("/{id}/progress", h.UpdateProgress)
		r.Get("/{id}/sessions/{session}/progress", h.SessionProgress)
		r.Get("/{id}/sessions/{session}/videos/{video}/progress", h.VideoProgress)
	})
}

// Create handles POST /api/v1/plans
// @Summary Create a study plan
// @Description Generate a dated study plan for a course using the configured distribution strategy
// @Tags plans
// @Accept json
// @Produce json
// @Param request body model.CreatePlanRequest true "Course ID and schedule settings"
// @Success 201 {object} model.Plan
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans [post]
func (h *PlansHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), req)
	if err != nil {
		var validationErr *planner.ValidationError
		if errors.As(err, &validationErr) {
			h.respondError(w, http.StatusBadRequest, validationErr.Error())
			return
		}
		h.logger.Error("failed to create plan", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to create plan")
		return
	}
	if plan == nil {
		h.respondError(w, http.StatusNotFound, "course not found")
		return
	}

	h.respondJSON(w, http.StatusCreated, plan)
}

// GetByCourse handles GET /api/v1/plans?course_id={courseID}
// @Summary Get latest plan for a course
// @Description Get the most recently created study plan for a course
// @Tags plans
// @Accept json
// @Produce json
// @Param course_id query string true "Course ID"
// @Success 200 {object} model.Plan
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans [get]
func (h *PlansHandler) GetByCourse(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		h.respondError(w, http.StatusBadRequest, "course_id parameter is required")
		return
	}

	plan, err := h.service.GetPlanByCourse(r.Context(), courseID)
	if err != nil {
		h.logger.Error("failed to get plan by course", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		h.respondError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.respondJSON(w, http.StatusOK, plan)
}

// GetByID handles GET /api/v1/plans/{id}
// @Summary Get plan by ID
// @Description Get a study plan with its scheduled sessions
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} model.Plan
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id} [get]
func (h *PlansHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get plan", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		h.respondError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.respondJSON(w, http.StatusOK, plan)
}

// Delete handles DELETE /api/v1/plans/{id}
// @Summary Delete a plan
// @Description Delete a study plan and all progress recorded against it
// @Tags plans
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Success 204 "No Content"
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id} [delete]
func (h *PlansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		h.logger.Error("failed to delete plan", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PlanProgress handles GET /api/v1/plans/{id}/progress
// @Summary Get plan progress
// @Description Get completed and total session counts plus completion percentage
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} model.PlanProgressResponse
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id}/progress [get]
func (h *PlansHandler) PlanProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.service.PlanProgress(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get plan progress", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get plan progress")
		return
	}
	if resp == nil {
		h.respondError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// UpdateProgress handles PUT /api/v1/plans/{id}/progress
// @Summary Update video progress
// @Description Mark one video inside a session as watched or unwatched
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body model.UpdateProgressRequest true "Session index, video index, and completion flag"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id}/progress [put]
func (h *PlansHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.progress.UpdateProgress(r.Context(), id, req); err != nil {
		if isValidationMessage(err) || isOutOfRangeMessage(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if isNotFoundMessage(err) {
			h.respondError(w, http.StatusNotFound, "plan not found")
			return
		}
		h.logger.Error("failed to update progress", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to update progress")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SessionProgress handles GET /api/v1/plans/{id}/sessions/{session}/progress
// @Summary Get session progress
// @Description Get the completed fraction for one scheduled session
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param session path int true "Session index"
// @Success 200 {object} model.SessionProgressResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id}/sessions/{session}/progress [get]
func (h *PlansHandler) SessionProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sessionParam := chi.URLParam(r, "session")

	sessionIndex, err := strconv.Atoi(sessionParam)
	if err != nil || sessionIndex < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid session parameter")
		return
	}

	resp, err := h.progress.SessionProgress(r.Context(), id, sessionIndex)
	if err != nil {
		h.logger.Error("failed to get session progress", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get session progress")
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// VideoProgress handles GET /api/v1/plans/{id}/sessions/{session}/videos/{video}/progress
// @Summary Get video progress
// @Description Get the completion state of one video inside a session
// @Tags progress
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param session path int true "Session index"
// @Param video path int true "Video index"
// @Success 200 {object} model.VideoProgressResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/plans/{id}/sessions/{session}/videos/{video}/progress [get]
func (h *PlansHandler) VideoProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sessionIndex, err := strconv.Atoi(chi.URLParam(r, "session"))
	if err != nil || sessionIndex < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid session parameter")
		return
	}
	videoIndex, err := strconv.Atoi(chi.URLParam(r, "video"))
	if err != nil || videoIndex < 0 {
		h.respondError(w, http.StatusBadRequest, "invalid video parameter")
		return
	}

	completed, err := h.progress.GetProgress(r.Context(), id, sessionIndex, videoIndex)
	if err != nil {
		h.logger.Error("failed to get video progress", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get video progress")
		return
	}

	h.respondJSON(w, http.StatusOK, models.VideoProgressResponse{
		PlanID:       id,
		SessionIndex: sessionIndex,
		VideoIndex:   videoIndex,
		Completed:    completed,
	})
}
