package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/nlp"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CoursesService is the interface that wraps methods for course business logic.
type CoursesService interface {
	// Method CreateCourse ingests raw video titles and builds a structured course.
	//
	// The course name is deduplicated against existing courses, so the returned
	// course may carry a numbered suffix. "progress" may be nil for synchronous
	// creation over HTTP.
	// If validation fails or the course cannot be persisted, the error is returned
	// together with a "nil" value.
	CreateCourse(ctx context.Context, req models.CreateCourseRequest, progress nlp.ProgressFunc) (*models.Course, error)
	// Method GetCourse retrieves a course by its id.
	//
	// A missing course is reported as (nil, nil).
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	// Method ListCourses retrieves all stored courses ordered by creation time.
	ListCourses(ctx context.Context) ([]models.Course, error)
	// Method DeleteCourse removes a course together with its plans and progress.
	DeleteCourse(ctx context.Context, id string) error
	// Method RestructureCourse rebuilds the structure of an existing course from
	// its raw titles.
	//
	// Stored clustering preferences are honoured unless the request overrides
	// them. A missing course is reported as (nil, nil).
	RestructureCourse(ctx context.Context, id string, req models.RestructureCourseRequest) (*models.Course, error)
}

// CoursesHandler handles HTTP requests for courses
type CoursesHandler struct {
	BaseHandler
	service CoursesService
}

// NewCoursesHandler creates a new course handler
func NewCoursesHandler(svc CoursesService, logger *zap.Logger) *CoursesHandler {
	return &CoursesHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all course handler routes on the API router
func (h *CoursesHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/restructure", h.Restructure)
	})
}

// Create handles POST /api/v1/courses
// @Summary Create a course
// @Description Build a structured course from a list of raw video titles
// @Tags courses
// @Accept json
// @Produce json
// @Param request body model.CreateCourseRequest true "Course name and video titles"
// @Success 201 {object} model.Course
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses [post]
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.service.CreateCourse(r.Context(), req, nil)
	if err != nil {
		if isValidationMessage(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create course", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to create course")
		return
	}

	h.respondJSON(w, http.StatusCreated, course)
}

// List handles GET /api/v1/courses
// @Summary List courses
// @Description Get all stored courses ordered by creation time
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {array} model.Course
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses [get]
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.logger.Error("failed to list courses", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to list courses")
		return
	}

	h.respondJSON(w, http.StatusOK, courses)
}

// GetByID handles GET /api/v1/courses/{id}
// @Summary Get course by ID
// @Description Get a course with its generated structure
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} model.Course
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses/{id} [get]
func (h *CoursesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get course", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to get course")
		return
	}
	if course == nil {
		h.respondError(w, http.StatusNotFound, "course not found")
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// Delete handles DELETE /api/v1/courses/{id}
// @Summary Delete a course
// @Description Delete a course together with its plans and progress
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses/{id} [delete]
func (h *CoursesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		if isNotFoundMessage(err) {
			h.respondError(w, http.StatusNotFound, "course not found")
			return
		}
		h.logger.Error("failed to delete course", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restructure handles POST /api/v1/courses/{id}/restructure
// @Summary Restructure a course
// @Description Rebuild the course structure from its raw titles, optionally overriding clustering parameters
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param request body model.RestructureCourseRequest false "Clustering overrides"
// @Success 200 {object} model.Course
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/courses/{id}/restructure [post]
func (h *CoursesHandler) Restructure(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.RestructureCourseRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	course, err := h.service.RestructureCourse(r.Context(), id, req)
	if err != nil {
		if isValidationMessage(err) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to restructure course", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to restructure course")
		return
	}
	if course == nil {
		h.respondError(w, http.StatusNotFound, "course not found")
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}
