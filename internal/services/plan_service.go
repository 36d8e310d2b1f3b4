package services

import (
	"context"
	"fmt"

	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/planner"
	"go.uber.org/zap"
)

// PlanRepository is the interface that wraps methods for plans table data access
type PlanRepository interface {
	// Method Save inserts a plan or replaces an existing one with the same id.
	Save(ctx context.Context, plan *models.Plan) error
	// Method GetByID retrieves a plan by its id, (nil, nil) when missing.
	GetByID(ctx context.Context, id string) (*models.Plan, error)
	// Method GetLatestByCourse retrieves the most recent plan for a course.
	GetLatestByCourse(ctx context.Context, courseID string) (*models.Plan, error)
	// Method Delete removes a plan.
	Delete(ctx context.Context, id string) error
}

type planService struct {
	plans     PlanRepository
	courses   CourseRepository
	progress  ProgressRepository
	scheduler *planner.Scheduler
	logger    *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(plans PlanRepository, courses CourseRepository, progress ProgressRepository, logger *zap.Logger) *planService {
	return &planService{
		plans:     plans,
		courses:   courses,
		progress:  progress,
		scheduler: planner.NewScheduler(logger),
		logger:    logger,
	}
}

// CreatePlan generates and persists a study plan for a course
func (s *planService) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	course, err := s.courses.GetByID(ctx, req.CourseID)
	if err != nil {
		s.logger.Error("failed to load course for plan", zap.Error(err), zap.String("course_id", req.CourseID))
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, nil
	}

	plan, err := s.scheduler.GeneratePlan(course, req.Settings)
	if err != nil {
		return nil, err
	}

	if err := s.plans.Save(ctx, plan); err != nil {
		s.logger.Error("failed to save plan", zap.Error(err), zap.String("plan_id", plan.ID))
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	s.logger.Info("plan created",
		zap.String("plan_id", plan.ID),
		zap.String("course_id", course.ID),
		zap.Int("sessions", len(plan.Items)))
	return plan, nil
}

// GetPlan retrieves a plan by id. Returns nil when not found
func (s *planService) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	if id == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get plan", zap.Error(err), zap.String("plan_id", id))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return plan, nil
}

// GetPlanByCourse retrieves the most recent plan for a course. Returns
// nil when the course has no plan yet
func (s *planService) GetPlanByCourse(ctx context.Context, courseID string) (*models.Plan, error) {
	if courseID == "" {
		return nil, fmt.Errorf("course id is required")
	}

	plan, err := s.plans.GetLatestByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("failed to get plan by course", zap.Error(err), zap.String("course_id", courseID))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return plan, nil
}

// DeletePlan removes a plan and all progress recorded against it
func (s *planService) DeletePlan(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("plan id is required")
	}

	if err := s.progress.DeleteByPlan(ctx, id); err != nil {
		s.logger.Error("failed to delete plan progress", zap.Error(err), zap.String("plan_id", id))
		return fmt.Errorf("failed to delete plan progress: %w", err)
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete plan", zap.Error(err), zap.String("plan_id", id))
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	return nil
}

// PlanProgress reports overall completion for a plan. Returns nil when
// the plan does not exist
func (s *planService) PlanProgress(ctx context.Context, id string) (*models.PlanProgressResponse, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	completed, total, percentage := plan.CalculateProgress()
	return &models.PlanProgressResponse{
		PlanID:     plan.ID,
		Completed:  completed,
		Total:      total,
		Percentage: percentage,
	}, nil
}
