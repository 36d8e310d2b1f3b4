package services

import (
	"context"
	"fmt"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for video_progress table data access
type ProgressRepository interface {
	// Method Save upserts the completion flag for one video in one session.
	Save(ctx context.Context, planID string, sessionIndex, videoIndex int, completed bool) error
	// Method Get reports whether a video is completed. Absent rows mean false.
	Get(ctx context.Context, planID string, sessionIndex, videoIndex int) (bool, error)
	// Method SessionProgress returns the completed fraction for a session, 0 with no rows.
	SessionProgress(ctx context.Context, planID string, sessionIndex int) (float64, error)
	// Method DeleteByPlan removes all progress for a plan.
	DeleteByPlan(ctx context.Context, planID string) error
	// Method DeleteOrphaned removes progress rows whose plan no longer exists.
	DeleteOrphaned(ctx context.Context) (int64, error)
}

type progressService struct {
	repo   ProgressRepository
	plans  PlanRepository
	logger *zap.Logger
}

// NewProgressService creates a new progress service
func NewProgressService(repo ProgressRepository, plans PlanRepository, logger *zap.Logger) *progressService {
	return &progressService{
		repo:   repo,
		plans:  plans,
		logger: logger,
	}
}

// UpdateProgress records a completion change and keeps the plan item's
// completion flag in sync with its session's videos
func (s *progressService) UpdateProgress(ctx context.Context, planID string, req models.UpdateProgressRequest) error {
	if req.SessionIndex < 0 || req.VideoIndex < 0 {
		return fmt.Errorf("session and video indices must be non-negative")
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		s.logger.Error("failed to load plan for progress update", zap.Error(err), zap.String("plan_id", planID))
		return fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return fmt.Errorf("plan not found: %s", planID)
	}
	if req.SessionIndex >= len(plan.Items) {
		return fmt.Errorf("session index %d out of range for plan with %d sessions", req.SessionIndex, len(plan.Items))
	}

	if err := s.repo.Save(ctx, planID, req.SessionIndex, req.VideoIndex, req.Completed); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return s.syncSessionCompletion(ctx, plan, req.SessionIndex)
}

// GetProgress reports whether one video is completed
func (s *progressService) GetProgress(ctx context.Context, planID string, sessionIndex, videoIndex int) (bool, error) {
	completed, err := s.repo.Get(ctx, planID, sessionIndex, videoIndex)
	if err != nil {
		return false, fmt.Errorf("failed to get progress: %w", err)
	}
	return completed, nil
}

// SessionProgress reports the completed fraction for one session
func (s *progressService) SessionProgress(ctx context.Context, planID string, sessionIndex int) (*models.SessionProgressResponse, error) {
	progress, err := s.repo.SessionProgress(ctx, planID, sessionIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get session progress: %w", err)
	}

	return &models.SessionProgressResponse{
		PlanID:       planID,
		SessionIndex: sessionIndex,
		Progress:     progress,
	}, nil
}

// syncSessionCompletion marks the plan item completed when every video
// in the session has at least one completed progress row
func (s *progressService) syncSessionCompletion(ctx context.Context, plan *models.Plan, sessionIndex int) error {
	item := &plan.Items[sessionIndex]

	allCompleted := true
	for _, videoIndex := range item.VideoIndices {
		completed, err := s.repo.Get(ctx, plan.ID, sessionIndex, videoIndex)
		if err != nil {
			return fmt.Errorf("failed to check session completion: %w", err)
		}
		if !completed {
			allCompleted = false
			break
		}
	}

	if item.Completed == allCompleted {
		return nil
	}

	item.Completed = allCompleted
	if err := s.plans.Save(ctx, plan); err != nil {
		s.logger.Error("failed to sync session completion", zap.Error(err), zap.String("plan_id", plan.ID))
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return nil
}
