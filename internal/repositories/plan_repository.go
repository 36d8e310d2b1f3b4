package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

type planRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new instance of the PlanRepository interface
func NewPlanRepository(db *sql.DB, logger *zap.Logger) *planRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a plan or replaces an existing one with the same id.
// Settings and items are stored as JSON; created_at is epoch seconds
func (r *planRepository) Save(ctx context.Context, plan *models.Plan) error {
	settings, err := json.Marshal(plan.Settings)
	if err != nil {
		return storageErr("save_plan", "failed to encode settings", err)
	}
	items, err := json.Marshal(plan.Items)
	if err != nil {
		return storageErr("save_plan", "failed to encode items", err)
	}

	query := `
		INSERT INTO plans (id, course_id, settings, items, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE settings = VALUES(settings), items = VALUES(items)
	`

	_, err = r.db.ExecContext(ctx, query, plan.ID, plan.CourseID, settings, items, plan.CreatedAt)
	if err != nil && isTransient(err) {
		_, err = r.db.ExecContext(ctx, query, plan.ID, plan.CourseID, settings, items, plan.CreatedAt)
	}
	if err != nil {
		r.logger.Error("failed to save plan", zap.Error(err), zap.String("plan_id", plan.ID))
		return storageErr("save_plan", "failed to save plan", err)
	}

	return nil
}

// GetByID retrieves a plan by its id. Returns nil when not found
func (r *planRepository) GetByID(ctx context.Context, id string) (*models.Plan, error) {
	query := `
		SELECT id, course_id, settings, items, created_at
		FROM plans
		WHERE id = ?
	`

	plan, err := r.scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to query plan", zap.Error(err), zap.String("plan_id", id))
		return nil, storageErr("load_plan", "failed to query plan", err)
	}

	return plan, nil
}

// GetLatestByCourse retrieves the most recently created plan for a course.
// Returns nil when the course has no plan
func (r *planRepository) GetLatestByCourse(ctx context.Context, courseID string) (*models.Plan, error) {
	query := `
		SELECT id, course_id, settings, items, created_at
		FROM plans
		WHERE course_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	plan, err := r.scanPlan(r.db.QueryRowContext(ctx, query, courseID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("failed to query plan by course", zap.Error(err), zap.String("course_id", courseID))
		return nil, storageErr("get_plan_by_course", "failed to query plan", err)
	}

	return plan, nil
}

// Delete removes a plan. Progress records cascade via foreign keys
func (r *planRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete plan", zap.Error(err), zap.String("plan_id", id))
		return storageErr("delete_plan", "failed to delete plan", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageErr("delete_plan", "failed to read affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("plan not found: %s", id)
	}

	return nil
}

func (r *planRepository) scanPlan(row rowScanner) (*models.Plan, error) {
	var plan models.Plan
	var settings, items []byte

	if err := row.Scan(&plan.ID, &plan.CourseID, &settings, &items, &plan.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(settings, &plan.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := json.Unmarshal(items, &plan.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}

	return &plan, nil
}
