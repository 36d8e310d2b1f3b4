package repositories

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new instance of the ProgressRepository interface
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// Save upserts the completion flag for one video in one session.
// updated_at is stored as RFC3339
func (r *progressRepository) Save(ctx context.Context, planID string, sessionIndex, videoIndex int, completed bool) error {
	query := `
		INSERT INTO video_progress (plan_id, session_index, video_index, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE completed = VALUES(completed), updated_at = VALUES(updated_at)
	`

	updatedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, planID, sessionIndex, videoIndex, completed, updatedAt)
	if err != nil && isTransient(err) {
		_, err = r.db.ExecContext(ctx, query, planID, sessionIndex, videoIndex, completed, updatedAt)
	}
	if err != nil {
		r.logger.Error("failed to save progress", zap.Error(err), zap.String("plan_id", planID))
		return storageErr("save_progress", "failed to save progress", err)
	}

	return nil
}

// Get reports whether a video has been completed. Absent rows mean false
func (r *progressRepository) Get(ctx context.Context, planID string, sessionIndex, videoIndex int) (bool, error) {
	query := `
		SELECT completed
		FROM video_progress
		WHERE plan_id = ? AND session_index = ? AND video_index = ?
	`

	var completed bool
	err := r.db.QueryRowContext(ctx, query, planID, sessionIndex, videoIndex).Scan(&completed)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		r.logger.Error("failed to query progress", zap.Error(err), zap.String("plan_id", planID))
		return false, storageErr("get_progress", "failed to query progress", err)
	}

	return completed, nil
}

// SessionProgress returns the completed fraction over recorded rows for
// one session. Returns 0 when no rows exist
func (r *progressRepository) SessionProgress(ctx context.Context, planID string, sessionIndex int) (float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(completed), 0)
		FROM video_progress
		WHERE plan_id = ? AND session_index = ?
	`

	var total, completed int
	err := r.db.QueryRowContext(ctx, query, planID, sessionIndex).Scan(&total, &completed)
	if err != nil {
		r.logger.Error("failed to query session progress", zap.Error(err), zap.String("plan_id", planID))
		return 0, storageErr("session_progress", "failed to query session progress", err)
	}

	if total == 0 {
		return 0, nil
	}
	return float64(completed) / float64(total), nil
}

// DeleteByPlan removes all progress for a plan
func (r *progressRepository) DeleteByPlan(ctx context.Context, planID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM video_progress WHERE plan_id = ?`, planID)
	if err != nil {
		r.logger.Error("failed to delete progress", zap.Error(err), zap.String("plan_id", planID))
		return storageErr("delete_progress", "failed to delete progress", err)
	}

	return nil
}

// DeleteOrphaned removes progress rows whose plan no longer exists.
// Run periodically by the maintenance job
func (r *progressRepository) DeleteOrphaned(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM video_progress
		WHERE plan_id NOT IN (SELECT id FROM plans)
	`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to delete orphaned progress", zap.Error(err))
		return 0, storageErr("delete_orphaned", "failed to delete orphaned progress", err)
	}

	return result.RowsAffected()
}
