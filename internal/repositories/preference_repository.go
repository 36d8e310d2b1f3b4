package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"go.uber.org/zap"
)

// defaultPreferenceID keys the single-user preference row
const defaultPreferenceID = "default"

type preferenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPreferenceRepository creates a new instance of the PreferenceRepository interface
func NewPreferenceRepository(db *sql.DB, logger *zap.Logger) *preferenceRepository {
	return &preferenceRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the stored clustering preferences, falling back to the
// defaults when none have been saved yet
func (r *preferenceRepository) Get(ctx context.Context) (*models.ClusteringPreference, error) {
	query := `
		SELECT id, similarity_threshold, max_clusters, preferred_algorithm,
		       strategy_hint, content_weight, usage_count, updated_at
		FROM clustering_preferences
		WHERE id = ?
	`

	var pref models.ClusteringPreference
	err := r.db.QueryRowContext(ctx, query, defaultPreferenceID).Scan(
		&pref.ID,
		&pref.SimilarityThreshold,
		&pref.MaxClusters,
		&pref.PreferredAlgorithm,
		&pref.StrategyHint,
		&pref.ContentWeight,
		&pref.UsageCount,
		&pref.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			defaults := models.DefaultClusteringPreference()
			defaults.ID = defaultPreferenceID
			return &defaults, nil
		}
		r.logger.Error("failed to query clustering preferences", zap.Error(err))
		return nil, storageErr("get_preferences", "failed to query preferences", err)
	}

	return &pref, nil
}

// Save upserts the clustering preferences
func (r *preferenceRepository) Save(ctx context.Context, pref *models.ClusteringPreference) error {
	query := `
		INSERT INTO clustering_preferences
			(id, similarity_threshold, max_clusters, preferred_algorithm, strategy_hint, content_weight, usage_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			similarity_threshold = VALUES(similarity_threshold),
			max_clusters = VALUES(max_clusters),
			preferred_algorithm = VALUES(preferred_algorithm),
			strategy_hint = VALUES(strategy_hint),
			content_weight = VALUES(content_weight),
			usage_count = VALUES(usage_count),
			updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		defaultPreferenceID,
		pref.SimilarityThreshold,
		pref.MaxClusters,
		pref.PreferredAlgorithm,
		pref.StrategyHint,
		pref.ContentWeight,
		pref.UsageCount,
		time.Now().Unix(),
	)
	if err != nil {
		r.logger.Error("failed to save clustering preferences", zap.Error(err))
		return storageErr("save_preferences", "failed to save preferences", err)
	}

	return nil
}

// IncrementUsage bumps the usage counter for the stored preferences
func (r *preferenceRepository) IncrementUsage(ctx context.Context) error {
	query := `
		UPDATE clustering_preferences
		SET usage_count = usage_count + 1, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, time.Now().Unix(), defaultPreferenceID)
	if err != nil {
		r.logger.Error("failed to increment preference usage", zap.Error(err))
		return storageErr("increment_usage", "failed to increment usage", err)
	}

	return nil
}
