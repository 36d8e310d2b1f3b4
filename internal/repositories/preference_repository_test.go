package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursepilot/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupPreferenceTestRepository(t *testing.T) (*preferenceRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewPreferenceRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestPreferenceRepository_Get(t *testing.T) {
	repo, mock, cleanup := setupPreferenceTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{
		"id", "similarity_threshold", "max_clusters", "preferred_algorithm",
		"strategy_hint", "content_weight", "usage_count", "updated_at",
	}).AddRow("default", 0.7, 8, "kmeans", "hybrid", 0.6, 12, 1700000000)
	mock.ExpectQuery(`SELECT id, similarity_threshold`).
		WithArgs("default").
		WillReturnRows(rows)

	pref, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.7, pref.SimilarityThreshold)
	assert.Equal(t, 8, pref.MaxClusters)
	assert.Equal(t, 12, pref.UsageCount)
}

func TestPreferenceRepository_GetDefaults(t *testing.T) {
	repo, mock, cleanup := setupPreferenceTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, similarity_threshold`).
		WithArgs("default").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "similarity_threshold", "max_clusters", "preferred_algorithm",
			"strategy_hint", "content_weight", "usage_count", "updated_at",
		}))

	pref, err := repo.Get(context.Background())
	require.NoError(t, err)

	defaults := models.DefaultClusteringPreference()
	assert.Equal(t, defaults.SimilarityThreshold, pref.SimilarityThreshold)
	assert.Equal(t, defaults.MaxClusters, pref.MaxClusters)
	assert.Equal(t, 0, pref.UsageCount)
}

func TestPreferenceRepository_Save(t *testing.T) {
	repo, mock, cleanup := setupPreferenceTestRepository(t)
	defer cleanup()

	pref := models.DefaultClusteringPreference()
	mock.ExpectExec(`INSERT INTO clustering_preferences`).
		WithArgs("default", pref.SimilarityThreshold, pref.MaxClusters, pref.PreferredAlgorithm,
			pref.StrategyHint, pref.ContentWeight, pref.UsageCount, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Save(context.Background(), &pref))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepository_IncrementUsage(t *testing.T) {
	repo, mock, cleanup := setupPreferenceTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE clustering_preferences`).
		WithArgs(sqlmock.AnyArg(), "default").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementUsage(context.Background()))
}
