package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/coursepilot/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupCourseTestRepository creates a repository with a mock database
func setupCourseTestRepository(t *testing.T) (*courseRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewCourseRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func sampleCourse() *models.Course {
	quality := 0.82
	return &models.Course{
		ID:        "c0ffee00-0000-0000-0000-000000000001",
		Name:      "Rust Fundamentals",
		CreatedAt: 1700000000,
		RawTitles: []string{"Intro", "Ownership", "Borrowing"},
		Structure: &models.CourseStructure{
			Modules: []models.Module{
				{
					Title: "Basics",
					Sections: []models.Section{
						{Title: "Intro", VideoIndex: 0, Duration: 300},
						{Title: "Ownership", VideoIndex: 1, Duration: 600},
						{Title: "Borrowing", VideoIndex: 2, Duration: 540},
					},
					TotalDuration: 1440,
				},
			},
			Metadata: models.StructureMetadata{
				TotalVideos:            3,
				TotalDuration:          1440,
				EstimatedDurationHours: 0.4,
				StructureQualityScore:  &quality,
			},
		},
	}
}

func TestCourseRepository_Save(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	course := sampleCourse()
	rawTitles, err := json.Marshal(course.RawTitles)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO courses`).
		WithArgs(course.ID, course.Name, course.CreatedAt, rawTitles, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Save(context.Background(), course)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_SaveError(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO courses`).
		WillReturnError(errors.New("database error"))

	err := repo.Save(context.Background(), sampleCourse())
	require.Error(t, err)

	var storageError *StorageError
	assert.ErrorAs(t, err, &storageError)
}

func TestCourseRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	course := sampleCourse()
	rawTitles, _ := json.Marshal(course.RawTitles)
	structure, _ := json.Marshal(course.Structure)

	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "raw_titles", "structure"}).
		AddRow(course.ID, course.Name, course.CreatedAt, rawTitles, structure)
	mock.ExpectQuery(`SELECT id, name, created_at, raw_titles, structure FROM courses`).
		WithArgs(course.ID).
		WillReturnRows(rows)

	loaded, err := repo.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// Round trip must preserve the nested structure exactly
	assert.Equal(t, course, loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_GetByIDNotFound(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, name, created_at, raw_titles, structure FROM courses`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "raw_titles", "structure"}))

	loaded, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCourseRepository_GetAll(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	rawTitles, _ := json.Marshal([]string{"Only Video"})
	rows := sqlmock.NewRows([]string{"id", "name", "created_at", "raw_titles", "structure"}).
		AddRow("id-1", "Course One", 1700000000, rawTitles, nil).
		AddRow("id-2", "Course Two", 1700000100, rawTitles, nil)
	mock.ExpectQuery(`SELECT id, name, created_at, raw_titles, structure FROM courses`).
		WillReturnRows(rows)

	courses, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Nil(t, courses[0].Structure)
	assert.Equal(t, []string{"Only Video"}, courses[0].RawTitles)
}

func TestCourseRepository_Delete(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM courses`).
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_DeleteNotFound(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM courses`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCourseRepository_GetNames(t *testing.T) {
	repo, mock, cleanup := setupCourseTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("Course One").
		AddRow("Course Two")
	mock.ExpectQuery(`SELECT name FROM courses`).WillReturnRows(rows)

	names, err := repo.GetNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Course One", "Course Two"}, names)
}
