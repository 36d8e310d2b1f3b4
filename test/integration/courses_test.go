package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/coursepilot/backend/internal/config"
	"github.com/coursepilot/backend/internal/handlers"
	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/repositories"
	"github.com/coursepilot/backend/internal/services"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testLogger *zap.Logger
)

// cleanupTestData removes all test data
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec("DELETE FROM video_progress")
	require.NoError(t, err, "Failed to cleanup video_progress")
	_, err = db.Exec("DELETE FROM plans")
	require.NoError(t, err, "Failed to cleanup plans")
	_, err = db.Exec("DELETE FROM courses")
	require.NoError(t, err, "Failed to cleanup courses")
}

// setupTestRouter creates a test router with all database backed handlers
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	courseRepo := repositories.NewCourseRepository(db, logger)
	planRepo := repositories.NewPlanRepository(db, logger)
	progressRepo := repositories.NewProgressRepository(db, logger)
	preferenceRepo := repositories.NewPreferenceRepository(db, logger)

	courseService := services.NewCourseService(courseRepo, preferenceRepo, logger)
	planService := services.NewPlanService(planRepo, courseRepo, progressRepo, logger)
	progressService := services.NewProgressService(progressRepo, planRepo, logger)

	courseHandler := handlers.NewCoursesHandler(courseService, logger)
	planHandler := handlers.NewPlansHandler(planService, progressService, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		courseHandler.RegisterRoutes(r)
		planHandler.RegisterRoutes(r)
	})

	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	// Initialize logger
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Setup test database
	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := cfg.DSN()
	if cfg.Database.Host == "" {
		// Default test database connection
		dsn = "root:password@tcp(localhost:3306)/coursepilot_test?parseTime=true&charset=utf8mb4"
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	// Test connection
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	// Setup test schema
	setupTestSchemaForMain(testDB)

	// Setup test router
	testRouter = setupTestRouter(testDB, testLogger)

	// Run tests
	code := m.Run()

	// Cleanup
	if testDB != nil {
		testDB.Close()
	}
	os.Exit(code)
}

// setupTestSchemaForMain creates the test database schema (for TestMain)
func setupTestSchemaForMain(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at BIGINT NOT NULL,
			raw_titles JSON NOT NULL,
			structure JSON NULL,
			INDEX idx_courses_created_at (created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS plans (
			id VARCHAR(36) PRIMARY KEY,
			course_id VARCHAR(36) NOT NULL,
			settings JSON NOT NULL,
			items JSON NOT NULL,
			created_at BIGINT NOT NULL,
			INDEX idx_plans_course_created (course_id, created_at),
			CONSTRAINT fk_plans_course FOREIGN KEY (course_id) REFERENCES courses (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS video_progress (
			id INT PRIMARY KEY AUTO_INCREMENT,
			plan_id VARCHAR(36) NOT NULL,
			session_index INT NOT NULL,
			video_index INT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			updated_at VARCHAR(35) NOT NULL,
			UNIQUE KEY uq_progress_video (plan_id, session_index, video_index),
			CONSTRAINT fk_progress_plan FOREIGN KEY (plan_id) REFERENCES plans (id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
		`CREATE TABLE IF NOT EXISTS clustering_preferences (
			id VARCHAR(36) PRIMARY KEY,
			similarity_threshold DOUBLE NOT NULL,
			max_clusters INT NOT NULL,
			preferred_algorithm VARCHAR(50) NOT NULL,
			strategy_hint VARCHAR(50) NOT NULL,
			content_weight DOUBLE NOT NULL,
			usage_count INT NOT NULL DEFAULT 0,
			updated_at BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, query := range queries {
		db.Exec(query)
	}
}

func postJSON(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func createTestCourse(t *testing.T, name string) models.Course {
	t.Helper()

	titles := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		titles = append(titles, fmt.Sprintf("Lesson %d: Go Fundamentals", i))
	}

	w := postJSON(t, "/api/v1/courses", models.CreateCourseRequest{
		Name:   name,
		Titles: titles,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var course models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
	return course
}

func testPlanSettings() models.PlanSettings {
	start := time.Now().AddDate(0, 0, 1)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}
	return models.PlanSettings{
		StartDate:            time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		SessionsPerWeek:      3,
		SessionLengthMinutes: 60,
		IncludeWeekends:      false,
	}
}

func TestIntegration_CourseLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	course := createTestCourse(t, "Go Fundamentals")
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "Go Fundamentals", course.Name)
	require.NotNil(t, course.Structure)
	assert.NotEmpty(t, course.Structure.Modules)
	assert.Equal(t, int64(12), course.Structure.Metadata.TotalVideos)

	// Duplicate name gets a numbered suffix
	second := createTestCourse(t, "Go Fundamentals")
	assert.Equal(t, "Go Fundamentals (2)", second.Name)

	// Fetch by id
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+course.ID, nil)
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, course.ID, fetched.ID)
	assert.Equal(t, course.RawTitles, fetched.RawTitles)

	// List contains both
	req = httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	w = httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// Unknown id is a 404
	req = httptest.NewRequest(http.MethodGet, "/api/v1/courses/00000000-0000-0000-0000-000000000000", nil)
	w = httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/courses/"+course.ID, nil)
	w = httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+course.ID, nil)
	w = httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_RestructureCourse(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	course := createTestCourse(t, "Restructure Me")

	threshold := 0.5
	w := postJSON(t, "/api/v1/courses/"+course.ID+"/restructure", models.RestructureCourseRequest{
		SimilarityThreshold: &threshold,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var restructured models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &restructured))
	require.NotNil(t, restructured.Structure)
	assert.NotEmpty(t, restructured.Structure.Modules)
	assert.Equal(t, course.RawTitles, restructured.RawTitles)
}

func TestIntegration_PlanLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	course := createTestCourse(t, "Plan Me")

	// Create a plan
	w := postJSON(t, "/api/v1/plans", models.CreatePlanRequest{
		CourseID: course.ID,
		Settings: testPlanSettings(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var plan models.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, course.ID, plan.CourseID)
	require.NotEmpty(t, plan.Items)
	for _, item := range plan.Items {
		assert.NotEqual(t, time.Saturday, item.Date.Weekday())
		assert.NotEqual(t, time.Sunday, item.Date.Weekday())
	}

	// Latest plan by course
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans?course_id="+course.ID, nil)
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var latest models.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, plan.ID, latest.ID)

	// Mark every video of the first session watched
	for _, videoIndex := range plan.Items[0].VideoIndices {
		body, err := json.Marshal(models.UpdateProgressRequest{
			SessionIndex: 0,
			VideoIndex:   videoIndex,
			Completed:    true,
		})
		require.NoError(t, err)

		req = httptest.NewRequest(http.MethodPut, "/api/v1/plans/"+plan.ID+"/progress", bytes.NewReader(body))
		rec = httptest.NewRecorder()
		testRouter.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	}

	// Session is fully completed
	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID+"/sessions/0/progress", nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var session models.SessionProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.InDelta(t, 1.0, session.Progress, 0.0001)

	// Each watched video reports completed, an unwatched one does not
	videoPath := fmt.Sprintf("/api/v1/plans/%s/sessions/0/videos/%d/progress", plan.ID, plan.Items[0].VideoIndices[0])
	req = httptest.NewRequest(http.MethodGet, videoPath, nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var video models.VideoProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.True(t, video.Completed)
	assert.Equal(t, plan.ID, video.PlanID)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID+"/sessions/1/videos/99/progress", nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &video))
	assert.False(t, video.Completed)

	// Plan level progress reflects the completed session
	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID+"/progress", nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var progress models.PlanProgressResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, len(plan.Items), progress.Total)

	// Delete plan removes its progress too
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/plans/"+plan.ID, nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+plan.ID, nil)
	rec = httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var progressRows int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM video_progress WHERE plan_id = ?", plan.ID).Scan(&progressRows))
	assert.Equal(t, 0, progressRows)
}

func TestIntegration_PlanValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	course := createTestCourse(t, "Validate Me")

	settings := testPlanSettings()
	settings.SessionLengthMinutes = 5

	w := postJSON(t, "/api/v1/plans", models.CreatePlanRequest{
		CourseID: course.ID,
		Settings: settings,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown course is a 404
	w = postJSON(t, "/api/v1/plans", models.CreatePlanRequest{
		CourseID: "00000000-0000-0000-0000-000000000000",
		Settings: testPlanSettings(),
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntegration_DeleteCourseCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cleanupTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	course := createTestCourse(t, "Cascade Me")

	w := postJSON(t, "/api/v1/plans", models.CreatePlanRequest{
		CourseID: course.ID,
		Settings: testPlanSettings(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var plan models.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/courses/"+course.ID, nil)
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var planRows int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM plans WHERE id = ?", plan.ID).Scan(&planRows))
	assert.Equal(t, 0, planRows)
}
