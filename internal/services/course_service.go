package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/nlp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CourseRepository is the interface that wraps methods for courses table data access
type CourseRepository interface {
	// Method Save inserts a course or replaces an existing one with the same id.
	//
	// Raw titles and the generated structure are persisted as JSON documents.
	Save(ctx context.Context, course *models.Course) error
	// Method GetByID retrieves a course by its id.
	//
	// A missing course is reported as (nil, nil); errors indicate storage failures.
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// Method GetAll retrieves all stored courses ordered by creation time.
	GetAll(ctx context.Context) ([]models.Course, error)
	// Method Delete removes a course together with its plans and progress.
	Delete(ctx context.Context, id string) error
	// Method GetNames returns all existing course names for unique naming.
	GetNames(ctx context.Context) ([]string, error)
}

// PreferenceRepository is the interface that wraps clustering preference persistence
type PreferenceRepository interface {
	// Method Get retrieves the stored clustering preferences or the defaults.
	Get(ctx context.Context) (*models.ClusteringPreference, error)
	// Method Save upserts the clustering preferences.
	Save(ctx context.Context, pref *models.ClusteringPreference) error
	// Method IncrementUsage bumps the usage counter after a clustering run.
	IncrementUsage(ctx context.Context) error
}

type courseService struct {
	repo   CourseRepository
	prefs  PreferenceRepository
	logger *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(repo CourseRepository, prefs PreferenceRepository, logger *zap.Logger) *courseService {
	return &courseService{
		repo:   repo,
		prefs:  prefs,
		logger: logger,
	}
}

// CreateCourse ingests raw titles, structures them, and persists the
// resulting course. The display name is deduplicated against existing
// courses. progress may be nil
func (s *courseService) CreateCourse(ctx context.Context, req models.CreateCourseRequest, progress nlp.ProgressFunc) (*models.Course, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("course name is required")
	}
	if len(req.Titles) == 0 {
		return nil, fmt.Errorf("at least one video title is required")
	}

	names, err := s.repo.GetNames(ctx)
	if err != nil {
		s.logger.Error("failed to load course names", zap.Error(err))
		return nil, fmt.Errorf("failed to load course names: %w", err)
	}
	name := GenerateUniqueName(names, req.Name)

	structure, err := s.buildStructure(ctx, req.Titles, req.Durations, progress)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
		RawTitles: req.Titles,
		Structure: structure,
	}

	if progress != nil {
		progress(models.StageSaving, 0, "saving course")
	}
	if err := s.repo.Save(ctx, course); err != nil {
		s.logger.Error("failed to save course", zap.Error(err), zap.String("course_id", course.ID))
		return nil, fmt.Errorf("failed to save course: %w", err)
	}
	if progress != nil {
		progress(models.StageSaving, 1, "course saved")
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("name", course.Name),
		zap.Int("videos", len(course.RawTitles)))
	return course, nil
}

// GetCourse retrieves a course by id. Returns nil when not found
func (s *courseService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	if id == "" {
		return nil, fmt.Errorf("course id is required")
	}

	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get course", zap.Error(err), zap.String("course_id", id))
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}

// ListCourses retrieves all stored courses
func (s *courseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list courses", zap.Error(err))
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, nil
}

// DeleteCourse removes a course and everything owned by it
func (s *courseService) DeleteCourse(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("course id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete course", zap.Error(err), zap.String("course_id", id))
		return fmt.Errorf("failed to delete course: %w", err)
	}

	return nil
}

// RestructureCourse rebuilds the structure of an existing course from its
// raw titles, honouring stored clustering preferences unless the request
// overrides them
func (s *courseService) RestructureCourse(ctx context.Context, id string, req models.RestructureCourseRequest) (*models.Course, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}

	pref, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.Error("failed to load clustering preferences", zap.Error(err))
		return nil, fmt.Errorf("failed to load clustering preferences: %w", err)
	}
	if req.SimilarityThreshold != nil {
		pref.SimilarityThreshold = *req.SimilarityThreshold
	}
	if req.MaxClusters != nil {
		pref.MaxClusters = *req.MaxClusters
	}

	config := nlp.DefaultProcessorConfig()
	config.SimilarityThreshold = pref.SimilarityThreshold
	config.KMeans.MaxClusters = pref.MaxClusters
	processor := nlp.NewProcessor(config, s.logger)

	structure, err := processor.BuildStructure(course.RawTitles, req.Durations, nil)
	if err != nil {
		if !nlp.IsFallbackError(err) {
			return nil, err
		}
		s.logger.Warn("clustering failed, using fallback structure",
			zap.Error(err), zap.String("course_id", id))
		structure = processor.FallbackStructure(course.RawTitles, req.Durations)
	}

	course.Structure = structure
	if err := s.repo.Save(ctx, course); err != nil {
		s.logger.Error("failed to save restructured course", zap.Error(err), zap.String("course_id", id))
		return nil, fmt.Errorf("failed to save course: %w", err)
	}

	if err := s.prefs.IncrementUsage(ctx); err != nil {
		// Preference bookkeeping must not fail the restructure
		s.logger.Warn("failed to increment preference usage", zap.Error(err))
	}

	return course, nil
}

func (s *courseService) buildStructure(ctx context.Context, titles []string, durations []int64, progress nlp.ProgressFunc) (*models.CourseStructure, error) {
	pref, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.Error("failed to load clustering preferences", zap.Error(err))
		return nil, fmt.Errorf("failed to load clustering preferences: %w", err)
	}

	config := nlp.DefaultProcessorConfig()
	config.SimilarityThreshold = pref.SimilarityThreshold
	config.KMeans.MaxClusters = pref.MaxClusters
	processor := nlp.NewProcessor(config, s.logger)

	structure, err := processor.BuildStructure(titles, durations, progress)
	if err != nil {
		if !nlp.IsFallbackError(err) {
			return nil, err
		}
		s.logger.Warn("clustering failed, using fallback structure", zap.Error(err))
		structure = processor.FallbackStructure(titles, durations)
	}
	return structure, nil
}
