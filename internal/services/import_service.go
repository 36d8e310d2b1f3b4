package services

import (
	"context"
	"fmt"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskTypeCourseImport is the asynq task type for background course imports.
// The payload is the import job id
const TaskTypeCourseImport = "import:course"

// ImportQueue is the asynq queue imports are enqueued on
const ImportQueue = "imports"

// ImportJobStore is the interface that wraps import job state persistence
type ImportJobStore interface {
	// Method Create stores a fresh job together with its import request.
	Create(ctx context.Context, job *models.ImportJob, req models.ImportCourseRequest) error
	// Method Get retrieves a job by id, (nil, nil) when missing or expired.
	Get(ctx context.Context, id string) (*models.ImportJob, error)
	// Method MarkCancelled requests cancellation of a pending or running job.
	MarkCancelled(ctx context.Context, id string) error
}

type importService struct {
	store       ImportJobStore
	asynqClient *asynq.Client
	logger      *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(store ImportJobStore, asynqClient *asynq.Client, logger *zap.Logger) *importService {
	return &importService{
		store:       store,
		asynqClient: asynqClient,
		logger:      logger,
	}
}

// StartImport registers an import job and enqueues it for background processing
func (s *importService) StartImport(ctx context.Context, req models.ImportCourseRequest) (*models.ImportJob, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("course name is required")
	}
	if len(req.Titles) == 0 {
		return nil, fmt.Errorf("at least one video title is required")
	}
	if len(req.Durations) > 0 && len(req.Durations) != len(req.Titles) {
		return nil, fmt.Errorf("durations count %d does not match titles count %d", len(req.Durations), len(req.Titles))
	}

	now := time.Now().Unix()
	job := &models.ImportJob{
		ID:          uuid.New().String(),
		CourseName:  req.Name,
		Status:      models.ImportPending,
		Stage:       models.StageFetching,
		Cancellable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, job, req); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	task := asynq.NewTask(TaskTypeCourseImport, []byte(job.ID))
	if _, err := s.asynqClient.Enqueue(task, asynq.Queue(ImportQueue)); err != nil {
		s.logger.Error("failed to enqueue import task", zap.Error(err), zap.String("job_id", job.ID))
		return nil, fmt.Errorf("failed to enqueue import task: %w", err)
	}

	s.logger.Info("import job enqueued",
		zap.String("job_id", job.ID),
		zap.String("course_name", req.Name),
		zap.Int("videos", len(req.Titles)))
	return job, nil
}

// GetImport retrieves the current state of an import job. Returns nil
// when the job does not exist or has expired
func (s *importService) GetImport(ctx context.Context, id string) (*models.ImportJob, error) {
	if id == "" {
		return nil, fmt.Errorf("import job id is required")
	}
	return s.store.Get(ctx, id)
}

// CancelImport requests cancellation of a pending or running import
func (s *importService) CancelImport(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("import job id is required")
	}
	if err := s.store.MarkCancelled(ctx, id); err != nil {
		return err
	}
	s.logger.Info("import job cancelled", zap.String("job_id", id))
	return nil
}
