package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// importJobTTL bounds how long finished import jobs stay queryable
const importJobTTL = 24 * time.Hour

const importJobKeyPrefix = "import:job:"

// importJobRecord couples the job state with the request that started it
// so the worker can pick the payload up from a single key
type importJobRecord struct {
	Job     models.ImportJob           `json:"job"`
	Request models.ImportCourseRequest `json:"request"`
}

type importJobRepository struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewImportJobRepository creates a new Redis backed import job repository
func NewImportJobRepository(rdb *redis.Client, logger *zap.Logger) *importJobRepository {
	return &importJobRepository{
		redis:  rdb,
		logger: logger,
	}
}

// Create stores a fresh job together with its import request
func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob, req models.ImportCourseRequest) error {
	record := importJobRecord{Job: *job, Request: req}
	return r.writeRecord(ctx, &record)
}

// Get retrieves a job by id. A missing or expired job is reported as (nil, nil)
func (r *importJobRepository) Get(ctx context.Context, id string) (*models.ImportJob, error) {
	record, err := r.readRecord(ctx, id)
	if err != nil || record == nil {
		return nil, err
	}
	return &record.Job, nil
}

// GetRequest retrieves the import request that started a job
func (r *importJobRepository) GetRequest(ctx context.Context, id string) (*models.ImportCourseRequest, error) {
	record, err := r.readRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("import job not found: %s", id)
	}
	return &record.Request, nil
}

// Status retrieves just the lifecycle state of a job
func (r *importJobRepository) Status(ctx context.Context, id string) (models.ImportStatus, error) {
	record, err := r.readRecord(ctx, id)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", fmt.Errorf("import job not found: %s", id)
	}
	return record.Job.Status, nil
}

// SetProgress updates the stage, progress fraction, and message of a running job
func (r *importJobRepository) SetProgress(ctx context.Context, id string, stage models.ImportStage, progress float64, message string) error {
	return r.mutate(ctx, id, func(job *models.ImportJob) error {
		job.Stage = stage
		job.Progress = progress
		job.Message = message
		return nil
	})
}

// MarkRunning transitions a pending job to running
func (r *importJobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(job *models.ImportJob) error {
		if job.Status != models.ImportPending {
			return fmt.Errorf("import job %s is %s, not pending", id, job.Status)
		}
		job.Status = models.ImportRunning
		return nil
	})
}

// MarkCompleted finishes a job and records the created course id
func (r *importJobRepository) MarkCompleted(ctx context.Context, id, courseID string) error {
	return r.mutate(ctx, id, func(job *models.ImportJob) error {
		job.Status = models.ImportCompleted
		job.Progress = 1
		job.CourseID = courseID
		job.Cancellable = false
		return nil
	})
}

// MarkFailed finishes a job with an error message
func (r *importJobRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.mutate(ctx, id, func(job *models.ImportJob) error {
		job.Status = models.ImportFailed
		job.Error = errMsg
		job.Cancellable = false
		return nil
	})
}

// MarkCancelled requests cancellation of a pending or running job
func (r *importJobRepository) MarkCancelled(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(job *models.ImportJob) error {
		if job.Status != models.ImportPending && job.Status != models.ImportRunning {
			return fmt.Errorf("import job %s is already %s", id, job.Status)
		}
		job.Status = models.ImportCancelled
		job.Cancellable = false
		return nil
	})
}

func (r *importJobRepository) mutate(ctx context.Context, id string, fn func(job *models.ImportJob) error) error {
	record, err := r.readRecord(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("import job not found: %s", id)
	}

	if err := fn(&record.Job); err != nil {
		return err
	}
	record.Job.UpdatedAt = time.Now().Unix()

	return r.writeRecord(ctx, record)
}

func (r *importJobRepository) readRecord(ctx context.Context, id string) (*importJobRecord, error) {
	data, err := r.redis.Get(ctx, importJobKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		r.logger.Error("failed to read import job", zap.Error(err), zap.String("job_id", id))
		return nil, fmt.Errorf("failed to read import job: %w", err)
	}

	var record importJobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode import job: %w", err)
	}
	return &record, nil
}

func (r *importJobRepository) writeRecord(ctx context.Context, record *importJobRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode import job: %w", err)
	}

	if err := r.redis.Set(ctx, importJobKeyPrefix+record.Job.ID, data, importJobTTL).Err(); err != nil {
		r.logger.Error("failed to write import job", zap.Error(err), zap.String("job_id", record.Job.ID))
		return fmt.Errorf("failed to write import job: %w", err)
	}
	return nil
}
