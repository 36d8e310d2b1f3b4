package main

import (
	"context"
	"strings"
	"time"

	"github.com/coursepilot/backend/internal/models"
	"github.com/coursepilot/backend/internal/nlp"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// cancelPollInterval is how often a running import checks for cancellation
const cancelPollInterval = 500 * time.Millisecond

// ImportJobStore defines the interface for import job state persistence
type ImportJobStore interface {
	// GetRequest retrieves the import request that started a job
	//
	// "id" parameter is used to retrieve the request by job ID.
	//
	// If the job is missing or expired, an error containing "not found" is returned.
	GetRequest(ctx context.Context, id string) (*models.ImportCourseRequest, error)
	// Status retrieves just the lifecycle state of a job
	//
	// "id" parameter is used to retrieve the status by job ID.
	Status(ctx context.Context, id string) (models.ImportStatus, error)
	// MarkRunning transitions a pending job to running
	MarkRunning(ctx context.Context, id string) error
	// SetProgress updates the stage, overall progress fraction, and message of a job
	SetProgress(ctx context.Context, id string, stage models.ImportStage, progress float64, message string) error
	// MarkCompleted finishes a job and records the created course ID
	MarkCompleted(ctx context.Context, id, courseID string) error
	// MarkFailed finishes a job with an error message
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// CourseCreator defines the interface for building and persisting courses
type CourseCreator interface {
	// CreateCourse ingests raw video titles and builds a structured course
	//
	// "progress" is invoked as the structuring pipeline advances through its stages.
	//
	// If the context is cancelled mid-pipeline, nothing is persisted and the
	// error is returned.
	CreateCourse(ctx context.Context, req models.CreateCourseRequest, progress nlp.ProgressFunc) (*models.Course, error)
}

// Worker handles background course import processing
type Worker struct {
	logger  *zap.Logger
	store   ImportJobStore
	courses CourseCreator
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, store ImportJobStore, courses CourseCreator) *Worker {
	return &Worker{
		logger:  logger,
		store:   store,
		courses: courses,
	}
}

// HandleCourseImport handles import:course task processing
func (w *Worker) HandleCourseImport(ctx context.Context, t *asynq.Task) error {
	jobID := string(t.Payload())

	status, err := w.store.Status(ctx, jobID)
	if err != nil {
		// Job expired before processing, meaning we decided not to run it
		if strings.Contains(err.Error(), "not found") {
			return nil
		}
		return err
	}
	if status != models.ImportPending {
		// Cancelled before start, or a duplicate delivery
		w.logger.Info("skipping import job", zap.String("job_id", jobID), zap.String("status", string(status)))
		return nil
	}

	if err := w.store.MarkRunning(ctx, jobID); err != nil {
		return err
	}

	req, err := w.store.GetRequest(ctx, jobID)
	if err != nil {
		w.store.MarkFailed(ctx, jobID, err.Error())
		return err
	}

	w.store.SetProgress(ctx, jobID, models.StageFetching,
		models.OverallProgress(models.StageFetching, 1), "course request loaded")

	// Watch for cancellation while the pipeline runs. Cancelling the
	// context aborts the final save, so a cancelled import persists nothing.
	importCtx, cancelImport := context.WithCancel(ctx)
	defer cancelImport()

	watchDone := make(chan struct{})
	defer close(watchDone)
	go w.watchCancellation(importCtx, cancelImport, jobID, watchDone)

	course, err := w.courses.CreateCourse(importCtx, models.CreateCourseRequest{
		Name:      req.Name,
		Titles:    req.Titles,
		Durations: req.Durations,
	}, func(stage models.ImportStage, stageProgress float64, message string) {
		w.store.SetProgress(ctx, jobID, stage, models.OverallProgress(stage, stageProgress), message)
	})

	if importCtx.Err() != nil {
		// Cancellation already moved the job to its terminal state
		w.logger.Info("import job cancelled mid-pipeline", zap.String("job_id", jobID))
		return nil
	}
	if err != nil {
		w.store.MarkFailed(ctx, jobID, err.Error())
		return err
	}

	if err := w.store.MarkCompleted(ctx, jobID, course.ID); err != nil {
		return err
	}

	w.logger.Info("import job completed",
		zap.String("job_id", jobID),
		zap.String("course_id", course.ID))
	return nil
}

// watchCancellation polls the job status and cancels the import context
// once the job has been marked cancelled
func (w *Worker) watchCancellation(ctx context.Context, cancel context.CancelFunc, jobID string, done <-chan struct{}) {
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := w.store.Status(context.Background(), jobID)
			if err != nil {
				continue
			}
			if status == models.ImportCancelled {
				cancel()
				return
			}
		}
	}
}
