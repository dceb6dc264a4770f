package job

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// defaultSweepBatchSize caps how many incomplete tasks one sweep enqueues.
const defaultSweepBatchSize = 500

// ProcessPendingTasksJob sweeps incomplete tasks and enqueues one
// ProcessTaskJob per task. The sweep itself does no task mutation; each
// enqueued job locks and updates its own row.
type ProcessPendingTasksJob struct {
	id        uuid.UUID
	db        *sql.DB
	taskStore store.TaskStore
	recorder  ResultRecorder
	submitter Submitter
	logger    *slog.Logger
	batchSize int
	status    Status
}

// NewProcessPendingTasksJob creates a sweep job.
func NewProcessPendingTasksJob(
	id uuid.UUID,
	db *sql.DB,
	taskStore store.TaskStore,
	recorder ResultRecorder,
	submitter Submitter,
	logger *slog.Logger,
) (*ProcessPendingTasksJob, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if taskStore == nil {
		return nil, ErrNilTaskStore
	}
	if recorder == nil {
		return nil, ErrNilRecorder
	}
	if submitter == nil {
		return nil, ErrNilSubmitter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &ProcessPendingTasksJob{
		id:        id,
		db:        db,
		taskStore: taskStore,
		recorder:  recorder,
		submitter: submitter,
		logger:    logger.With("job_type", TypeProcessPending),
		batchSize: defaultSweepBatchSize,
		status:    StatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (j *ProcessPendingTasksJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *ProcessPendingTasksJob) Type() string {
	return TypeProcessPending
}

// Payload returns the job data as a byte slice
func (j *ProcessPendingTasksJob) Payload() []byte {
	return []byte{}
}

// Status returns the current job status
func (j *ProcessPendingTasksJob) Status() Status {
	return j.status
}

// Execute lists incomplete tasks and submits a processing job for each.
func (j *ProcessPendingTasksJob) Execute(ctx context.Context) error {
	j.status = StatusProcessing
	j.logger.Info("sweeping incomplete tasks")

	ids, err := j.taskStore.ListIncompleteIDs(ctx, j.batchSize)
	if err != nil {
		j.status = StatusFailed
		return fmt.Errorf("failed to list incomplete tasks: %w", err)
	}

	enqueued := 0
	for _, taskID := range ids {
		processJob, err := NewProcessTaskJob(
			uuid.Nil, taskID, j.db, j.taskStore, j.recorder, j.submitter, j.logger,
		)
		if err != nil {
			j.logger.Error("failed to build process job", "target_task_id", taskID, "error", err)
			continue
		}

		if err := j.submitter.Submit(ctx, processJob); err != nil {
			// Queue full or persistence failure. Remaining tasks wait for
			// the next sweep.
			j.logger.Error("failed to enqueue process job", "target_task_id", taskID, "error", err)
			continue
		}
		enqueued++
	}

	j.logger.Info("sweep completed", "found", len(ids), "enqueued", enqueued)

	if err := j.recorder.Record(ctx, TypeProcessPending, j.id, Result{
		Status:  "success",
		Message: fmt.Sprintf("enqueued %d of %d incomplete tasks", enqueued, len(ids)),
	}); err != nil {
		j.logger.Warn("failed to record job result", "error", err)
	}

	j.status = StatusCompleted
	return nil
}
