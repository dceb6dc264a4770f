package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// processTaskPayload represents the serialized data stored in the job
type processTaskPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// ProcessTaskJob processes a single task: it appends a processing timestamp
// to the description and marks the task completed.
//
// The read-modify-write runs inside one transaction with the task row locked
// (SELECT ... FOR UPDATE), so a concurrent cleanup delete cannot interleave
// with the update. A task deleted before the job runs is skipped, not failed.
type ProcessTaskJob struct {
	id        uuid.UUID
	taskID    uuid.UUID
	db        *sql.DB
	taskStore store.TaskStore
	recorder  ResultRecorder
	submitter Submitter
	logger    *slog.Logger
	now       func() time.Time
	status    Status
}

// NewProcessTaskJob creates a processing job for the given task.
func NewProcessTaskJob(
	id uuid.UUID,
	taskID uuid.UUID,
	db *sql.DB,
	taskStore store.TaskStore,
	recorder ResultRecorder,
	submitter Submitter,
	logger *slog.Logger,
) (*ProcessTaskJob, error) {
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
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &ProcessTaskJob{
		id:        id,
		taskID:    taskID,
		db:        db,
		taskStore: taskStore,
		recorder:  recorder,
		submitter: submitter,
		logger:    logger.With("job_type", TypeProcessTask, "target_task_id", taskID),
		now:       time.Now,
		status:    StatusPending,
	}, nil
}

// NewProcessTaskJobFromPayload reconstructs a processing job from a
// persisted payload. Used by the registry factory.
func NewProcessTaskJobFromPayload(
	id uuid.UUID,
	payload []byte,
	db *sql.DB,
	taskStore store.TaskStore,
	recorder ResultRecorder,
	submitter Submitter,
	logger *slog.Logger,
) (*ProcessTaskJob, error) {
	var p processTaskPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process task payload: %w", err)
	}
	return NewProcessTaskJob(id, p.TaskID, db, taskStore, recorder, submitter, logger)
}

// ID returns the job's unique identifier
func (j *ProcessTaskJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *ProcessTaskJob) Type() string {
	return TypeProcessTask
}

// Payload returns the job data as a byte slice
func (j *ProcessTaskJob) Payload() []byte {
	data, err := json.Marshal(processTaskPayload{TaskID: j.taskID})
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current job status
func (j *ProcessTaskJob) Status() Status {
	return j.status
}

// Execute processes the task inside a row-locking transaction and, on
// success, enqueues a notification job for the task.
func (j *ProcessTaskJob) Execute(ctx context.Context) error {
	j.status = StatusProcessing
	j.logger.Info("processing task")

	if err := ctx.Err(); err != nil {
		j.status = StatusFailed
		return fmt.Errorf("job cancelled by context: %w", err)
	}

	var processedAt time.Time
	err := store.RunInTransaction(ctx, j.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := j.taskStore.WithTx(tx)

		task, err := txStore.GetByIDForUpdate(ctx, j.taskID)
		if err != nil {
			return err
		}

		processedAt = j.now().UTC()
		task.MarkProcessed(processedAt)

		return txStore.Update(ctx, task)
	})

	if errors.Is(err, store.ErrTaskNotFound) {
		// Deleted between enqueue and execution (cleanup or the owner).
		// Nothing left to process.
		j.logger.Info("task no longer exists, skipping")
		j.record(ctx, Result{
			Status:  "skipped",
			Message: fmt.Sprintf("task %s not found", j.taskID),
		})
		j.status = StatusCompleted
		return nil
	}
	if err != nil {
		j.status = StatusFailed
		j.record(ctx, Result{Status: "error", Message: err.Error()})
		return fmt.Errorf("failed to process task %s: %w", j.taskID, err)
	}

	j.logger.Info("task processed", "processed_at", processedAt)
	j.record(ctx, Result{
		Status:  "success",
		Message: fmt.Sprintf("task %s processed", j.taskID),
		Details: map[string]any{"processed_at": processedAt.Format(time.RFC3339)},
	})

	// Fan out the notification. Failure to enqueue does not fail the
	// processing job; the task itself is already updated.
	notification, err := NewSendNotificationJob(uuid.Nil, j.taskID, j.taskStore, j.recorder, j.logger)
	if err != nil {
		j.logger.Error("failed to build notification job", "error", err)
	} else if err := j.submitter.Submit(ctx, notification); err != nil {
		j.logger.Error("failed to enqueue notification job", "error", err)
	}

	j.status = StatusCompleted
	return nil
}

func (j *ProcessTaskJob) record(ctx context.Context, result Result) {
	if err := j.recorder.Record(ctx, TypeProcessTask, j.id, result); err != nil {
		j.logger.Warn("failed to record job result", "error", err)
	}
}
