package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// CleanupCompletedTasksJob bulk-deletes completed tasks older than the
// configured age. The cutoff is computed at execution time, one DELETE
// statement does the work, and the IDs of the removed rows are recorded in
// the result backend.
type CleanupCompletedTasksJob struct {
	id        uuid.UUID
	taskStore store.TaskStore
	maxAge    time.Duration
	recorder  ResultRecorder
	logger    *slog.Logger
	now       func() time.Time
	status    Status
}

// NewCleanupCompletedTasksJob creates a cleanup job deleting completed tasks
// created more than maxAge ago.
func NewCleanupCompletedTasksJob(
	id uuid.UUID,
	taskStore store.TaskStore,
	maxAge time.Duration,
	recorder ResultRecorder,
	logger *slog.Logger,
) (*CleanupCompletedTasksJob, error) {
	if taskStore == nil {
		return nil, ErrNilTaskStore
	}
	if recorder == nil {
		return nil, ErrNilRecorder
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("cleanup age must be positive, got %v", maxAge)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &CleanupCompletedTasksJob{
		id:        id,
		taskStore: taskStore,
		maxAge:    maxAge,
		recorder:  recorder,
		logger:    logger.With("job_type", TypeCleanupCompleted),
		now:       time.Now,
		status:    StatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (j *CleanupCompletedTasksJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *CleanupCompletedTasksJob) Type() string {
	return TypeCleanupCompleted
}

// Payload returns the job data as a byte slice
func (j *CleanupCompletedTasksJob) Payload() []byte {
	return []byte{}
}

// Status returns the current job status
func (j *CleanupCompletedTasksJob) Status() Status {
	return j.status
}

// Execute deletes completed tasks older than the cutoff.
func (j *CleanupCompletedTasksJob) Execute(ctx context.Context) error {
	j.status = StatusProcessing

	cutoff := j.now().Add(-j.maxAge)
	j.logger.Info("cleaning up completed tasks", "cutoff", cutoff)

	deletedIDs, err := j.taskStore.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		j.status = StatusFailed
		return fmt.Errorf("failed to delete completed tasks: %w", err)
	}

	ids := make([]string, len(deletedIDs))
	for i, id := range deletedIDs {
		ids[i] = id.String()
	}

	j.logger.Info("cleanup completed", "deleted_count", len(deletedIDs))
	j.record(ctx, Result{
		Status:  "success",
		Message: fmt.Sprintf("deleted %d old completed tasks", len(deletedIDs)),
		Details: map[string]any{"deleted_ids": ids},
	})
	j.status = StatusCompleted
	return nil
}

func (j *CleanupCompletedTasksJob) record(ctx context.Context, result Result) {
	if err := j.recorder.Record(ctx, TypeCleanupCompleted, j.id, result); err != nil {
		j.logger.Warn("failed to record job result", "error", err)
	}
}
