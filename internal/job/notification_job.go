package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// notificationPayload represents the serialized data stored in the job
type notificationPayload struct {
	TaskID uuid.UUID `json:"task_id"`
}

// SendNotificationJob simulates dispatching a notification for a task. No
// external delivery channel exists; the job loads the task, sleeps briefly
// to stand in for the send, and records what would have been delivered.
type SendNotificationJob struct {
	id        uuid.UUID
	taskID    uuid.UUID
	taskStore store.TaskStore
	recorder  ResultRecorder
	logger    *slog.Logger
	delay     time.Duration
	now       func() time.Time
	status    Status
}

// NewSendNotificationJob creates a notification job for the given task.
func NewSendNotificationJob(
	id uuid.UUID,
	taskID uuid.UUID,
	taskStore store.TaskStore,
	recorder ResultRecorder,
	logger *slog.Logger,
) (*SendNotificationJob, error) {
	if taskStore == nil {
		return nil, ErrNilTaskStore
	}
	if recorder == nil {
		return nil, ErrNilRecorder
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

	return &SendNotificationJob{
		id:        id,
		taskID:    taskID,
		taskStore: taskStore,
		recorder:  recorder,
		logger:    logger.With("job_type", TypeSendNotification, "target_task_id", taskID),
		delay:     2 * time.Second,
		now:       time.Now,
		status:    StatusPending,
	}, nil
}

// NewSendNotificationJobFromPayload reconstructs a notification job from a
// persisted payload. Used by the registry factory.
func NewSendNotificationJobFromPayload(
	id uuid.UUID,
	payload []byte,
	taskStore store.TaskStore,
	recorder ResultRecorder,
	logger *slog.Logger,
) (*SendNotificationJob, error) {
	var p notificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
	}
	return NewSendNotificationJob(id, p.TaskID, taskStore, recorder, logger)
}

// ID returns the job's unique identifier
func (j *SendNotificationJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *SendNotificationJob) Type() string {
	return TypeSendNotification
}

// Payload returns the job data as a byte slice
func (j *SendNotificationJob) Payload() []byte {
	data, err := json.Marshal(notificationPayload{TaskID: j.taskID})
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current job status
func (j *SendNotificationJob) Status() Status {
	return j.status
}

// Execute simulates the notification send. A task deleted between enqueue
// and execution is recorded as an error result, not a job failure: there is
// nothing left to notify about and a retry cannot change that.
func (j *SendNotificationJob) Execute(ctx context.Context) error {
	j.status = StatusProcessing
	j.logger.Info("sending notification")

	task, err := j.taskStore.GetByID(ctx, j.taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			j.logger.Warn("notification target no longer exists")
			j.record(ctx, Result{
				Status:  "error",
				Message: fmt.Sprintf("Task %s not found", j.taskID),
			})
			j.status = StatusCompleted
			return nil
		}
		j.status = StatusFailed
		return fmt.Errorf("failed to load task for notification: %w", err)
	}

	select {
	case <-time.After(j.delay):
	case <-ctx.Done():
		j.status = StatusFailed
		return fmt.Errorf("job cancelled by context: %w", ctx.Err())
	}

	taskStatus := "pending"
	if task.Completed {
		taskStatus = "completed"
	}

	j.logger.Info("notification sent", "task_status", taskStatus)
	j.record(ctx, Result{
		Status:  "success",
		Message: fmt.Sprintf("Notification sent for task %s", j.taskID),
		Details: map[string]any{
			"task_id":   task.ID.String(),
			"title":     task.Title,
			"status":    taskStatus,
			"timestamp": j.now().UTC().Format(time.RFC3339),
		},
	})

	j.status = StatusCompleted
	return nil
}

func (j *SendNotificationJob) record(ctx context.Context, result Result) {
	if err := j.recorder.Record(ctx, TypeSendNotification, j.id, result); err != nil {
		j.logger.Warn("failed to record job result", "error", err)
	}
}
