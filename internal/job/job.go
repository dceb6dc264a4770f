// Package job implements the background job layer: a DB-backed runner with a
// bounded in-memory queue, a name-keyed registry of job types, and a periodic
// scheduler that enqueues jobs on fixed intervals.
package job

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents the current state of a job
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job type constants. These are the names the periodic schedule and the
// registry are keyed by; a schedule entry referencing a name not registered
// here fails loudly at startup.
const (
	// TypeFetchExternal fetches a document from the configured external
	// endpoint and inserts it as a new unowned task.
	TypeFetchExternal = "fetch_external_data"

	// TypeCleanupCompleted bulk-deletes completed tasks older than the
	// configured age.
	TypeCleanupCompleted = "cleanup_completed_tasks"

	// TypeProcessPending sweeps incomplete tasks and enqueues one
	// TypeProcessTask job per task.
	TypeProcessPending = "process_pending_tasks"

	// TypeProcessTask processes a single task by ID: appends a processing
	// timestamp to the description and marks the task completed.
	TypeProcessTask = "process_task"

	// TypeSendNotification emits a simulated notification for a task.
	TypeSendNotification = "send_task_notification"
)

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Status returns the current job status
	Status() Status

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// Submitter enqueues jobs for background processing. It is implemented by the
// Runner and consumed by jobs that fan out further work (the pending sweep,
// the per-task processor).
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Store defines the interface for persisting jobs.
type Store interface {
	// SaveJob persists a job to the database
	SaveJob(ctx context.Context, job Job) error

	// UpdateJobStatus updates the status of a job
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status Status, errorMsg string) error

	// GetPendingJobs retrieves all jobs with "pending" status
	GetPendingJobs(ctx context.Context) ([]Job, error)

	// GetProcessingJobs retrieves jobs with "processing" status.
	// If olderThan is non-zero, only returns jobs that have been in this
	// state longer than the specified duration.
	GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Job, error)

	// WithTx returns a new Store instance that uses the provided transaction.
	WithTx(tx *sql.Tx) Store
}

// Result is the structured outcome a job records in the result backend.
// Mirrors the status/message pairs the jobs hand back: consumers can inspect
// it but nothing in the pipeline acts on it.
type Result struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ResultRecorder stores job results for later introspection.
type ResultRecorder interface {
	// Record persists the result of a single job run.
	Record(ctx context.Context, jobType string, runID uuid.UUID, result Result) error
}

// NopRecorder discards all results. Used in tests and when no result backend
// is configured.
type NopRecorder struct{}

// Record implements ResultRecorder.
func (NopRecorder) Record(ctx context.Context, jobType string, runID uuid.UUID, result Result) error {
	return nil
}
