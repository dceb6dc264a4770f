package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/job"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/logger"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// PostgresJobStore implements the job.Store interface using PostgreSQL.
// Jobs loaded from the database are rehydrated into executable jobs through
// the registry; rows with a type the registry does not know are returned as
// inert records so recovery can report them instead of dropping them.
type PostgresJobStore struct {
	db       store.DBTX
	registry *job.Registry
}

// NewPostgresJobStore creates a new PostgresJobStore. The registry may be
// nil, in which case loaded jobs are never executable.
func NewPostgresJobStore(db store.DBTX, registry *job.Registry) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresJobStore{
		db:       db,
		registry: registry,
	}
}

// SetRegistry binds the registry used for rehydration. Wiring constructs the
// store before the registry (the registry's factories submit through the
// runner, which needs the store), so the registry arrives late.
func (s *PostgresJobStore) SetRegistry(registry *job.Registry) {
	s.registry = registry
}

// SaveJob persists a job to the database
func (s *PostgresJobStore) SaveJob(ctx context.Context, j job.Job) error {
	log := logger.FromContextOrDefault(ctx, nil)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		j.Status(),
		now,
		now,
	)

	if err != nil {
		log.Error("failed to save job",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"error", err)
		return fmt.Errorf("failed to save job to database: %w", err)
	}

	return nil
}

// UpdateJobStatus updates the status of a job in the database
func (s *PostgresJobStore) UpdateJobStatus(
	ctx context.Context,
	jobID uuid.UUID,
	status job.Status,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, nil)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query,
		status,
		errorMsg,
		now,
		jobID,
	)

	if err != nil {
		log.Error("failed to update job status",
			"job_id", jobID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Warn("no job found with ID to update status", "job_id", jobID)
		return nil // Job not found, treat as no-op
	}

	return nil
}

// GetPendingJobs retrieves all jobs with "pending" status
func (s *PostgresJobStore) GetPendingJobs(ctx context.Context) ([]job.Job, error) {
	return s.getJobsByStatus(ctx, job.StatusPending, 0)
}

// GetProcessingJobs retrieves jobs with "processing" status
func (s *PostgresJobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]job.Job, error) {
	return s.getJobsByStatus(ctx, job.StatusProcessing, olderThan)
}

// WithTx returns a new job.Store that uses the provided transaction
func (s *PostgresJobStore) WithTx(tx *sql.Tx) job.Store {
	return &PostgresJobStore{
		db:       tx,
		registry: s.registry,
	}
}

// getJobsByStatus is a helper method to get jobs by status with optional age filter
func (s *PostgresJobStore) getJobsByStatus(
	ctx context.Context,
	status job.Status,
	olderThan time.Duration,
) ([]job.Job, error) {
	log := logger.FromContextOrDefault(ctx, nil)

	var query string
	var args []interface{}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = []interface{}{status, time.Now().UTC().Add(-olderThan)}
	} else {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1
			ORDER BY created_at ASC
		`
		args = []interface{}{status}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer closeRows(rows, log)

	var jobs []job.Job

	for rows.Next() {
		var id uuid.UUID
		var jobType string
		var payload []byte
		var jobStatus job.Status
		var errorMessage sql.NullString
		var createdAt time.Time
		var updatedAt time.Time

		if err := rows.Scan(&id, &jobType, &payload, &jobStatus, &errorMessage, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}

		jobs = append(jobs, s.rehydrate(ctx, id, jobType, payload, jobStatus, errorMessage.String))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return jobs, nil
}

// rehydrate turns a database row back into an executable job via the
// registry. On failure it returns an inert databaseJob whose Execute reports
// the problem, so the runner marks the row failed instead of losing it.
func (s *PostgresJobStore) rehydrate(
	ctx context.Context,
	id uuid.UUID,
	jobType string,
	payload []byte,
	status job.Status,
	errorMessage string,
) job.Job {
	log := logger.FromContextOrDefault(ctx, nil)

	if s.registry != nil {
		j, err := s.registry.Rehydrate(jobType, id, payload)
		if err == nil {
			return j
		}
		log.Warn("failed to rehydrate job from registry",
			"job_id", id,
			"job_type", jobType,
			"error", err)
	}

	return &databaseJob{
		id:           id,
		jobType:      jobType,
		payload:      payload,
		status:       status,
		errorMessage: errorMessage,
	}
}

// databaseJob is an inert record for jobs that could not be rehydrated.
type databaseJob struct {
	id           uuid.UUID
	jobType      string
	payload      []byte
	status       job.Status
	errorMessage string
}

// ID returns the job's unique identifier
func (j *databaseJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *databaseJob) Type() string {
	return j.jobType
}

// Payload returns the job data as a byte slice
func (j *databaseJob) Payload() []byte {
	return j.payload
}

// Status returns the current job status
func (j *databaseJob) Status() job.Status {
	return j.status
}

// Execute always fails: an inert job carries no behavior.
func (j *databaseJob) Execute(ctx context.Context) error {
	return fmt.Errorf("job type %q is not registered and cannot be executed", j.jobType)
}
