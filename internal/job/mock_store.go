package job

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory implementation of the Store interface for testing
type MockStore struct {
	mu       sync.Mutex
	jobs     map[uuid.UUID]Job
	statuses map[uuid.UUID]Status
	errors   map[uuid.UUID]string

	// SaveJobErr, when set, is returned by SaveJob to simulate failures
	SaveJobErr error
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		jobs:     make(map[uuid.UUID]Job),
		statuses: make(map[uuid.UUID]Status),
		errors:   make(map[uuid.UUID]string),
	}
}

// SaveJob persists a job in memory
func (s *MockStore) SaveJob(ctx context.Context, job Job) error {
	if s.SaveJobErr != nil {
		return s.SaveJobErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID()] = job
	s.statuses[job.ID()] = job.Status()
	return nil
}

// UpdateJobStatus updates the recorded status of a job
func (s *MockStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status Status, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[jobID] = status
	s.errors[jobID] = errorMsg
	return nil
}

// GetPendingJobs returns jobs currently recorded as pending
func (s *MockStore) GetPendingJobs(ctx context.Context) ([]Job, error) {
	return s.jobsWithStatus(StatusPending), nil
}

// GetProcessingJobs returns jobs currently recorded as processing
func (s *MockStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]Job, error) {
	return s.jobsWithStatus(StatusProcessing), nil
}

// WithTx returns the store itself; the mock has no transaction support
func (s *MockStore) WithTx(tx *sql.Tx) Store {
	return s
}

// JobStatus returns the recorded status for a job
func (s *MockStore) JobStatus(jobID uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[jobID]
}

// JobError returns the recorded error message for a job
func (s *MockStore) JobError(jobID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[jobID]
}

func (s *MockStore) jobsWithStatus(status Status) []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []Job
	for id, job := range s.jobs {
		if s.statuses[id] == status {
			result = append(result, job)
		}
	}
	return result
}
