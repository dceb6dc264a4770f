// Package redisjob provides a Redis-backed result backend for background
// jobs. Results are write-only from the application's perspective: nothing
// in the pipeline reads them back, they exist for operator introspection.
package redisjob

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Thinkabouthev/backend-hw2/internal/job"
)

// Recorder stores job results in Redis under keys of the form
// "jobresult:<job_type>:<run_id>" with a fixed TTL.
type Recorder struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecorder creates a Recorder over the given Redis client. A non-positive
// TTL means results never expire.
func NewRecorder(client *redis.Client, ttl time.Duration) *Recorder {
	if client == nil {
		panic("redisjob.NewRecorder: client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Recorder{
		client: client,
		ttl:    ttl,
	}
}

// Record persists the result of a single job run.
func (r *Recorder) Record(ctx context.Context, jobType string, runID uuid.UUID, result job.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	if err := r.client.Set(ctx, resultKey(jobType, runID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job result: %w", err)
	}
	return nil
}

// Load reads back a previously recorded result. Returns redis.Nil wrapped in
// the error when no result exists for the key.
func (r *Recorder) Load(ctx context.Context, jobType string, runID uuid.UUID) (job.Result, error) {
	data, err := r.client.Get(ctx, resultKey(jobType, runID)).Bytes()
	if err != nil {
		return job.Result{}, fmt.Errorf("failed to load job result: %w", err)
	}

	var result job.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return job.Result{}, fmt.Errorf("failed to unmarshal job result: %w", err)
	}
	return result, nil
}

func resultKey(jobType string, runID uuid.UUID) string {
	return "jobresult:" + jobType + ":" + runID.String()
}
