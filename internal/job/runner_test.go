package job

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             10,
		StuckJobAge:           time.Minute,
		StuckJobCheckInterval: time.Hour, // keep the monitor quiet during tests
	}
}

// waitForStatus polls the store until the job reaches the wanted status or
// the deadline passes.
func waitForStatus(t *testing.T, store *MockStore, jobID uuid.UUID, want Status) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if store.JobStatus(jobID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q (last: %q)", jobID, want, store.JobStatus(jobID))
}

func TestRunnerExecutesSubmittedJob(t *testing.T) {
	store := NewMockStore()
	runner := NewRunner(store, testRunnerConfig(), testLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	executed := make(chan struct{})
	job := NewMockJob(uuid.New(), "test_job", nil)
	job.ExecuteFn = func(ctx context.Context) error {
		close(executed)
		return nil
	}

	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("job was never executed")
	}

	waitForStatus(t, store, job.ID(), StatusCompleted)
	assert.Empty(t, store.JobError(job.ID()))
}

func TestRunnerMarksFailedJob(t *testing.T) {
	store := NewMockStore()
	runner := NewRunner(store, testRunnerConfig(), testLogger())

	var handlerCalls int
	var mu sync.Mutex
	runner.SetErrorHandler(func(job Job, err error) {
		mu.Lock()
		handlerCalls++
		mu.Unlock()
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	job := NewMockJob(uuid.New(), "failing_job", nil)
	job.ExecuteFn = func(ctx context.Context) error {
		return errors.New("boom")
	}

	require.NoError(t, runner.Submit(context.Background(), job))
	waitForStatus(t, store, job.ID(), StatusFailed)
	assert.Equal(t, "boom", store.JobError(job.ID()))

	mu.Lock()
	assert.Equal(t, 1, handlerCalls)
	mu.Unlock()
}

func TestRunnerSubmitPersistsBeforeQueueing(t *testing.T) {
	store := NewMockStore()
	store.SaveJobErr = errors.New("db down")
	runner := NewRunner(store, testRunnerConfig(), testLogger())

	err := runner.Submit(context.Background(), NewMockJob(uuid.New(), "test_job", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save job")
}

func TestRunnerSubmitQueueFull(t *testing.T) {
	store := NewMockStore()
	cfg := testRunnerConfig()
	cfg.QueueSize = 1
	// Runner deliberately not started: nothing drains the queue.
	runner := NewRunner(store, cfg, testLogger())

	require.NoError(t, runner.Submit(context.Background(), NewMockJob(uuid.New(), "test_job", nil)))

	err := runner.Submit(context.Background(), NewMockJob(uuid.New(), "test_job", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestRunnerRecoverRequeuesUnfinishedJobs(t *testing.T) {
	store := NewMockStore()

	pendingDone := make(chan struct{})
	pending := NewMockJob(uuid.New(), "pending_job", nil)
	pending.ExecuteFn = func(ctx context.Context) error {
		close(pendingDone)
		return nil
	}
	require.NoError(t, store.SaveJob(context.Background(), pending))

	interruptedDone := make(chan struct{})
	interrupted := NewMockJob(uuid.New(), "interrupted_job", nil)
	interrupted.ExecuteFn = func(ctx context.Context) error {
		close(interruptedDone)
		return nil
	}
	require.NoError(t, store.SaveJob(context.Background(), interrupted))
	require.NoError(t,
		store.UpdateJobStatus(context.Background(), interrupted.ID(), StatusProcessing, ""))

	runner := NewRunner(store, testRunnerConfig(), testLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	for name, done := range map[string]chan struct{}{
		"pending": pendingDone, "interrupted": interruptedDone,
	} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("%s job was not re-executed after recovery", name)
		}
	}

	waitForStatus(t, store, pending.ID(), StatusCompleted)
	waitForStatus(t, store, interrupted.ID(), StatusCompleted)
}

func TestRunnerStopCancelsRunningJob(t *testing.T) {
	store := NewMockStore()
	runner := NewRunner(store, testRunnerConfig(), testLogger())
	require.NoError(t, runner.Start())

	started := make(chan struct{})
	job := NewMockJob(uuid.New(), "long_job", nil)
	job.ExecuteFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}

	runner.Stop()

	// The execution context is cancelled by Stop, but the final status
	// write still lands.
	assert.Equal(t, StatusFailed, store.JobStatus(job.ID()))
	assert.Equal(t, context.Canceled.Error(), store.JobError(job.ID()))
}

func TestRunnerStopDrainsWorkers(t *testing.T) {
	store := NewMockStore()
	runner := NewRunner(store, testRunnerConfig(), testLogger())
	require.NoError(t, runner.Start())

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
