package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultStuckCheckInterval = 5 * time.Minute

// RunnerConfig tunes the worker pool.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent workers draining the queue.
	WorkerCount int

	// QueueSize bounds the in-memory queue. Submit fails once it is full.
	QueueSize int

	// StuckJobAge is how long a job may sit in the processing state before
	// the monitor resets it.
	StuckJobAge time.Duration

	// StuckJobCheckInterval is the monitor's polling period. Zero selects
	// the default of five minutes.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns the tuning used when config leaves the job
// section empty.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: defaultStuckCheckInterval,
	}
}

// Runner drains a bounded in-memory queue of persisted jobs with a fixed
// pool of workers. Every queued job also exists as a database row, so a
// restart recovers anything the previous process left unfinished.
type Runner struct {
	store   Store
	queue   chan Job
	runCtx  context.Context
	cancel  context.CancelFunc
	group   sync.WaitGroup
	cfg     RunnerConfig
	log     *slog.Logger
	onError func(j Job, err error)
}

func NewRunner(store Store, cfg RunnerConfig, log *slog.Logger) *Runner {
	if cfg.StuckJobCheckInterval <= 0 {
		cfg.StuckJobCheckInterval = defaultStuckCheckInterval
	}

	runCtx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:  store,
		queue:  make(chan Job, cfg.QueueSize),
		runCtx: runCtx,
		cancel: cancel,
		cfg:    cfg,
		log:    log,
		onError: func(j Job, err error) {
			log.Error("job execution failed",
				"job_id", j.ID(), "job_type", j.Type(), "error", err)
		},
	}
}

// SetErrorHandler replaces the default log-only failure callback.
func (r *Runner) SetErrorHandler(handler func(j Job, err error)) {
	r.onError = handler
}

// Submit persists the job and queues it for execution. The database row is
// the source of truth: if the insert fails nothing is queued, and if the
// queue is full the row stays pending for recovery to pick up later.
func (r *Runner) Submit(ctx context.Context, j Job) error {
	if err := r.store.SaveJob(ctx, j); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	if !r.enqueue(j) {
		return fmt.Errorf("job queue is full, try again later")
	}
	return nil
}

// Start recovers unfinished jobs, then launches the workers and the stuck
// job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.cfg.WorkerCount; i++ {
		r.spawn(func() { r.worker(i) })
	}
	r.spawn(r.stuckJobMonitor)
	return nil
}

// Stop cancels in-flight executions and waits for all workers to exit.
// Jobs interrupted mid-run are marked failed with the cancellation error
// and come back through Recover on the next start.
func (r *Runner) Stop() {
	r.cancel()
	r.group.Wait()
	close(r.queue)
}

// Recover requeues rows left behind by a previous process: pending jobs go
// straight back on the queue, processing jobs are first reset to pending.
func (r *Runner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	// Age zero means every processing row, however fresh: anything still
	// marked processing at startup belongs to a dead process.
	interrupted, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.log.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(interrupted))

	for _, j := range pending {
		if !r.enqueue(j) {
			r.log.Error("queue full during recovery, job stays pending",
				"job_id", j.ID(), "job_type", j.Type())
		}
	}
	for _, j := range interrupted {
		r.resetAndRequeue(ctx, j, "Reset after recovery")
	}
	return nil
}

func (r *Runner) spawn(fn func()) {
	r.group.Add(1)
	go func() {
		defer r.group.Done()
		fn()
	}()
}

// enqueue attempts a non-blocking put. A false return means the queue is
// full; the caller decides whether that is an error or just a log line.
func (r *Runner) enqueue(j Job) bool {
	select {
	case r.queue <- j:
		return true
	default:
		return false
	}
}

// resetAndRequeue flips a processing row back to pending and queues it.
// Shared by recovery and the stuck-job monitor, which differ only in the
// reason they record.
func (r *Runner) resetAndRequeue(ctx context.Context, j Job, reason string) {
	if err := r.store.UpdateJobStatus(ctx, j.ID(), StatusPending, reason); err != nil {
		r.log.Error("failed to reset job to pending",
			"job_id", j.ID(), "job_type", j.Type(), "error", err)
		return
	}
	if !r.enqueue(j) {
		r.log.Error("queue full, reset job stays pending",
			"job_id", j.ID(), "job_type", j.Type())
	}
}

func (r *Runner) worker(id int) {
	log := r.log.With("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-r.runCtx.Done():
			log.Debug("worker stopping")
			return
		case j, ok := <-r.queue:
			if !ok {
				return
			}
			r.runJob(j, log)
		}
	}
}

// runJob executes one job. The job itself runs under the runner's lifecycle
// context so Stop cancels it; status writes use a detached context so the
// final state still lands when the job was cancelled by shutdown.
func (r *Runner) runJob(j Job, log *slog.Logger) {
	bookkeep := context.Background()
	log = log.With("job_id", j.ID(), "job_type", j.Type())

	if err := r.store.UpdateJobStatus(bookkeep, j.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to mark job processing", "error", err)
		return
	}

	log.Info("processing job")

	if err := j.Execute(r.runCtx); err != nil {
		log.Error("job execution failed", "error", err)
		if updateErr := r.store.UpdateJobStatus(bookkeep, j.ID(), StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark job failed", "error", updateErr)
		}
		r.onError(j, err)
		return
	}

	log.Info("job completed")
	if err := r.store.UpdateJobStatus(bookkeep, j.ID(), StatusCompleted, ""); err != nil {
		log.Error("failed to mark job completed", "error", err)
	}
}

// stuckJobMonitor periodically resets jobs that have sat in the processing
// state longer than StuckJobAge, which catches executions lost to worker
// panics recovered elsewhere or rows orphaned by other instances.
func (r *Runner) stuckJobMonitor() {
	ticker := time.NewTicker(r.cfg.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.runCtx.Done():
			return
		case <-ticker.C:
			r.sweepStuckJobs()
		}
	}
}

func (r *Runner) sweepStuckJobs() {
	ctx := context.Background()

	stuck, err := r.store.GetProcessingJobs(ctx, r.cfg.StuckJobAge)
	if err != nil {
		r.log.Error("failed to check for stuck jobs", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.log.Info("resetting stuck jobs", "count", len(stuck))
	for _, j := range stuck {
		r.resetAndRequeue(ctx, j, "Reset after being stuck in processing state")
	}
}
