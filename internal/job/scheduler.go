package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Scheduler errors
var (
	// ErrScheduleInvalid indicates the periodic schedule failed validation.
	ErrScheduleInvalid = errors.New("invalid periodic schedule")
)

// ScheduleEntry describes one periodic job: every Interval, a fresh job of
// JobType is constructed from the registry and submitted to the runner.
type ScheduleEntry struct {
	// Name identifies the entry in logs and validation errors.
	Name string

	// JobType is the registered job type to enqueue. Startup fails if no
	// factory is registered under this name.
	JobType string

	// Interval is the period between submissions.
	Interval time.Duration
}

// Scheduler enqueues registered jobs on fixed intervals. Every schedule
// entry is validated against the registry before any ticker starts, so a
// schedule referencing an unregistered job type is a startup error rather
// than a silently dead entry.
type Scheduler struct {
	registry   *Registry
	submitter  Submitter
	entries    []ScheduleEntry
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewScheduler creates a scheduler over the given registry and submitter.
func NewScheduler(registry *Registry, submitter Submitter, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		registry:   registry,
		submitter:  submitter,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With("component", "scheduler"),
	}
}

// Add appends an entry to the schedule. Entries are validated in Start.
func (s *Scheduler) Add(entry ScheduleEntry) {
	s.entries = append(s.entries, entry)
}

// Validate checks every schedule entry against the registry. It returns an
// error naming each defective entry rather than stopping at the first one.
func (s *Scheduler) Validate() error {
	var problems []string
	seen := make(map[string]bool, len(s.entries))

	for _, entry := range s.entries {
		if entry.Name == "" {
			problems = append(problems, "entry with empty name")
			continue
		}
		if seen[entry.Name] {
			problems = append(problems, fmt.Sprintf("duplicate entry name %q", entry.Name))
		}
		seen[entry.Name] = true

		if entry.Interval <= 0 {
			problems = append(problems, fmt.Sprintf("entry %q has non-positive interval", entry.Name))
		}
		if !s.registry.Has(entry.JobType) {
			problems = append(problems,
				fmt.Sprintf("entry %q references unregistered job type %q", entry.Name, entry.JobType))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrScheduleInvalid, problems)
	}
	return nil
}

// Start validates the schedule and launches one ticker goroutine per entry.
func (s *Scheduler) Start() error {
	if err := s.Validate(); err != nil {
		return err
	}

	for _, entry := range s.entries {
		s.wg.Add(1)
		go s.run(entry)
	}

	s.logger.Info("scheduler started",
		"entry_count", len(s.entries),
		"job_types", s.registry.Types())
	return nil
}

// Stop cancels all ticker goroutines and waits for them to exit.
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

// run drives a single schedule entry until the scheduler is stopped.
func (s *Scheduler) run(entry ScheduleEntry) {
	defer s.wg.Done()

	logger := s.logger.With("entry", entry.Name, "job_type", entry.JobType)
	logger.Debug("schedule entry started", "interval", entry.Interval)

	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			logger.Debug("schedule entry stopped")
			return

		case <-ticker.C:
			job, err := s.registry.New(entry.JobType, nil)
			if err != nil {
				// Cannot happen after Validate, but a registry mutation
				// between ticks would surface here.
				logger.Error("failed to construct scheduled job", "error", err)
				continue
			}

			if err := s.submitter.Submit(s.ctx, job); err != nil {
				logger.Error("failed to submit scheduled job", "error", err)
				continue
			}

			logger.Info("scheduled job submitted", "job_id", job.ID())
		}
	}
}
