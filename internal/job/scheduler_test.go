package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSubmitter captures every submitted job.
type recordingSubmitter struct {
	mu   sync.Mutex
	jobs []Job
}

func (s *recordingSubmitter) Submit(ctx context.Context, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *recordingSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *recordingSubmitter) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]string, 0, len(s.jobs))
	for _, j := range s.jobs {
		types = append(types, j.Type())
	}
	return types
}

func newTestRegistry(t *testing.T, jobTypes ...string) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, jt := range jobTypes {
		require.NoError(t, r.Register(jt, mockFactory(jt)))
	}
	return r
}

func TestSchedulerValidate(t *testing.T) {
	registry := newTestRegistry(t, "known_type")

	t.Run("valid schedule", func(t *testing.T) {
		s := NewScheduler(registry, &recordingSubmitter{}, testLogger())
		s.Add(ScheduleEntry{Name: "hourly", JobType: "known_type", Interval: time.Hour})
		assert.NoError(t, s.Validate())
	})

	t.Run("unregistered job type", func(t *testing.T) {
		s := NewScheduler(registry, &recordingSubmitter{}, testLogger())
		s.Add(ScheduleEntry{Name: "bad", JobType: "no_such_type", Interval: time.Hour})
		err := s.Validate()
		require.ErrorIs(t, err, ErrScheduleInvalid)
		assert.Contains(t, err.Error(), "no_such_type")
	})

	t.Run("all problems reported at once", func(t *testing.T) {
		s := NewScheduler(registry, &recordingSubmitter{}, testLogger())
		s.Add(ScheduleEntry{Name: "dup", JobType: "known_type", Interval: time.Hour})
		s.Add(ScheduleEntry{Name: "dup", JobType: "known_type", Interval: time.Hour})
		s.Add(ScheduleEntry{Name: "frozen", JobType: "known_type", Interval: 0})
		s.Add(ScheduleEntry{Name: "ghost", JobType: "no_such_type", Interval: time.Hour})

		err := s.Validate()
		require.ErrorIs(t, err, ErrScheduleInvalid)
		assert.Contains(t, err.Error(), `duplicate entry name "dup"`)
		assert.Contains(t, err.Error(), `entry "frozen" has non-positive interval`)
		assert.Contains(t, err.Error(), `entry "ghost" references unregistered job type`)
	})
}

func TestSchedulerStartFailsOnInvalidSchedule(t *testing.T) {
	registry := newTestRegistry(t)
	submitter := &recordingSubmitter{}

	s := NewScheduler(registry, submitter, testLogger())
	s.Add(ScheduleEntry{Name: "ghost", JobType: "no_such_type", Interval: time.Millisecond})

	err := s.Start()
	require.ErrorIs(t, err, ErrScheduleInvalid)

	// No ticker may have started.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, submitter.count())
}

func TestSchedulerSubmitsOnInterval(t *testing.T) {
	registry := newTestRegistry(t, "tick_type")
	submitter := &recordingSubmitter{}

	s := NewScheduler(registry, submitter, testLogger())
	s.Add(ScheduleEntry{Name: "fast", JobType: "tick_type", Interval: 10 * time.Millisecond})
	require.NoError(t, s.Start())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for submitter.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.GreaterOrEqual(t, submitter.count(), 2, "expected at least two submissions")

	for _, jt := range submitter.types() {
		assert.Equal(t, "tick_type", jt)
	}

	// Each run gets its own ID.
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, j := range submitter.jobs {
		assert.False(t, seen[j.ID()], "job IDs must be unique per run")
		seen[j.ID()] = true
	}
}

func TestSchedulerStopHaltsSubmissions(t *testing.T) {
	registry := newTestRegistry(t, "tick_type")
	submitter := &recordingSubmitter{}

	s := NewScheduler(registry, submitter, testLogger())
	s.Add(ScheduleEntry{Name: "fast", JobType: "tick_type", Interval: 10 * time.Millisecond})
	require.NoError(t, s.Start())

	time.Sleep(30 * time.Millisecond)
	s.Stop()

	countAfterStop := submitter.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, countAfterStop, submitter.count(), "no submissions after Stop")
}
