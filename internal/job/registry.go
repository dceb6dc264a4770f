package job

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Registry errors
var (
	// ErrUnknownJobType indicates a job type name with no registered factory.
	ErrUnknownJobType = errors.New("unknown job type")

	// ErrDuplicateJobType indicates two factories registered under one name.
	ErrDuplicateJobType = errors.New("job type already registered")

	// ErrNilFactory indicates a nil factory function was registered.
	ErrNilFactory = errors.New("job factory cannot be nil")
)

// Factory constructs a runnable job of one type from a persisted payload.
// A fresh run ID is assigned by the registry; factories only interpret the
// payload and bind dependencies.
type Factory func(id uuid.UUID, payload []byte) (Job, error)

// Registry maps job type names to factories. The scheduler validates its
// entries against the registry at startup, and the runner uses it to
// rehydrate persisted jobs during recovery.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register binds a factory to a job type name. Registering the same name
// twice is a programming error and is rejected rather than silently
// overwritten.
func (r *Registry) Register(jobType string, factory Factory) error {
	if jobType == "" {
		return errors.New("job type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("%w: %s", ErrNilFactory, jobType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[jobType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJobType, jobType)
	}
	r.factories[jobType] = factory
	return nil
}

// MustRegister is Register for wiring code where a failure is fatal.
func (r *Registry) MustRegister(jobType string, factory Factory) {
	if err := r.Register(jobType, factory); err != nil {
		panic(err)
	}
}

// Has reports whether a factory is registered for the given job type.
func (r *Registry) Has(jobType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[jobType]
	return ok
}

// Types returns the registered job type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New constructs a fresh job of the given type with a new run ID.
func (r *Registry) New(jobType string, payload []byte) (Job, error) {
	return r.Rehydrate(jobType, uuid.New(), payload)
}

// Rehydrate reconstructs a job from its persisted type, ID and payload.
// Used by the runner when re-queuing jobs found in the database on startup.
func (r *Registry) Rehydrate(jobType string, id uuid.UUID, payload []byte) (Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[jobType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
	return factory(id, payload)
}
