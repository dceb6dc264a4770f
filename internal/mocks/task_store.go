package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. The default
// implementation is an in-memory map guarded by a mutex so job tests can
// exercise it from worker goroutines.
type MockTaskStore struct {
	CreateFn                func(ctx context.Context, task *domain.Task) error
	GetByIDFn               func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	GetByIDForUpdateFn      func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByOwnerFn           func(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Task, error)
	UpdateFn                func(ctx context.Context, task *domain.Task) error
	DeleteFn                func(ctx context.Context, id uuid.UUID) error
	ListIncompleteIDsFn     func(ctx context.Context, limit int) ([]uuid.UUID, error)
	DeleteCompletedBeforeFn func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	mu    sync.Mutex
	Tasks map[uuid.UUID]*domain.Task

	CreateError error
	UpdateError error
}

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, exists := m.Tasks[id]
	if !exists {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// GetByIDForUpdate implements the TaskStore interface. The mock has no row
// locking; it behaves like GetByID unless overridden.
func (m *MockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

// ListByOwner implements the TaskStore interface.
func (m *MockTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, offset, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var owned []*domain.Task
	for _, task := range m.Tasks {
		if task.OwnedBy(ownerID) {
			copied := *task
			owned = append(owned, &copied)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if m.UpdateError != nil {
		return m.UpdateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Tasks[task.ID]; !exists {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Tasks[id]; !exists {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// ListIncompleteIDs implements the TaskStore interface.
func (m *MockTaskStore) ListIncompleteIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if m.ListIncompleteIDsFn != nil {
		return m.ListIncompleteIDsFn(ctx, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var incomplete []*domain.Task
	for _, task := range m.Tasks {
		if !task.Completed {
			incomplete = append(incomplete, task)
		}
	}
	sort.Slice(incomplete, func(i, j int) bool {
		return incomplete[i].CreatedAt.Before(incomplete[j].CreatedAt)
	})

	ids := make([]uuid.UUID, 0, len(incomplete))
	for _, task := range incomplete {
		if len(ids) == limit {
			break
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}

// DeleteCompletedBefore implements the TaskStore interface.
func (m *MockTaskStore) DeleteCompletedBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]uuid.UUID, error) {
	if m.DeleteCompletedBeforeFn != nil {
		return m.DeleteCompletedBeforeFn(ctx, cutoff)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted []uuid.UUID
	for id, task := range m.Tasks {
		if task.Completed && task.CreatedAt.Before(cutoff) {
			deleted = append(deleted, id)
			delete(m.Tasks, id)
		}
	}
	return deleted, nil
}

// WithTx implements the TaskStore interface. The mock has no transactional
// behavior, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
