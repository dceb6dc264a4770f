package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/google/uuid"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task by ID, locking the row for the
	// duration of the surrounding transaction. Must be called on a store
	// bound to a transaction via WithTx.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByOwner retrieves the owner's tasks in creation order,
	// applying the given offset and limit.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*domain.Task, error)

	// Update overwrites the mutable fields (title, description, completed)
	// of an existing task. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListIncompleteIDs retrieves the IDs of tasks that have not been
	// completed yet, up to the given limit, oldest first.
	ListIncompleteIDs(ctx context.Context, limit int) ([]uuid.UUID, error)

	// DeleteCompletedBefore bulk-deletes completed tasks created before the
	// cutoff and returns the IDs of the deleted rows.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
