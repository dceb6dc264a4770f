package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	// Create validates the user, hashes the plaintext password, and saves
	// the account. Duplicate emails are reported as ErrEmailExists.
	Create(ctx context.Context, user *domain.User) error

	// GetByID loads an account by ID. The plaintext Password field on the
	// result is always empty. Returns ErrUserNotFound for unknown IDs.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail loads an account by email, including the password hash
	// for credential verification. Returns ErrUserNotFound for unknown
	// emails.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// WithTx rebinds the store to a caller-managed transaction.
	WithTx(tx *sql.Tx) UserStore
}
