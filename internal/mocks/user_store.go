package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)

	// Data for the default in-memory implementation, keyed by email
	Users map[string]*domain.User

	CreateError error
}

// NewMockUserStore creates a new mock store with initialized defaults.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}

	m.Users[user.Email] = user
	return nil
}

// GetByID implements the UserStore interface.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	user, exists := m.Users[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// WithTx implements the UserStore interface. The mock has no transactional
// behavior, so it returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
