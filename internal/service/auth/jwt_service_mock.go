package auth

import (
	"context"

	"github.com/google/uuid"
)

// MockJWTService is a configurable JWTService implementation for testing.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

// Ensure MockJWTService implements JWTService interface
var _ JWTService = (*MockJWTService)(nil)

// GenerateToken calls the configured function or returns a fixed token.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return "mock-token-" + userID.String(), nil
}

// ValidateToken calls the configured function or rejects the token.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}
