package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and verifies the bearer tokens used by the API.
type JWTService interface {
	// GenerateToken signs a new access token for the given user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken parses and verifies a token string, returning its
	// claims. Expired tokens yield ErrExpiredToken, anything else that
	// fails verification yields ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of an access token.
type Claims struct {
	// UserID identifies the account the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Registered JWT claims carried through for introspection.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
