package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	// Compare returns nil when the password matches the hash.
	// A mismatch is reported as ErrInvalidCredentials.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier. Hashing happens in the
// user store on create; this side only verifies.
type BcryptVerifier struct{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare normalizes a bcrypt mismatch into ErrInvalidCredentials so
// callers never branch on bcrypt internals. Any other failure, such as a
// corrupt hash, is surfaced wrapped for context.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("password comparison failed: %w", err)
}
