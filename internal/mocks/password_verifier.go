package mocks

import "github.com/Thinkabouthev/backend-hw2/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier for testing.
type MockPasswordVerifier struct {
	// ShouldSucceed controls the default comparison outcome.
	ShouldSucceed bool

	// CompareFn overrides the default behavior when set.
	CompareFn func(hashedPassword, password string) error

	// CompareCallCount tracks how many times Compare was called.
	CompareCallCount int
}

// Compare implements the auth.PasswordVerifier interface.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrInvalidCredentials
}
