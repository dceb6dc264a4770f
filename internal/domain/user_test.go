package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Run("valid user", func(t *testing.T) {
		user, err := domain.NewUser("alice@example.com", "password1234")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "password1234", user.Password)
		assert.Empty(t, user.HashedPassword)
		assert.False(t, user.CreatedAt.IsZero())
	})

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "empty email",
			email:    "",
			password: "password1234",
			wantErr:  domain.ErrEmptyEmail,
		},
		{
			name:     "email without at sign",
			email:    "alice.example.com",
			password: "password1234",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "email without domain dot",
			email:    "alice@localhost",
			password: "password1234",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			email:    "alice@example.com",
			password: "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
		{
			name:     "password exceeds bcrypt limit",
			email:    "alice@example.com",
			password: strings.Repeat("x", 73),
			wantErr:  domain.ErrPasswordTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			user, err := domain.NewUser(tc.email, tc.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	// A user loaded from the database has no plaintext password; the hash
	// alone must satisfy validation.
	user := &domain.User{
		ID:             uuid.New(),
		Email:          "bob@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
