package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/api"
	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
	"github.com/Thinkabouthev/backend-hw2/internal/domain"
)

func TestRegister(t *testing.T) {
	t.Run("creates user", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/register", api.RegisterRequest{
			Email:    "alice@example.com",
			Password: "password1234",
		}, "")

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decodeBody[api.UserResponse](t, rec)
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.NotEqual(t, uuid.Nil, resp.ID)

		stored, ok := env.userStore.Users["alice@example.com"]
		require.True(t, ok)
		assert.Equal(t, resp.ID, stored.ID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		env := newTestEnv(t)
		body := api.RegisterRequest{Email: "alice@example.com", Password: "password1234"}

		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/register", body, "").Code)

		rec := env.do(t, http.MethodPost, "/register", body, "")
		require.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeBody[shared.ErrorResponse](t, rec)
		assert.Equal(t, "Email already registered", resp.Error)
		assert.NotEmpty(t, resp.TraceID)
	})

	t.Run("invalid payloads rejected", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			name string
			body api.RegisterRequest
		}{
			{"missing email", api.RegisterRequest{Password: "password1234"}},
			{"malformed email", api.RegisterRequest{Email: "not-an-email", Password: "password1234"}},
			{"short password", api.RegisterRequest{Email: "bob@example.com", Password: "short"}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				rec := env.do(t, http.MethodPost, "/register", tc.body, "")
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}

func TestToken(t *testing.T) {
	registerUser := func(t *testing.T, env *testEnv, email string) uuid.UUID {
		t.Helper()
		rec := env.do(t, http.MethodPost, "/register", api.RegisterRequest{
			Email: email, Password: "password1234",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		return decodeBody[api.UserResponse](t, rec).ID
	}

	t.Run("issues bearer token for valid credentials", func(t *testing.T) {
		env := newTestEnv(t)
		userID := registerUser(t, env, "alice@example.com")

		rec := env.doForm(t, "/token", url.Values{
			"username": {"alice@example.com"},
			"password": {"password1234"},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeBody[api.TokenResponse](t, rec)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.Equal(t, tokenFor(userID), resp.AccessToken)
	})

	t.Run("unknown email rejected with generic message", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.doForm(t, "/token", url.Values{
			"username": {"ghost@example.com"},
			"password": {"password1234"},
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect email or password",
			decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("wrong password rejected with same message", func(t *testing.T) {
		env := newTestEnv(t)
		registerUser(t, env, "alice@example.com")
		env.verifier.ShouldSucceed = false

		rec := env.doForm(t, "/token", url.Values{
			"username": {"alice@example.com"},
			"password": {"wrongpassword"},
		})

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Incorrect email or password",
			decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.doForm(t, "/token", url.Values{"username": {"alice@example.com"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Run("returns authenticated user", func(t *testing.T) {
		env := newTestEnv(t)
		user, err := domain.NewUser("alice@example.com", "password1234")
		require.NoError(t, err)
		require.NoError(t, env.userStore.Create(context.Background(), user))

		rec := env.do(t, http.MethodGet, "/me", nil, tokenFor(user.ID))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[api.UserResponse](t, rec)
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "alice@example.com", resp.Email)
	})

	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/me", nil, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authorization header required",
			decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("garbage token", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/me", nil, "garbage")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("token for deleted user", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/me", nil, tokenFor(uuid.New()))
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decodeBody[shared.ErrorResponse](t, rec).Error)
	})
}

func TestRegisterStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.userStore.CreateError = errors.New("connection refused")

	rec := env.do(t, http.MethodPost, "/register", api.RegisterRequest{
		Email: "alice@example.com", Password: "password1234",
	}, "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[shared.ErrorResponse](t, rec)
	assert.Equal(t, "Failed to create user", resp.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
