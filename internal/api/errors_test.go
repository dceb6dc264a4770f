package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/Thinkabouthev/backend-hw2/internal/api"
	"github.com/Thinkabouthev/backend-hw2/internal/assistant"
	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/service/auth"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{store.ErrUserNotFound, http.StatusNotFound},
		{store.ErrTaskNotFound, http.StatusNotFound},
		{store.ErrEmailExists, http.StatusConflict},
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrInvalidID, http.StatusBadRequest},
		{assistant.ErrNoQuestion, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
		// Wrapped errors classify the same as their sentinel.
		{fmt.Errorf("loading task: %w", store.ErrTaskNotFound), http.StatusNotFound},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err), "error: %v", tc.err)
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Task not found", api.GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Email already registered", api.GetSafeErrorMessage(store.ErrEmailExists))

	// Relay stage errors pass through verbatim.
	assert.Equal(t, "Gemini failed to formulate a question for ChatGPT",
		api.GetSafeErrorMessage(assistant.ErrNoQuestion))

	// Validation errors surface the field.
	verr := domain.NewValidationError("taskID", "has invalid format", domain.ErrInvalidID)
	assert.Equal(t, "Invalid taskID: has invalid format", api.GetSafeErrorMessage(verr))

	// Everything unrecognized stays generic.
	assert.Equal(t, "An unexpected error occurred",
		api.GetSafeErrorMessage(errors.New("pq: syntax error at or near SELECT")))
}

func TestSanitizeValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(api.RegisterRequest{Password: "password1234"})
	assert.Equal(t, "Invalid Email: required field", api.SanitizeValidationError(err))

	err = v.Struct(api.RegisterRequest{Email: "alice@example.com", Password: "x"})
	assert.Equal(t, "Invalid Password: too short", api.SanitizeValidationError(err))

	assert.Equal(t, "Validation error", api.SanitizeValidationError(errors.New("boom")))
}
