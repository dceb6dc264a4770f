package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Thinkabouthev/backend-hw2/internal/assistant"
	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/service/auth"
	"github.com/Thinkabouthev/backend-hw2/internal/store"

	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. Ownership failures also land here: a task owned by
	// someone else is indistinguishable from a missing one.
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// Agent pipeline failures surface as server errors with the stage message
	case errors.Is(err, assistant.ErrNoQuestion),
		errors.Is(err, assistant.ErrNoAnswer),
		errors.Is(err, assistant.ErrNoFinalResponse):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Incorrect email or password"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Not authenticated"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidID):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
		}
		return "Validation error"

	// The relay's stage errors are deliberately stable, human-readable
	// sentences; surface them verbatim.
	case errors.Is(err, assistant.ErrNoQuestion),
		errors.Is(err, assistant.ErrNoAnswer),
		errors.Is(err, assistant.ErrNoFinalResponse):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and safe message, then
// writes the error response. A non-empty overrideMessage replaces the mapped
// message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if overrideMessage != "" {
		message = overrideMessage
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// validator.ValidationErrors format:
	// "Key: 'RegisterRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
