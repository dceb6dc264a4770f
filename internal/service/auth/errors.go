package auth

import "errors"

// Sentinel errors returned by the auth service. Handlers map these to HTTP
// status codes; the messages themselves never reach API responses.
var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken means the token's exp claim is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid means the nbf claim is still in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken means no token was supplied where one is required.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials means the email/password pair matched no user.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
