package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/service/auth"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// AuthHandler handles registration and authentication API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
	}
}

// Register handles the POST /register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUser(req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already registered")
			return
		}
		slog.Error("failed to create user", "error", err)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewUserResponse(user))
}

// Token handles the POST /token endpoint. It implements the OAuth2 password
// grant shape: credentials arrive as form fields "username" (the email) and
// "password", and the response carries an access token with its type.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Incorrect email or password")
			return
		}
		slog.Error("failed to get user by email", "error", err)
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to generate authentication token", err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me handles the GET /me endpoint, returning the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}
