package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse defines the public representation of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// TokenResponse defines the successful response for the token endpoint.
// The shape follows the OAuth2 password grant convention.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
}

// UpdateTaskRequest defines the payload for updating a task.
type UpdateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Completed   bool   `json:"completed"`
}

// TaskResponse defines the public representation of a task.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	UserID      *uuid.UUID `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskResponse builds a TaskResponse from a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		UserID:      task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// NewTaskListResponse builds a slice of TaskResponse from domain tasks.
// Always returns a non-nil slice so empty lists serialize as [].
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

// A2ARequest defines the payload for the agent-to-agent chat endpoint.
type A2ARequest struct {
	Message string `json:"message" validate:"required"`
}
