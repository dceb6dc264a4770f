package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 200 characters")
)

// Task represents a unit of work tracked by the API. Tasks created through
// the HTTP API always have an owner; tasks created by the external fetch job
// have no owner and are only touched by the background jobs.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	UserID      *uuid.UUID `json:"user_id"` // nil for tasks created by the fetch job
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a new owned Task for the given user.
// Returns an error if validation fails.
func NewTask(userID uuid.UUID, title, description string) (*Task, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	owner := userID
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Completed:   false,
		UserID:      &owner,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// NewUnownedTask creates a Task without an owner. Only the scheduled
// external fetch job creates tasks this way.
func NewUnownedTask(title, description string) (*Task, error) {
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if t.UserID != nil && *t.UserID == uuid.Nil {
		return ErrEmptyUserID
	}

	return nil
}

// OwnedBy reports whether the task belongs to the given user.
// Unowned tasks belong to nobody.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.UserID != nil && *t.UserID == userID
}

// MarkProcessed appends a processing timestamp to the description and flips
// the completion flag. Used by the background processing job.
func (t *Task) MarkProcessed(at time.Time) {
	t.Description = fmt.Sprintf("%s\nProcessed at %s", t.Description, at.UTC().Format(time.RFC3339))
	t.Completed = true
	t.UpdatedAt = time.Now().UTC()
}
