package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
)

func TestNewTask(t *testing.T) {
	userID := uuid.New()

	t.Run("valid task", func(t *testing.T) {
		task, err := domain.NewTask(userID, "Write report", "quarterly numbers")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, "quarterly numbers", task.Description)
		assert.False(t, task.Completed)
		require.NotNil(t, task.UserID)
		assert.Equal(t, userID, *task.UserID)
	})

	t.Run("nil owner rejected", func(t *testing.T) {
		task, err := domain.NewTask(uuid.Nil, "Write report", "")
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrEmptyUserID)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		task, err := domain.NewTask(userID, "", "")
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
	})

	t.Run("title over 200 characters rejected", func(t *testing.T) {
		task, err := domain.NewTask(userID, strings.Repeat("a", 201), "")
		assert.Nil(t, task)
		assert.ErrorIs(t, err, domain.ErrTaskTitleTooLong)
	})
}

func TestNewUnownedTask(t *testing.T) {
	task, err := domain.NewUnownedTask("Fetched post", "body from external API")
	require.NoError(t, err)
	assert.Nil(t, task.UserID)
	assert.NoError(t, task.Validate())
}

func TestTaskOwnedBy(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	task, err := domain.NewTask(owner, "Mine", "")
	require.NoError(t, err)
	assert.True(t, task.OwnedBy(owner))
	assert.False(t, task.OwnedBy(stranger))

	unowned, err := domain.NewUnownedTask("Nobody's", "")
	require.NoError(t, err)
	assert.False(t, unowned.OwnedBy(owner))
}

func TestTaskMarkProcessed(t *testing.T) {
	task, err := domain.NewUnownedTask("Fetched post", "original body")
	require.NoError(t, err)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	task.MarkProcessed(at)

	assert.True(t, task.Completed)
	assert.Contains(t, task.Description, "original body")
	assert.Contains(t, task.Description, "Processed at 2025-06-01T12:00:00Z")
}
