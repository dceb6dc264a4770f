package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/logger"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
	"github.com/google/uuid"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.Completed,
		ownerArg(task),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return MapError(err)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	return s.getOne(ctx, query, id)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate.
// The SELECT ... FOR UPDATE row lock keeps the background processing job from
// racing the cleanup sweep on the same row; it only has effect when the store
// is bound to a transaction.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE id = $1
		FOR UPDATE
	`
	return s.getOne(ctx, query, id)
}

func (s *PostgresTaskStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// ListByOwner implements store.TaskStore.ListByOwner.
// Tasks are returned in creation order. Unowned tasks are never listed.
func (s *PostgresTaskStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	offset, limit int,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, description, completed, user_id, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		log.Error("failed to query tasks by owner",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTaskFromRows(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update.
// It overwrites title, description and the completion flag.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		time.Now().UTC(),
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete",
			slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// ListIncompleteIDs implements store.TaskStore.ListIncompleteIDs.
// Used by the periodic sweep to enqueue processing jobs.
func (s *PostgresTaskStore) ListIncompleteIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id
		FROM tasks
		WHERE completed = FALSE
		ORDER BY created_at ASC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to query incomplete tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan task ID", slog.String("error", err.Error()))
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return ids, nil
}

// DeleteCompletedBefore implements store.TaskStore.DeleteCompletedBefore.
// It issues a single bulk delete and returns the deleted IDs.
func (s *PostgresTaskStore) DeleteCompletedBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM tasks
		WHERE completed = TRUE AND created_at < $1
		RETURNING id
	`

	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		log.Error("failed to delete completed tasks",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return nil, err
	}
	defer closeRows(rows, log)

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan deleted task ID", slog.String("error", err.Error()))
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("deleted old completed tasks", slog.Int("count", len(ids)))
	return ids, nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// ownerArg converts the optional owner reference to a SQL argument.
func ownerArg(task *domain.Task) any {
	if task.UserID == nil {
		return nil
	}
	return *task.UserID
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row *sql.Row) (*domain.Task, error) {
	return scanTaskFields(row)
}

func scanTaskFromRows(rows *sql.Rows) (*domain.Task, error) {
	return scanTaskFields(rows)
}

func scanTaskFields(scanner rowScanner) (*domain.Task, error) {
	var task domain.Task
	var owner uuid.NullUUID
	var createdAt, updatedAt time.Time

	err := scanner.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&owner,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if owner.Valid {
		id := owner.UUID
		task.UserID = &id
	}
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()

	return &task, nil
}

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}
