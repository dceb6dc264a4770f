package job

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// Dependencies bundles everything the concrete job factories need.
type Dependencies struct {
	DB         *sql.DB
	TaskStore  store.TaskStore
	HTTPClient *http.Client
	FetchURL   string
	CleanupAge time.Duration
	Recorder   ResultRecorder
	Submitter  Submitter
	Logger     *slog.Logger
}

func (d Dependencies) validate() error {
	if d.DB == nil {
		return ErrNilDB
	}
	if d.TaskStore == nil {
		return ErrNilTaskStore
	}
	if d.Recorder == nil {
		return ErrNilRecorder
	}
	if d.Submitter == nil {
		return ErrNilSubmitter
	}
	if d.Logger == nil {
		return ErrNilLogger
	}
	return nil
}

// NewDefaultRegistry builds a registry with factories for every job type in
// this application. The scheduler validates its entries against the result,
// so a schedule naming a type missing here fails at startup.
func NewDefaultRegistry(deps Dependencies) (*Registry, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("invalid job dependencies: %w", err)
	}

	r := NewRegistry()

	register := func(jobType string, factory Factory) error {
		if err := r.Register(jobType, factory); err != nil {
			return fmt.Errorf("failed to register %s: %w", jobType, err)
		}
		return nil
	}

	if err := register(TypeFetchExternal, func(id uuid.UUID, payload []byte) (Job, error) {
		return NewFetchExternalDataJob(id, deps.TaskStore, deps.HTTPClient, deps.FetchURL, deps.Recorder, deps.Logger)
	}); err != nil {
		return nil, err
	}

	if err := register(TypeCleanupCompleted, func(id uuid.UUID, payload []byte) (Job, error) {
		return NewCleanupCompletedTasksJob(id, deps.TaskStore, deps.CleanupAge, deps.Recorder, deps.Logger)
	}); err != nil {
		return nil, err
	}

	if err := register(TypeProcessPending, func(id uuid.UUID, payload []byte) (Job, error) {
		return NewProcessPendingTasksJob(id, deps.DB, deps.TaskStore, deps.Recorder, deps.Submitter, deps.Logger)
	}); err != nil {
		return nil, err
	}

	if err := register(TypeProcessTask, func(id uuid.UUID, payload []byte) (Job, error) {
		return NewProcessTaskJobFromPayload(id, payload, deps.DB, deps.TaskStore, deps.Recorder, deps.Submitter, deps.Logger)
	}); err != nil {
		return nil, err
	}

	if err := register(TypeSendNotification, func(id uuid.UUID, payload []byte) (Job, error) {
		return NewSendNotificationJobFromPayload(id, payload, deps.TaskStore, deps.Recorder, deps.Logger)
	}); err != nil {
		return nil, err
	}

	return r, nil
}
