package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Thinkabouthev/backend-hw2/internal/domain"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// Common dependency errors shared by the concrete jobs
var (
	ErrNilTaskStore = errors.New("task store cannot be nil")
	ErrNilRecorder  = errors.New("result recorder cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
	ErrNilSubmitter = errors.New("submitter cannot be nil")
	ErrNilDB        = errors.New("database handle cannot be nil")
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
)

// externalPost is the subset of the external document we keep. Remaining
// response fields are ignored.
type externalPost struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FetchExternalDataJob performs one HTTP GET against a fixed external
// endpoint and inserts the fetched document as a new unowned task.
//
// Failures are not surfaced: there is no caller waiting on this job, so a
// transport or decode error is recorded as an error-status result and the
// job itself completes. No retry, no backoff.
type FetchExternalDataJob struct {
	id         uuid.UUID
	taskStore  store.TaskStore
	httpClient *http.Client
	url        string
	recorder   ResultRecorder
	logger     *slog.Logger
	status     Status
}

// NewFetchExternalDataJob creates a fetch job for the given endpoint.
func NewFetchExternalDataJob(
	id uuid.UUID,
	taskStore store.TaskStore,
	httpClient *http.Client,
	url string,
	recorder ResultRecorder,
	logger *slog.Logger,
) (*FetchExternalDataJob, error) {
	if taskStore == nil {
		return nil, ErrNilTaskStore
	}
	if recorder == nil {
		return nil, ErrNilRecorder
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if url == "" {
		return nil, errors.New("fetch URL cannot be empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &FetchExternalDataJob{
		id:         id,
		taskStore:  taskStore,
		httpClient: httpClient,
		url:        url,
		recorder:   recorder,
		logger:     logger.With("job_type", TypeFetchExternal),
		status:     StatusPending,
	}, nil
}

// ID returns the job's unique identifier
func (j *FetchExternalDataJob) ID() uuid.UUID {
	return j.id
}

// Type returns the job type identifier
func (j *FetchExternalDataJob) Type() string {
	return TypeFetchExternal
}

// Payload returns the job data as a byte slice. The fetch job carries no
// payload; the endpoint comes from configuration.
func (j *FetchExternalDataJob) Payload() []byte {
	return []byte{}
}

// Status returns the current job status
func (j *FetchExternalDataJob) Status() Status {
	return j.status
}

// Execute fetches the external document and inserts it as an unowned task.
func (j *FetchExternalDataJob) Execute(ctx context.Context) error {
	j.status = StatusProcessing
	j.logger.Info("fetching external data", "url", j.url)

	task, err := j.fetchAndInsert(ctx)
	if err != nil {
		// Swallow the failure into the recorded result. The job completes;
		// the error is visible only through the result backend and logs.
		j.logger.Error("external fetch failed", "error", err)
		j.record(ctx, Result{Status: "error", Message: err.Error()})
		j.status = StatusCompleted
		return nil
	}

	j.logger.Info("external data inserted as task", "task_id", task.ID)
	j.record(ctx, Result{
		Status:  "success",
		Message: "data fetched and saved",
		Details: map[string]any{"task_id": task.ID.String(), "title": task.Title},
	})
	j.status = StatusCompleted
	return nil
}

func (j *FetchExternalDataJob) fetchAndInsert(ctx context.Context) (*domain.Task, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status: %s", resp.Status)
	}

	var post externalPost
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	task, err := domain.NewUnownedTask(post.Title, post.Body)
	if err != nil {
		return nil, fmt.Errorf("fetched document is not a valid task: %w", err)
	}
	if err := j.taskStore.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to save fetched task: %w", err)
	}
	return task, nil
}

func (j *FetchExternalDataJob) record(ctx context.Context, result Result) {
	if err := j.recorder.Record(ctx, TypeFetchExternal, j.id, result); err != nil {
		j.logger.Warn("failed to record job result", "error", err)
	}
}
