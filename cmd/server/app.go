package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Thinkabouthev/backend-hw2/internal/assistant"
	"github.com/Thinkabouthev/backend-hw2/internal/config"
	"github.com/Thinkabouthev/backend-hw2/internal/job"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/gemini"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/openai"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/postgres"
	"github.com/Thinkabouthev/backend-hw2/internal/platform/redisjob"
	"github.com/Thinkabouthev/backend-hw2/internal/service/auth"
	"github.com/Thinkabouthev/backend-hw2/internal/store"
)

// application holds the initialized dependencies for the server process.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore
	jobStore  job.Store

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	relay            *assistant.Relay

	// Background processing
	redisClient *redis.Client
	recorder    job.ResultRecorder
	jobRunner   *job.Runner
	scheduler   *job.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized, including the started job runner and scheduler.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Result backend. Without a Redis URL job results are simply discarded.
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		app.redisClient = redis.NewClient(opts)
		app.recorder = redisjob.NewRecorder(
			app.redisClient,
			time.Duration(cfg.Redis.ResultTTLMinutes)*time.Minute,
		)
		logger.Info("Redis result backend initialized",
			"result_ttl_minutes", cfg.Redis.ResultTTLMinutes)
	} else {
		app.recorder = job.NopRecorder{}
		logger.Warn("no Redis URL configured, job results will not be recorded")
	}

	// Assistant relay
	geminiAgent, err := gemini.NewAgent(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini agent: %w", err)
	}
	openaiAgent, err := openai.NewAgent(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI agent: %w", err)
	}
	app.relay, err = assistant.NewRelay(geminiAgent, openaiAgent, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize assistant relay: %w", err)
	}

	// Background processing
	if err := setupJobs(app); err != nil {
		return nil, fmt.Errorf("failed to set up background jobs: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupJobs wires the job store, runner, registry, and periodic scheduler.
//
// Construction order matters: the runner needs the store, the registry's
// factories submit through the runner, and the store needs the registry to
// rehydrate persisted jobs. The registry is therefore bound to the store
// after both exist, before the runner recovers anything.
func setupJobs(app *application) error {
	cfg := app.config.Job

	jobStore := postgres.NewPostgresJobStore(app.db, nil)
	app.jobStore = jobStore

	app.jobRunner = job.NewRunner(jobStore, job.RunnerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
		StuckJobAge: time.Duration(cfg.StuckJobAgeMinutes) * time.Minute,
	}, app.logger)

	registry, err := job.NewDefaultRegistry(job.Dependencies{
		DB:         app.db,
		TaskStore:  app.taskStore,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		FetchURL:   cfg.FetchURL,
		CleanupAge: time.Duration(cfg.CleanupAgeDays) * 24 * time.Hour,
		Recorder:   app.recorder,
		Submitter:  app.jobRunner,
		Logger:     app.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build job registry: %w", err)
	}
	jobStore.SetRegistry(registry)

	if err := app.jobRunner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	app.scheduler = job.NewScheduler(registry, app.jobRunner, app.logger)
	app.scheduler.Add(job.ScheduleEntry{
		Name:     "external-fetch",
		JobType:  job.TypeFetchExternal,
		Interval: time.Duration(cfg.FetchIntervalSeconds) * time.Second,
	})
	app.scheduler.Add(job.ScheduleEntry{
		Name:     "completed-task-cleanup",
		JobType:  job.TypeCleanupCompleted,
		Interval: time.Duration(cfg.CleanupIntervalSeconds) * time.Second,
	})
	app.scheduler.Add(job.ScheduleEntry{
		Name:     "pending-task-sweep",
		JobType:  job.TypeProcessPending,
		Interval: time.Duration(cfg.SweepIntervalSeconds) * time.Second,
	})

	// Start validates every entry against the registry. A schedule naming an
	// unregistered job type aborts startup here.
	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("Error closing Redis connection", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}
