// Package config loads and validates application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups and is passed explicitly to each
// component at construction time; there is no package-level singleton.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Job      JobConfig      `mapstructure:"job"      validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`

	// ConnectAttempts controls startup behavior: the server retries the
	// initial connection this many times with a fixed delay between tries.
	ConnectAttempts     int `mapstructure:"connect_attempts"      validate:"required,gte=1"`
	ConnectRetrySeconds int `mapstructure:"connect_retry_seconds" validate:"required,gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	// JWTSecret signs access tokens. Required, no default.
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// RedisConfig configures the job result backend. An empty URL disables
// result recording; jobs still run, their outcomes are just not retained.
type RedisConfig struct {
	URL              string `mapstructure:"url"                validate:"omitempty,uri"`
	ResultTTLMinutes int    `mapstructure:"result_ttl_minutes" validate:"required,gt=0"`
}

// JobConfig configures the background job runner and the periodic schedule.
// All intervals are fixed configuration literals, not computed from prior runs.
type JobConfig struct {
	WorkerCount        int `mapstructure:"worker_count"          validate:"required,gt=0"`
	QueueSize          int `mapstructure:"queue_size"            validate:"required,gt=0"`
	StuckJobAgeMinutes int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`

	// FetchURL is the external endpoint polled by the fetch job.
	FetchURL             string `mapstructure:"fetch_url"              validate:"required,url"`
	FetchIntervalSeconds int    `mapstructure:"fetch_interval_seconds" validate:"required,gt=0"`

	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds" validate:"required,gt=0"`
	CleanupAgeDays         int `mapstructure:"cleanup_age_days"         validate:"required,gt=0"`

	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" validate:"required,gt=0"`
}

// LLMConfig contains the settings for both external AI providers used by the
// agent-to-agent chat flow. API keys are required with no defaults.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	GeminiModel  string `mapstructure:"gemini_model"   validate:"required"`

	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required"`
	OpenAIModel  string `mapstructure:"openai_model"   validate:"required"`

	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}
