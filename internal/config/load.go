package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variables, e.g. TASKAPI_AUTH_JWT_SECRET.
const envPrefix = "TASKAPI"

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// over values from the config file. Secrets have no defaults and must be
// provided. Returns a populated Config or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything can come from the environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so bind the
	// keys that have no defaults (the secrets) explicitly.
	for _, key := range []string{
		"database.url",
		"auth.jwt_secret",
		"redis.url",
		"llm.gemini_api_key",
		"llm.openai_api_key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers defaults for everything that is safe to default.
// Secrets (JWT secret, AI API keys) and connection URLs deliberately have none.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.connect_retry_seconds", 5)

	v.SetDefault("auth.token_lifetime_minutes", 30)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("redis.result_ttl_minutes", 1440)

	v.SetDefault("job.worker_count", 2)
	v.SetDefault("job.queue_size", 100)
	v.SetDefault("job.stuck_job_age_minutes", 30)
	v.SetDefault("job.fetch_url", "https://jsonplaceholder.typicode.com/posts/1")
	v.SetDefault("job.fetch_interval_seconds", 3600)
	v.SetDefault("job.cleanup_interval_seconds", 86400)
	v.SetDefault("job.cleanup_age_days", 30)
	v.SetDefault("job.sweep_interval_seconds", 3600)

	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.openai_model", "gpt-4")
	v.SetDefault("llm.request_timeout_seconds", 60)
}
