// Package gemini implements the assistant.Agent interface on top of
// Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/Thinkabouthev/backend-hw2/internal/config"
)

// Agent sends single-turn prompts to a Gemini model.
type Agent struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAgent creates a Gemini-backed agent from the LLM configuration.
func NewAgent(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if cfg.GeminiModel == "" {
		return nil, errors.New("gemini model name cannot be empty")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Agent{
		client:  client,
		model:   cfg.GeminiModel,
		timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		logger:  logger.With("component", "gemini_agent", "model", cfg.GeminiModel),
	}, nil
}

// Ask sends a single prompt and returns the model's text response.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	a.logger.Debug("calling Gemini API", "prompt_length", len(prompt))

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), nil)
	if err != nil {
		a.logger.Error("Gemini API call failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no content")
	}

	text := resp.Text()

	a.logger.Debug("Gemini API call successful", "response_length", len(text))
	return text, nil
}
