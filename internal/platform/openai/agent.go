// Package openai implements the assistant.Agent interface on top of the
// OpenAI chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Thinkabouthev/backend-hw2/internal/config"
)

// systemPrompt is prepended to every conversation.
const systemPrompt = "You are a helpful assistant."

// Agent sends single-turn prompts to an OpenAI chat model.
type Agent struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewAgent creates an OpenAI-backed agent from the LLM configuration.
func NewAgent(cfg config.LLMConfig, logger *slog.Logger) (*Agent, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("openai API key cannot be empty")
	}
	if cfg.OpenAIModel == "" {
		return nil, errors.New("openai model name cannot be empty")
	}

	return &Agent{
		client:  openai.NewClient(cfg.OpenAIAPIKey),
		model:   cfg.OpenAIModel,
		timeout: time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		logger:  logger.With("component", "openai_agent", "model", cfg.OpenAIModel),
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

	a.logger.Debug("calling OpenAI API", "prompt_length", len(prompt))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		a.logger.Error("OpenAI API call failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	text := resp.Choices[0].Message.Content
	a.logger.Debug("OpenAI API call successful", "response_length", len(text))
	return text, nil
}
