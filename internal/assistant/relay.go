package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Relay orchestrates the three-step agent-to-agent exchange between the
// Gemini and ChatGPT agents.
type Relay struct {
	gemini  Agent
	chatgpt Agent
	logger  *slog.Logger
}

// NewRelay creates a relay over the two agents.
func NewRelay(gemini, chatgpt Agent, logger *slog.Logger) (*Relay, error) {
	if gemini == nil {
		return nil, errors.New("gemini agent cannot be nil")
	}
	if chatgpt == nil {
		return nil, errors.New("chatgpt agent cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Relay{
		gemini:  gemini,
		chatgpt: chatgpt,
		logger:  logger.With("component", "assistant_relay"),
	}, nil
}

// Chat runs the full exchange:
//
//  1. Gemini formulates a question for ChatGPT based on the user's message.
//  2. ChatGPT answers that question.
//  3. Gemini synthesizes ChatGPT's answer into the final response.
//
// An empty response at any stage aborts the flow with the stage's error; a
// partial trace is never returned.
func (r *Relay) Chat(ctx context.Context, userMessage string) (*ChatResult, error) {
	r.logger.Info("starting agent-to-agent chat", "message_length", len(userMessage))

	// 1. Gemini decides what to ask ChatGPT based on the user's message.
	geminiQuestion, err := r.gemini.Ask(ctx, fmt.Sprintf(
		"Based on this user question: '%s', "+
			"formulate a detailed technical question for ChatGPT. "+
			"Make the question specific and focused.",
		userMessage,
	))
	if err != nil {
		return nil, fmt.Errorf("gemini question formulation failed: %w", err)
	}
	if strings.TrimSpace(geminiQuestion) == "" {
		return nil, ErrNoQuestion
	}

	// 2. Ask ChatGPT the question formulated by Gemini.
	chatgptAnswer, err := r.chatgpt.Ask(ctx, geminiQuestion)
	if err != nil {
		return nil, fmt.Errorf("chatgpt answer failed: %w", err)
	}
	if strings.TrimSpace(chatgptAnswer) == "" {
		return nil, ErrNoAnswer
	}

	// 3. Gemini processes ChatGPT's answer into the final response.
	finalResponse, err := r.gemini.Ask(ctx, fmt.Sprintf(
		"I asked ChatGPT this question: '%s' "+
			"And got this answer: '%s' "+
			"Please analyze this answer and provide a clear, helpful response to the original user question. "+
			"Make it conversational but informative.",
		geminiQuestion, chatgptAnswer,
	))
	if err != nil {
		return nil, fmt.Errorf("gemini final response failed: %w", err)
	}
	if strings.TrimSpace(finalResponse) == "" {
		return nil, ErrNoFinalResponse
	}

	r.logger.Info("agent-to-agent chat completed",
		"question_length", len(geminiQuestion),
		"answer_length", len(chatgptAnswer),
		"final_length", len(finalResponse))

	return &ChatResult{
		Status:        "success",
		FinalResponse: finalResponse,
		ConversationFlow: ConversationFlow{
			OriginalUserQuestion:     userMessage,
			GeminiQuestionForChatGPT: geminiQuestion,
			ChatGPTAnswer:            chatgptAnswer,
			GeminiFinalResponse:      finalResponse,
		},
	}, nil
}
