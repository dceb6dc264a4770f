// Package assistant implements the agent-to-agent chat flow: a Gemini agent
// reformulates the user's question for ChatGPT, ChatGPT answers, and Gemini
// synthesizes the final response. The full conversation trace is returned to
// the caller.
package assistant

import (
	"context"
	"errors"
)

// Agent is a minimal LLM conversation surface: one prompt in, one text
// response out. Implementations wrap provider SDKs.
type Agent interface {
	// Ask sends a single prompt and returns the model's text response.
	Ask(ctx context.Context, prompt string) (string, error)
}

// Stage errors for the relay. Each names the step that produced an empty or
// failed response so the HTTP handler can surface it verbatim.
var (
	// ErrNoQuestion indicates Gemini returned nothing when asked to
	// formulate a question for ChatGPT.
	ErrNoQuestion = errors.New("Gemini failed to formulate a question for ChatGPT")

	// ErrNoAnswer indicates ChatGPT returned an empty answer.
	ErrNoAnswer = errors.New("ChatGPT failed to provide an answer")

	// ErrNoFinalResponse indicates Gemini returned nothing when asked to
	// synthesize the final response.
	ErrNoFinalResponse = errors.New("Gemini failed to process ChatGPT's answer")
)

// ConversationFlow is the full trace of one agent-to-agent exchange.
type ConversationFlow struct {
	OriginalUserQuestion     string `json:"original_user_question"`
	GeminiQuestionForChatGPT string `json:"gemini_question_for_chatgpt"`
	ChatGPTAnswer            string `json:"chatgpt_answer"`
	GeminiFinalResponse      string `json:"gemini_final_response"`
}

// ChatResult is the successful outcome of an agent-to-agent chat.
type ChatResult struct {
	Status           string           `json:"status"`
	FinalResponse    string           `json:"final_response"`
	ConversationFlow ConversationFlow `json:"conversation_flow"`
}
