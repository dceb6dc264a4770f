package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Thinkabouthev/backend-hw2/internal/api/shared"
	"github.com/Thinkabouthev/backend-hw2/internal/assistant"
)

// ChatRelay runs one agent-to-agent exchange.
type ChatRelay interface {
	Chat(ctx context.Context, userMessage string) (*assistant.ChatResult, error)
}

// AssistantHandler handles the agent-to-agent chat endpoint.
type AssistantHandler struct {
	relay     ChatRelay
	validator *validator.Validate
}

// NewAssistantHandler creates a new AssistantHandler with the given relay.
func NewAssistantHandler(relay ChatRelay) *AssistantHandler {
	return &AssistantHandler{
		relay:     relay,
		validator: validator.New(),
	}
}

// a2aChatResponse wraps the chat result the way the endpoint exposes it.
type a2aChatResponse struct {
	Result *assistant.ChatResult `json:"result"`
}

// Chat handles the POST /assistant/a2a-chat endpoint.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req A2ARequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.relay.Chat(r.Context(), req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, a2aChatResponse{Result: result})
}
