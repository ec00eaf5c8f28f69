package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/schemeseva/internal/models"
	"github.com/atinyakov/schemeseva/internal/relay"
)

// ChatHandler relays conversations to the configured completions provider.
type ChatHandler struct {
	Completer relay.Completer
	Log       *zap.Logger
}

// Chat handles POST /api/chat.
// The reply is wrapped in a single-choice envelope whatever the provider.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := relay.Validate(req.Messages); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply, err := h.Completer.Complete(r.Context(), req.Messages)
	if err == nil && reply == "" {
		err = relay.ErrNoChoices
	}
	if err != nil {
		h.Log.Error("Error fetching response", zap.Error(err))
		http.Error(w, "Error fetching response", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Choices: []models.ChatChoice{{Message: models.ChatMessage{Role: "assistant", Content: reply}}},
	})
}
