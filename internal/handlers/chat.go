package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/trafer/advocacia-web/internal/chat"
	"github.com/trafer/advocacia-web/internal/models"
)

// HandleChat accepts a question from the chat widget through the "message" form field. It appends the
// question to the caller's session and responds with the rendered user message followed by a loading
// placeholder for the reply. The reply itself is delivered later through HandleSSE.
//
// Empty or whitespace-only messages are rejected with 400 and a submission while the previous reply is
// still pending is rejected with 409. Neither changes the conversation.
func (m Main) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := m.sessionID(w, r)

	turn, err := m.sessions.Submit(r.Context(), id, r.FormValue("message"))
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	case errors.Is(err, chat.ErrPending):
		m.logger.Warn("Submission while reply is pending", slog.String("sessionID", id))
		http.Error(w, "A reply is already pending", http.StatusConflict)
		return
	case err != nil:
		m.logger.Error("Failed to submit message", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err = m.templates.ExecuteTemplate(w, "user_message", newMessage(turn.User, models.StreamingStateEnded))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = m.templates.ExecuteTemplate(w, "ai_message", message{
		ID:             turn.ReplyID,
		Role:           string(models.RoleAssistant),
		Timestamp:      turn.User.Timestamp,
		StreamingState: models.StreamingStateLoading,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleSSE subscribes the caller's page session to its settled assistant replies.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}
