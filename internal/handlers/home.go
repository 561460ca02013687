package handlers

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/trafer/advocacia-web/internal/models"
)

type message struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time

	StreamingState string
}

type homePageData struct {
	Site        models.Site
	WhatsAppURL string
	Year        int
	EventsURL   string

	Messages       []message
	Pending        bool
	PendingReplyID string
}

func newMessage(msg models.Message, streamingState string) message {
	return message{
		ID:             msg.ID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Timestamp:      msg.Timestamp,
		StreamingState: streamingState,
	}
}

// HandleHome renders the firm's page. The visitor's page session is taken from its cookie, or a new
// session ID is issued, and the session's conversation is rendered into the chat widget so that it
// survives closing and reopening the widget. A session with no conversation yet holds no server state.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	id := m.sessionID(w, r)
	eventsURL := "/sse"
	if marker := m.markPage(id); marker != "" {
		eventsURL += "?" + url.Values{"after": {marker}}.Encode()
	}

	data := homePageData{
		Site:        m.site,
		WhatsAppURL: m.site.WhatsAppURL(),
		Year:        time.Now().Year(),
		EventsURL:   eventsURL,
	}

	if sess, ok := m.sessions.Get(id); ok {
		history := sess.Messages()
		data.Messages = make([]message, len(history))
		for i := range history {
			data.Messages[i] = newMessage(history[i], models.StreamingStateEnded)
		}
		data.Pending = sess.Pending()
		data.PendingReplyID = sess.PendingReplyID()
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		m.logger.Error("Failed to render home page", slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// sessionID returns the caller's page session ID, issuing a new one in the cookie when the request
// carries none or an invalid one.
func (m Main) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && validSessionID(cookie.Value) {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func validSessionID(id string) bool {
	return uuid.Validate(id) == nil
}

// HandleHealth reports that the server is up.
func (m Main) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
