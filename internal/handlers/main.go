package handlers

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmaxmax/go-sse"
	advocaciaweb "github.com/trafer/advocacia-web"
	"github.com/trafer/advocacia-web/internal/chat"
	"github.com/trafer/advocacia-web/internal/models"
)

// LeadStore persists consultation requests sent through the contact form.
type LeadStore interface {
	AddLead(ctx context.Context, lead models.Lead) (string, error)
}

// Main serves the firm's page and the chat widget endpoints. It owns the server-sent events server
// that delivers settled assistant replies, the parsed templates, and the registry of page sessions.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template
	sessions  *chat.Sessions
	store     LeadStore
	site      models.Site

	logger *slog.Logger
}

const (
	sessionCookieName = "trafer_session"
	errLoggerKey      = "err"

	// replayTTL is how long published events stay available to subscribers that connect late.
	replayTTL = 5 * time.Minute
)

var (
	messagesSSEType = sse.Type("messages")
	pageSSEType     = sse.Type("page")
)

// NewMain creates a Main that answers chat questions through transport and stores contact leads in
// store. Templates are parsed from the embedded filesystem with a "markdown" function that renders
// assistant replies to HTML, and a "pendingMessage" function that builds a reply placeholder.
func NewMain(transport chat.Transport, store LeadStore, site models.Site, logger *slog.Logger) (Main, error) {
	md := newMarkdown()

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": func(src string) (template.HTML, error) {
			return renderMarkdown(md, src)
		},
		"pendingMessage": func(id string) message {
			return message{
				ID:             id,
				Role:           string(models.RoleAssistant),
				StreamingState: models.StreamingStateLoading,
			}
		},
	}).ParseFS(
		advocaciaweb.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	logger = logger.With(slog.String("module", "handlers"))

	replayer, err := sse.NewValidReplayer(replayTTL, false)
	if err != nil {
		return Main{}, err
	}

	sseSrv := &sse.Server{
		Provider:  &sse.Joe{Replayer: replayer},
		OnSession: subscribe,
	}

	pub := replyPublisher{
		sseSrv:    sseSrv,
		templates: tmpl,
		logger:    logger,
	}

	return Main{
		sseSrv:    sseSrv,
		templates: tmpl,
		sessions:  chat.NewSessions(transport, pub.publish, logger),
		store:     store,
		site:      site,
		logger:    logger,
	}, nil
}

func sessionTopic(sessionID string) string {
	return fmt.Sprintf("session-%s", sessionID)
}

// subscribe subscribes an SSE request to its page session's topic. Replay resumes after the browser's
// Last-Event-ID or, on a first connect, after the page marker named by the "after" query parameter.
func subscribe(s *sse.Session) (sse.Subscription, bool) {
	cookie, err := s.Req.Cookie(sessionCookieName)
	if err != nil || !validSessionID(cookie.Value) {
		return sse.Subscription{}, false
	}

	lastEventID := s.LastEventID
	if !lastEventID.IsSet() {
		if after := s.Req.URL.Query().Get("after"); after != "" {
			lastEventID, _ = sse.NewID(after)
		}
	}

	return sse.Subscription{
		Client:      s,
		LastEventID: lastEventID,
		Topics:      []string{sse.DefaultTopic, sessionTopic(cookie.Value)},
	}, true
}

// markPage publishes a marker event to the session's topic and returns its ID. Subscribing after the
// marker replays everything the session was sent once the page was rendered.
func (m Main) markPage(sessionID string) string {
	id := uuid.New().String()

	e := &sse.Message{
		ID:   sse.ID(id),
		Type: pageSSEType,
	}
	e.AppendData(id)

	if err := m.sseSrv.Publish(e, sessionTopic(sessionID)); err != nil {
		m.logger.Error("Failed to publish page marker", slog.String(errLoggerKey, err.Error()))
		return ""
	}
	return id
}

// ExpireSessions evicts chat sessions idle for longer than ttl until ctx is done.
func (m Main) ExpireSessions(ctx context.Context, ttl time.Duration) {
	m.sessions.RunEviction(ctx, ttl)
}

// Shutdown gracefully terminates the Main instance's SSE server. It broadcasts a close message to all
// connected clients and waits up to 5 seconds for connections to terminate.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{
		ID:   sse.ID(uuid.New().String()),
		Type: sse.Type("closeChat"),
	}
	// SSE requires data on every event
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}

type replyPublisher struct {
	sseSrv    *sse.Server
	templates *template.Template
	logger    *slog.Logger
}

// publish renders a settled assistant message and pushes it to the session's topic.
func (p replyPublisher) publish(sessionID string, msg models.Message) {
	var sb strings.Builder
	if err := p.templates.ExecuteTemplate(&sb, "ai_message", newMessage(msg, models.StreamingStateEnded)); err != nil {
		p.logger.Error("Failed to render reply",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
		return
	}

	e := sse.Message{
		ID:   sse.ID(msg.ID),
		Type: messagesSSEType,
	}
	e.AppendData(sb.String())

	if err := p.sseSrv.Publish(&e, sessionTopic(sessionID)); err != nil {
		p.logger.Error("Failed to publish reply",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
	}
}
