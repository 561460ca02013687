// Package chat keeps the chat widget's conversation for one page session: an append-only message log
// and a pending flag that is set while the assistant's reply is awaited.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trafer/advocacia-web/internal/models"
)

// Transport produces the assistant's reply for a question. It is expected to never fail, but a panic
// inside it is still recovered by the session.
type Transport interface {
	Answer(ctx context.Context, question string) string
}

var (
	// ErrEmptyInput is returned by Submit for empty or whitespace-only input.
	ErrEmptyInput = errors.New("message is empty")
	// ErrPending is returned by Submit while a previous reply has not settled yet.
	ErrPending = errors.New("a reply is already pending")
)

// Replies substituted by the session itself.
const (
	// DefaultReply replaces an empty answer from the transport.
	DefaultReply = "Erro ao processar resposta."
	// TechnicalErrorReply replaces the answer when the transport panics.
	TechnicalErrorReply = "Erro de conexão. Tente novamente mais tarde."
)

const errLoggerKey = "err"

// Turn is an accepted submission. ReplyID is the ID the assistant message will carry once it settles,
// so a placeholder can be rendered for it right away.
type Turn struct {
	User    models.Message
	ReplyID string

	reply <-chan models.Message
}

// Reply returns a channel that receives the assistant message exactly once, when the turn settles.
func (t Turn) Reply() <-chan models.Message {
	return t.reply
}

// Session is the conversation state of one page session. It is Idle when no reply is pending and
// Pending from a user submission until the matching assistant message is appended.
type Session struct {
	id        string
	transport Transport
	onSettle  func(sessionID string, msg models.Message)
	logger    *slog.Logger

	mu         sync.Mutex
	messages   []models.Message
	pendingID  string
	lastActive time.Time
}

// NewSession creates an idle session with an empty log.
func NewSession(id string, transport Transport, logger *slog.Logger) *Session {
	return &Session{
		id:         id,
		transport:  transport,
		logger:     logger.With(slog.String("module", "chat"), slog.String("sessionID", id)),
		lastActive: time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Submit appends input as a user message and asks the transport for a reply in the background. The
// transport call is detached from ctx cancellation: once issued it runs until it settles.
//
// Empty or whitespace-only input returns ErrEmptyInput and a submission while another reply is pending
// returns ErrPending. Neither changes the log.
func (s *Session) Submit(ctx context.Context, input string) (Turn, error) {
	if strings.TrimSpace(input) == "" {
		return Turn{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.pendingID != "" {
		s.mu.Unlock()
		return Turn{}, ErrPending
	}
	um := models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleUser,
		Content:   input,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, um)
	s.pendingID = uuid.New().String()
	s.lastActive = um.Timestamp
	replyID := s.pendingID
	s.mu.Unlock()

	reply := make(chan models.Message, 1)
	go s.settle(context.WithoutCancel(ctx), input, replyID, reply)

	return Turn{
		User:    um,
		ReplyID: replyID,
		reply:   reply,
	}, nil
}

func (s *Session) settle(ctx context.Context, question, replyID string, reply chan<- models.Message) {
	content := s.ask(ctx, question)
	if content == "" {
		content = DefaultReply
	}

	am := models.Message{
		ID:        replyID,
		Role:      models.RoleAssistant,
		Content:   content,
		Timestamp: time.Now(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, am)
	s.pendingID = ""
	s.lastActive = am.Timestamp
	s.mu.Unlock()

	if s.onSettle != nil {
		s.onSettle(s.id, am)
	}
	reply <- am
}

func (s *Session) ask(ctx context.Context, question string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Transport panicked", slog.String(errLoggerKey, fmt.Sprint(r)))
			answer = TechnicalErrorReply
		}
	}()
	return s.transport.Answer(ctx, question)
}

// Messages returns a copy of the log in chronological order.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]models.Message, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// Pending reports whether a reply is awaited.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID != ""
}

// PendingReplyID returns the ID reserved for the awaited reply, or an empty string when idle.
func (s *Session) PendingReplyID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID
}

// idleSince reports whether the session has been inactive since before the given time. A session
// awaiting a reply is never idle.
func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingID == "" && s.lastActive.Before(t)
}
