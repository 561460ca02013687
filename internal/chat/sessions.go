package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/trafer/advocacia-web/internal/models"
)

// Sessions is the registry of page sessions that have a conversation. A session is registered on its
// first accepted submission and removed by Evict once it has been idle for longer than the TTL.
type Sessions struct {
	transport Transport
	onSettle  func(sessionID string, msg models.Message)
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates an empty registry. onSettle, if not nil, is called from the settling goroutine
// each time an assistant message is appended to any session.
func NewSessions(transport Transport, onSettle func(sessionID string, msg models.Message), logger *slog.Logger) *Sessions {
	return &Sessions{
		transport: transport,
		onSettle:  onSettle,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the session with the given ID.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	return sess, ok
}

// Submit sends input to the session with the given ID, registering the session first when it does not
// exist yet. Empty input returns ErrEmptyInput without registering anything.
func (s *Sessions) Submit(ctx context.Context, id, input string) (Turn, error) {
	if strings.TrimSpace(input) == "" {
		return Turn{}, ErrEmptyInput
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = NewSession(id, s.transport, s.logger)
		sess.onSettle = s.onSettle
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	return sess.Submit(ctx, input)
}

// Len returns the number of registered sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes the sessions that have had no activity for ttl as of now and returns how many were
// removed. Sessions awaiting a reply are kept.
func (s *Sessions) Evict(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunEviction calls Evict every quarter of ttl until ctx is done. A non-positive ttl disables eviction.
func (s *Sessions) RunEviction(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Evict(now, ttl); n > 0 {
				s.logger.Debug("Idle sessions evicted",
					slog.Int("evicted", n),
					slog.Int("remaining", s.Len()))
			}
		}
	}
}
