package models

import "time"

// Message is a single turn of the chat widget's conversation. Messages are immutable once created; the
// conversation log only ever grows by appending new ones.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Role represents the participant that authored a message.
type Role string

const (
	// RoleUser marks a question typed by the visitor.
	RoleUser Role = "user"
	// RoleAssistant marks a reply produced by the virtual assistant, including fallback replies.
	RoleAssistant Role = "assistant"
)

// Streaming states used by the page to tell a pending reply placeholder from a settled message.
const (
	StreamingStateLoading = "loading"
	StreamingStateEnded   = "ended"
)
