// Package chat provides transcript storage for the streamsect application
package chat

import (
	"time"

	"github.com/tildaslashalef/streamsect/internal/reply"
	"github.com/tildaslashalef/streamsect/internal/ulid"
)

// Role represents the author of a message
type Role string

// Message roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known message roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Session represents a stored conversation
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a new session with the given title
func NewSession(title string) *Session {
	now := time.Now()

	return &Session{
		ID:        ulid.SessionID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetTitle sets the title for the session
func (s *Session) SetTitle(title string) {
	s.Title = title
	s.UpdatedAt = time.Now()
}

// Message represents a single turn in a session. Content always holds the
// raw transcript text; assistant messages are decomposed into sections on
// load, never at rest.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a new message for the given session
func NewMessage(sessionID string, role Role, content, model string) *Message {
	return &Message{
		ID:        ulid.MessageID(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Model:     model,
		CreatedAt: time.Now(),
	}
}

// ParsedMessage pairs a stored message with its decomposed sections.
// Sections is nil for user messages.
type ParsedMessage struct {
	Message  *Message      `json:"message"`
	Sections *reply.Result `json:"sections,omitempty"`
}
