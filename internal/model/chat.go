package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents the sender of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Message is one entry of a conversation log. Content may grow while
// Streaming is true and is frozen afterwards.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Streaming bool      `json:"-"`
}

// NewMessage creates a message with a generated ID.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: at,
	}
}

// ChatContext is the aggregate snapshot sent along with chat traffic.
type ChatContext struct {
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalInvoices  int             `json:"total_invoices"`
	TotalSuppliers int             `json:"total_suppliers"`
}

// ChatSession is the handshake result of the chat service.
type ChatSession struct {
	SessionID    string `json:"session_id"`
	Status       string `json:"status"`
	WebsocketURL string `json:"websocket_url"`
}

// ChatHistoryEntry is one message of a server-side session history.
type ChatHistoryEntry struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatHistory is the server-side log of a session.
type ChatHistory struct {
	SessionID string             `json:"session_id"`
	Messages  []ChatHistoryEntry `json:"messages"`
}
