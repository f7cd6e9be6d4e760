package docqa

import (
	"context"
	"time"
	"unicode"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation represents a chat thread.
type Conversation struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Message represents a single turn in a conversation. Messages are
// append-only; creation order is the only ordering guarantee.
type Message struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversationId"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	Citations      []Citation `json:"citations,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Validate returns an error if the message contains invalid fields.
func (m *Message) Validate() error {
	if m.ConversationID == 0 {
		return Errorf(EINVALID, "message conversation ID required")
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return Errorf(EINVALID, "message role must be %q or %q", RoleUser, RoleAssistant)
	}
	if m.Content == "" {
		return Errorf(EINVALID, "message content required")
	}
	return nil
}

// ConversationService represents a service for managing conversations.
type ConversationService interface {
	// CreateConversation creates a new conversation.
	CreateConversation(ctx context.Context, conv *Conversation) error

	// FindConversationByID retrieves a conversation by ID.
	// Returns ENOTFOUND if conversation does not exist.
	FindConversationByID(ctx context.Context, id int64) (*Conversation, error)

	// FindConversations retrieves conversations ordered by most recent
	// activity.
	FindConversations(ctx context.Context, filter ConversationFilter) ([]*Conversation, error)

	// UpdateConversationTitle renames a conversation.
	// Returns ENOTFOUND if conversation does not exist.
	UpdateConversationTitle(ctx context.Context, id int64, title string) error

	// DeleteConversation permanently removes a conversation and its messages.
	// Returns ENOTFOUND if conversation does not exist.
	DeleteConversation(ctx context.Context, id int64) error
}

// ConversationFilter represents a filter for FindConversations.
// Title matches against decrypted conversation titles.
type ConversationFilter struct {
	Title *string `json:"title"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// MessageService represents a service for managing messages.
type MessageService interface {
	// CreateMessage appends a message to its conversation, bumping the
	// conversation's message count and updated_at in the same transaction.
	CreateMessage(ctx context.Context, msg *Message) error

	// FindMessages retrieves all messages of a conversation in creation
	// order.
	FindMessages(ctx context.Context, conversationID int64) ([]*Message, error)

	// SearchMessages retrieves messages whose content contains the query.
	// The match runs over decrypted content when the vault is enabled.
	SearchMessages(ctx context.Context, query string, limit int) ([]*Message, error)
}

// AutoTitle derives a conversation title from the first user message:
// the message trimmed to at most 50 characters on a word boundary.
func AutoTitle(content string) string {
	const maxLen = 50

	title := make([]rune, 0, maxLen)
	for _, r := range content {
		if unicode.IsSpace(r) {
			r = ' '
		}
		title = append(title, r)
		if len(title) >= maxLen {
			break
		}
	}

	s := string(title)
	if len([]rune(content)) > maxLen {
		// Cut back to the last word boundary when we truncated mid-word.
		if i := lastSpace(s); i > 0 {
			s = s[:i]
		}
		s += "..."
	}
	if s == "" {
		return "New Conversation"
	}
	return s
}

func lastSpace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}
