package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.ConversationService = (*ConversationService)(nil)

// ConversationService implements docqa.ConversationService using SQLite.
type ConversationService struct {
	db    *DB
	codec codec
}

// NewConversationService creates a new ConversationService. Titles pass
// through cipher on the way in and out.
func NewConversationService(db *DB, cipher docqa.Cipher) *ConversationService {
	return &ConversationService{db: db, codec: codec{cipher: cipher}}
}

// CreateConversation creates a new conversation.
func (s *ConversationService) CreateConversation(ctx context.Context, conv *docqa.Conversation) error {
	if conv.Title == "" {
		conv.Title = "New Conversation"
	}
	now := time.Now().UTC()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.MessageCount = 0

	title, encrypted, err := s.codec.seal([]byte(conv.Title))
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (title, message_count, is_encrypted, created_at, updated_at)
		VALUES (?, 0, ?, ?, ?)
	`, title, encrypted, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return err
	}

	conv.ID, err = result.LastInsertId()
	return err
}

// FindConversationByID retrieves a conversation by ID.
func (s *ConversationService) FindConversationByID(ctx context.Context, id int64) (*docqa.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, message_count, is_encrypted, created_at, updated_at
		FROM conversations
		WHERE id = ?
	`, id)

	conv, err := s.scanConversation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "conversation not found")
	}
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// FindConversations retrieves conversations ordered by most recent
// activity. Title matching runs over decrypted titles, so it happens here
// rather than in SQL.
func (s *ConversationService) FindConversations(ctx context.Context, filter docqa.ConversationFilter) ([]*docqa.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, message_count, is_encrypted, created_at, updated_at
		FROM conversations
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*docqa.Conversation
	for rows.Next() {
		conv, err := s.scanConversation(rows.Scan)
		if err != nil {
			return nil, err
		}
		if filter.Title != nil && !strings.Contains(strings.ToLower(conv.Title), strings.ToLower(*filter.Title)) {
			continue
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return paginate(convs, filter.Offset, filter.Limit), nil
}

// UpdateConversationTitle renames a conversation.
func (s *ConversationService) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	if title == "" {
		return docqa.Errorf(docqa.EINVALID, "conversation title required")
	}

	sealed, encrypted, err := s.codec.seal([]byte(title))
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE conversations SET title = ?, is_encrypted = ? WHERE id = ?
	`, sealed, encrypted, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return docqa.Errorf(docqa.ENOTFOUND, "conversation not found")
	}
	return nil
}

// DeleteConversation permanently removes a conversation. Its messages go
// with it via the foreign key cascade.
func (s *ConversationService) DeleteConversation(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return docqa.Errorf(docqa.ENOTFOUND, "conversation not found")
	}
	return nil
}

func (s *ConversationService) scanConversation(scan func(dest ...any) error) (*docqa.Conversation, error) {
	var conv docqa.Conversation
	var title []byte
	var encrypted bool
	var createdAt, updatedAt string

	if err := scan(&conv.ID, &title, &conv.MessageCount, &encrypted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	plain, err := s.codec.open(title, encrypted)
	if err != nil {
		return nil, err
	}
	conv.Title = string(plain)

	if conv.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if conv.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &conv, nil
}

// paginate applies offset/limit to an already filtered slice.
func paginate[T any](items []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Compile-time interface verification.
var _ docqa.MessageService = (*MessageService)(nil)

// MessageService implements docqa.MessageService using SQLite.
type MessageService struct {
	db    *DB
	codec codec
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *DB, cipher docqa.Cipher) *MessageService {
	return &MessageService{db: db, codec: codec{cipher: cipher}}
}

// CreateMessage appends a message to its conversation, bumping the
// conversation's message count and updated_at in the same transaction.
func (s *MessageService) CreateMessage(ctx context.Context, msg *docqa.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	msg.CreatedAt = time.Now().UTC()

	content, encrypted, err := s.codec.seal([]byte(msg.Content))
	if err != nil {
		return err
	}

	var citations []byte
	if len(msg.Citations) > 0 {
		raw, err := json.Marshal(msg.Citations)
		if err != nil {
			return err
		}
		if citations, _, err = s.codec.seal(raw); err != nil {
			return err
		}
	}

	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE conversations SET message_count = message_count + 1, updated_at = ? WHERE id = ?
		`, msg.CreatedAt.Format(time.RFC3339), msg.ConversationID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return docqa.Errorf(docqa.ENOTFOUND, "conversation not found")
		}

		result, err = tx.ExecContext(ctx, `
			INSERT INTO messages (conversation_id, role, content, citations, is_encrypted, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, msg.ConversationID, msg.Role, content, citations, encrypted, msg.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}

		msg.ID, err = result.LastInsertId()
		return err
	})
}

// FindMessages retrieves all messages of a conversation in creation
// order.
func (s *MessageService) FindMessages(ctx context.Context, conversationID int64) ([]*docqa.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, citations, is_encrypted, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return s.collectMessages(rows, nil, 0)
}

// SearchMessages retrieves messages whose content contains the query,
// newest first. Content is decrypted before matching, so encrypted rows
// are searchable while the vault is unlocked.
func (s *MessageService) SearchMessages(ctx context.Context, query string, limit int) ([]*docqa.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "search query required")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, role, content, citations, is_encrypted, created_at
		FROM messages
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	match := strings.ToLower(query)
	return s.collectMessages(rows, func(msg *docqa.Message) bool {
		return strings.Contains(strings.ToLower(msg.Content), match)
	}, limit)
}

func (s *MessageService) collectMessages(rows *sql.Rows, keep func(*docqa.Message) bool, limit int) ([]*docqa.Message, error) {
	var msgs []*docqa.Message
	for rows.Next() {
		var msg docqa.Message
		var content, citations []byte
		var encrypted bool
		var createdAt string

		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &content,
			&citations, &encrypted, &createdAt); err != nil {
			return nil, err
		}

		plain, err := s.codec.open(content, encrypted)
		if err != nil {
			return nil, err
		}
		msg.Content = string(plain)

		if len(citations) > 0 {
			raw, err := s.codec.open(citations, encrypted)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(raw, &msg.Citations); err != nil {
				return nil, err
			}
		}

		if msg.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		if keep != nil && !keep(&msg) {
			continue
		}
		msgs = append(msgs, &msg)
		if limit > 0 && len(msgs) >= limit {
			break
		}
	}

	return msgs, rows.Err()
}
