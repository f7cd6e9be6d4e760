package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.ConversationService = (*ConversationService)(nil)

// ConversationService is a mock implementation of docqa.ConversationService.
type ConversationService struct {
	CreateConversationFn      func(ctx context.Context, conv *docqa.Conversation) error
	FindConversationByIDFn    func(ctx context.Context, id int64) (*docqa.Conversation, error)
	FindConversationsFn       func(ctx context.Context, filter docqa.ConversationFilter) ([]*docqa.Conversation, error)
	UpdateConversationTitleFn func(ctx context.Context, id int64, title string) error
	DeleteConversationFn      func(ctx context.Context, id int64) error
}

func (s *ConversationService) CreateConversation(ctx context.Context, conv *docqa.Conversation) error {
	return s.CreateConversationFn(ctx, conv)
}

func (s *ConversationService) FindConversationByID(ctx context.Context, id int64) (*docqa.Conversation, error) {
	return s.FindConversationByIDFn(ctx, id)
}

func (s *ConversationService) FindConversations(ctx context.Context, filter docqa.ConversationFilter) ([]*docqa.Conversation, error) {
	return s.FindConversationsFn(ctx, filter)
}

func (s *ConversationService) UpdateConversationTitle(ctx context.Context, id int64, title string) error {
	return s.UpdateConversationTitleFn(ctx, id, title)
}

func (s *ConversationService) DeleteConversation(ctx context.Context, id int64) error {
	return s.DeleteConversationFn(ctx, id)
}

var _ docqa.MessageService = (*MessageService)(nil)

// MessageService is a mock implementation of docqa.MessageService.
type MessageService struct {
	CreateMessageFn  func(ctx context.Context, msg *docqa.Message) error
	FindMessagesFn   func(ctx context.Context, conversationID int64) ([]*docqa.Message, error)
	SearchMessagesFn func(ctx context.Context, query string, limit int) ([]*docqa.Message, error)
}

func (s *MessageService) CreateMessage(ctx context.Context, msg *docqa.Message) error {
	return s.CreateMessageFn(ctx, msg)
}

func (s *MessageService) FindMessages(ctx context.Context, conversationID int64) ([]*docqa.Message, error) {
	return s.FindMessagesFn(ctx, conversationID)
}

func (s *MessageService) SearchMessages(ctx context.Context, query string, limit int) ([]*docqa.Message, error) {
	return s.SearchMessagesFn(ctx, query, limit)
}
