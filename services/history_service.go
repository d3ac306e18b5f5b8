//go:generate go run go.uber.org/mock/mockgen -source=history_service.go -destination=../mocks/mock_history_service.go -package=mocks
package services

import (
	"context"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IHistoryService interface {
	PublicPage(ctx context.Context, cursor *string) (Page, error)
	Search(ctx context.Context, query repositories.SearchQuery) ([]domain.Message, error)
}

type Page struct {
	Messages []domain.Message `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

// HistoryService reads back broadcast traffic: cursor pages from badger and
// full-text lookups through the bluge index.
type HistoryService struct {
	messages repositories.IMessageRepository
	index    repositories.IMessageIndex
	log      *slog.Logger
}

func NewHistoryService(messages repositories.IMessageRepository, index repositories.IMessageIndex, log *slog.Logger) *HistoryService {
	return &HistoryService{messages: messages, index: index, log: log}
}

func (s *HistoryService) PublicPage(_ context.Context, cursor *string) (Page, error) {
	messages, next, err := s.messages.GetPublicMessages(cursor)
	if err != nil {
		return Page{}, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return Page{Messages: messages, Cursor: next}, nil
}

// Search resolves index hits against the message store, in relevance order.
// Hits whose message is gone are skipped.
func (s *HistoryService) Search(ctx context.Context, query repositories.SearchQuery) ([]domain.Message, error) {
	ids, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(ids))
	for _, id := range ids {
		msg, err := s.messages.GetMessage(id)
		if errors.Is(err, errors.ErrMessageNotFound) {
			s.log.Debug("Indexed message missing from store", "message_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
