package services_test

import (
	"context"
	"log/slog"
	"testing"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"chat-relay/services"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHistoryService_Search_SkipsMissingMessages(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	index := mocks.NewMockIMessageIndex(ctrl)
	svc := services.NewHistoryService(messages, index, slog.Default())

	query := repositories.SearchQuery{Text: "release"}
	index.EXPECT().Search(gomock.Any(), query).Return([]int64{2, 5}, nil)
	messages.EXPECT().GetMessage(int64(2)).Return(domain.Message{ID: 2, Content: "release notes"}, nil)
	messages.EXPECT().GetMessage(int64(5)).Return(domain.Message{}, errors.ErrMessageNotFound)

	found, err := svc.Search(context.Background(), query)

	req.NoError(err)
	req.Len(found, 1)
	req.Equal(int64(2), found[0].ID)
}

func TestHistoryService_PublicPage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	svc := services.NewHistoryService(messages, mocks.NewMockIMessageIndex(ctrl), slog.Default())

	messages.EXPECT().GetPublicMessages(nil).Return(nil, nil, nil)
	page, err := svc.PublicPage(context.Background(), nil)
	req.NoError(err)
	req.NotNil(page.Messages)
	req.Nil(page.Cursor)

	cursor := lo.ToPtr("0001:0002")
	messages.EXPECT().GetPublicMessages(cursor).Return([]domain.Message{{ID: 1}}, lo.ToPtr("0000:0001"), nil)
	page, err = svc.PublicPage(context.Background(), cursor)
	req.NoError(err)
	req.Len(page.Messages, 1)
	req.Equal("0000:0001", *page.Cursor)
}
