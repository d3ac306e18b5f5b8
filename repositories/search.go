//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"chat-relay/domain"

	"github.com/blugelabs/bluge"
)

const (
	fieldContent   = "content"
	fieldSender    = "sender"
	fieldTimestamp = "timestamp"
)

type IMessageIndex interface {
	Index(msg domain.Message) error
	Search(ctx context.Context, query SearchQuery) ([]int64, error)
}

// SearchQuery narrows a full-text lookup over broadcast messages.
// Sender is optional and matched exactly.
type SearchQuery struct {
	Text   string
	Sender string
	Limit  int
}

// MessageIndex keeps a bluge full-text index of broadcast message contents.
// Only ids are returned by Search; the message itself is read back from badger.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (i *MessageIndex) Index(msg domain.Message) error {
	if msg.ID == 0 {
		return fmt.Errorf("index message: missing id")
	}
	doc := bluge.NewDocument(strconv.FormatInt(msg.ID, 10)).
		AddField(bluge.NewTextField(fieldContent, msg.Content)).
		AddField(bluge.NewKeywordField(fieldSender, msg.Sender).StoreValue()).
		AddField(bluge.NewDateTimeField(fieldTimestamp, msg.Timestamp).StoreValue())
	return i.writer.Update(doc.ID(), doc)
}

func (i *MessageIndex) Search(ctx context.Context, query SearchQuery) ([]int64, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	q := bluge.NewBooleanQuery().AddMust(bluge.NewMatchQuery(text).SetField(fieldContent))
	if query.Sender != "" {
		q.AddMust(bluge.NewTermQuery(query.Sender).SetField(fieldSender))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			i.log.Warn("Unable to close index reader", "error", err)
		}
	}()

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}
	var ids []int64
	match, err := dmi.Next()
	for err == nil && match != nil {
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field != "_id" {
				return true
			}
			var id int64
			id, visitErr = strconv.ParseInt(string(value), 10, 64)
			if visitErr == nil {
				ids = append(ids, id)
			}
			return false
		})
		if err == nil {
			err = visitErr
		}
		if err != nil {
			break
		}
		match, err = dmi.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}
