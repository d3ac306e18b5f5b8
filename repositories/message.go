//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chat-relay/domain"
	errs "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix    = "message:"
	publicPrefix     = "msg:public:"
	privatePrefix    = "msg:private:"
	messageSequence  = "seq:message"
	maxCursorPadding = "99999999999999999999:9999999999999999999"
)

type IMessageRepository interface {
	StoreMessage(msg domain.Message) (domain.Message, error)
	GetMessage(id int64) (domain.Message, error)
	GetPrivateHistory(userA, userB string) ([]domain.Message, error)
	GetPublicMessages(cursor *string) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db            *badger.DB
	seq           *badger.Sequence
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) (*MessageRepository, error) {
	seq, err := db.GetSequence([]byte(messageSequence), sequenceLease)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &MessageRepository{db: db, seq: seq, log: log, limitMessages: limitMessages}, nil
}

func (m *MessageRepository) Close() error {
	return m.seq.Release()
}

// StoreMessage assigns an id and persists the message.
// Besides the primary record, CHAT messages are indexed under
// "msg:public:{timestamp_ordered}:{id_padded}" and private messages under
// "msg:private:{lower}:{higher}:{timestamp_ordered}:{id_padded}", where lower and
// higher are the two usernames in byte order. Both directions of a conversation
// therefore share one prefix and scan in chronological order.
func (m *MessageRepository) StoreMessage(msg domain.Message) (domain.Message, error) {
	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, err
	}
	if !domain.TimestampInRange(msg.Timestamp) {
		return domain.Message{}, errs.ErrTimestampRange
	}
	msg.ID = int64(next) + 1
	value := encodeMessage(msg)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(msg.ID), value); err != nil {
			return err
		}
		switch msg.Kind {
		case domain.KindChat:
			return txn.Set([]byte(fmt.Sprintf("%s%s", publicPrefix, timelineSuffix(msg))), value)
		case domain.KindPrivateMessage:
			return txn.Set([]byte(conversationPrefix(msg.Sender, msg.Receiver)+timelineSuffix(msg)), value)
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (m *MessageRepository) GetMessage(id int64) (domain.Message, error) {
	var msg domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(messageKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errs.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			msg, err = decodeMessage(val)
			return err
		})
	})
	return msg, err
}

// GetPrivateHistory returns every private message exchanged between the two
// users, oldest first. Argument order does not matter.
func (m *MessageRepository) GetPrivateHistory(userA, userB string) ([]domain.Message, error) {
	messages := make([]domain.Message, 0)
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationPrefix(userA, userB))
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				msg, err := decodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetPublicMessages pages through broadcast messages newest first.
// The returned cursor is the key suffix of the last message of the page and
// resumes the scan right after it.
func (m *MessageRepository) GetPublicMessages(cursor *string) ([]domain.Message, *string, error) {
	var messages []domain.Message
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(publicPrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			seekKey = append([]byte(publicPrefix), []byte(maxCursorPadding)...)
		default:
			seekKey = append([]byte(publicPrefix), []byte(*cursor)...)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				msg, err := decodeMessage(val)
				if err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}

func messageKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%019d", messagePrefix, id))
}

func conversationPrefix(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s%s:%s:", privatePrefix, userA, userB)
}

// timelineSuffix flips the sign bit of the nanosecond timestamp so that
// byte order matches time order on both sides of the epoch.
func timelineSuffix(msg domain.Message) string {
	return fmt.Sprintf("%020d:%019d", uint64(msg.Timestamp.UnixNano())^(1<<63), msg.ID)
}
