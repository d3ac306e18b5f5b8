package sink

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/repositories"
)

// IndexSink feeds broadcast chat messages to the full-text index.
// It is registered as a permanent dispatcher sink and runs as a supervised worker.
type IndexSink struct {
	index   repositories.IMessageIndex
	pending chan domain.Message
	log     *slog.Logger
}

func NewIndexSink(index repositories.IMessageIndex, bufferSize int, log *slog.Logger) *IndexSink {
	return &IndexSink{index: index, pending: make(chan domain.Message, bufferSize), log: log}
}

func (s *IndexSink) Consume(_ context.Context, d domain.Delivery) error {
	if d.Destination != domain.Broadcast || d.Message.Kind != domain.KindChat {
		return nil
	}
	select {
	case s.pending <- d.Message:
		return nil
	default:
		return fmt.Errorf("index queue full, message %d not indexed", d.Message.ID)
	}
}

func (s *IndexSink) Run(ctx context.Context) error {
	for {
		select {
		case msg := <-s.pending:
			if err := s.index.Index(msg); err != nil {
				s.log.Warn("Unable to index message", "message_id", msg.ID, "error", err)
			}
		case <-ctx.Done():
			s.log.Debug("Context done, stopping indexing")
			return nil
		}
	}
}
