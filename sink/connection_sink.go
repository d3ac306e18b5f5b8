package sink

import (
	"context"
	"fmt"

	"chat-relay/domain"
)

// ConnectionSink buffers deliveries for one realtime connection.
// The transport's write loop drains Deliveries.
type ConnectionSink struct {
	Deliveries chan domain.Delivery
}

func NewConnectionSink(bufferSize int) *ConnectionSink {
	return &ConnectionSink{Deliveries: make(chan domain.Delivery, bufferSize)}
}

// Consume never blocks: a full buffer means the client is too slow and the
// delivery is refused.
func (s *ConnectionSink) Consume(ctx context.Context, d domain.Delivery) error {
	select {
	case s.Deliveries <- d:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("connection buffer full (%d pending)", len(s.Deliveries))
	}
}
