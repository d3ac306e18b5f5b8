//go:generate go run go.uber.org/mock/mockgen -source=message_router.go -destination=../mocks/mock_message_router.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"

	"github.com/benbjohnson/clock"
)

type IMessageRouter interface {
	HandleBroadcast(ctx context.Context, msg domain.Message) (RouteResult, error)
	HandlePrivate(ctx context.Context, msg domain.Message) (RouteResult, error)
	HandleTyping(ctx context.Context, msg domain.Message) (RouteResult, error)
	FetchPrivateHistory(ctx context.Context, userA, userB string) ([]domain.Message, error)
}

// RouteResult tells the caller whether its message went out.
// Message is the persisted form when Outcome is Delivered.
type RouteResult struct {
	Outcome domain.Outcome
	Message domain.Message
}

// MessageRouter checks liveness, persists, then dispatches.
// Dropped messages are neither persisted nor dispatched; the returned error is
// reserved for invalid input and storage failures.
type MessageRouter struct {
	presence         contract.IPresenceRegistry
	messages         repositories.IMessageRepository
	dispatcher       contract.IDispatcher
	filter           moderation.ContentFilter
	clock            clock.Clock
	metrics          observability.MetricsCollector
	log              *slog.Logger
	maxContentLength int
}

type MessageRouterDeps struct {
	Presence         contract.IPresenceRegistry
	Messages         repositories.IMessageRepository
	Dispatcher       contract.IDispatcher
	Filter           moderation.ContentFilter
	Clock            clock.Clock
	Metrics          observability.MetricsCollector
	Log              *slog.Logger
	MaxContentLength int
}

func NewMessageRouter(deps MessageRouterDeps) *MessageRouter {
	filter := deps.Filter
	if filter == nil {
		filter = moderation.Passthrough{}
	}
	return &MessageRouter{
		presence:         deps.Presence,
		messages:         deps.Messages,
		dispatcher:       deps.Dispatcher,
		filter:           filter,
		clock:            deps.Clock,
		metrics:          deps.Metrics,
		log:              deps.Log,
		maxContentLength: deps.MaxContentLength,
	}
}

func (r *MessageRouter) HandleBroadcast(ctx context.Context, msg domain.Message) (RouteResult, error) {
	if err := r.checkKind(&msg, domain.KindChat); err != nil {
		return RouteResult{}, err
	}
	if !r.presence.IsOnline(msg.Sender) {
		return r.drop(msg, domain.DroppedSenderOffline), nil
	}
	persisted, err := r.persist(msg)
	if err != nil {
		return RouteResult{}, err
	}
	_ = r.dispatcher.Dispatch(ctx, domain.Broadcast, persisted)
	r.metrics.RecordRouted(persisted.Kind, domain.Delivered)
	return RouteResult{Outcome: domain.Delivered, Message: persisted}, nil
}

// HandlePrivate stores one PRIVATE_MESSAGE and delivers one copy to the
// receiver and one to the sender. The copies are independent: a refused copy
// is logged and counted, the other one still goes out.
func (r *MessageRouter) HandlePrivate(ctx context.Context, msg domain.Message) (RouteResult, error) {
	if err := r.checkKind(&msg, domain.KindPrivateMessage); err != nil {
		return RouteResult{}, err
	}
	if !r.presence.IsOnline(msg.Sender) {
		return r.drop(msg, domain.DroppedSenderOffline), nil
	}
	if !r.presence.IsOnline(msg.Receiver) {
		return r.drop(msg, domain.DroppedReceiverOffline), nil
	}
	persisted, err := r.persist(msg)
	if err != nil {
		return RouteResult{}, err
	}
	_ = r.dispatcher.Dispatch(ctx, domain.PrivateDestination(persisted.Receiver), persisted)
	_ = r.dispatcher.Dispatch(ctx, domain.PrivateDestination(persisted.Sender), persisted)
	r.metrics.RecordRouted(persisted.Kind, domain.Delivered)
	return RouteResult{Outcome: domain.Delivered, Message: persisted}, nil
}

// HandleTyping relays a typing notice on the broadcast destination. It is never persisted.
func (r *MessageRouter) HandleTyping(ctx context.Context, msg domain.Message) (RouteResult, error) {
	if err := r.checkKind(&msg, domain.KindTyping); err != nil {
		return RouteResult{}, err
	}
	if !r.presence.IsOnline(msg.Sender) {
		return r.drop(msg, domain.DroppedSenderOffline), nil
	}
	msg.Content = domain.DefaultContent
	msg = msg.WithDefaults(r.clock.Now())
	_ = r.dispatcher.Dispatch(ctx, domain.Broadcast, msg)
	return RouteResult{Outcome: domain.Delivered, Message: msg}, nil
}

// FetchPrivateHistory is symmetric in its arguments and ordered by timestamp, oldest first.
func (r *MessageRouter) FetchPrivateHistory(_ context.Context, userA, userB string) ([]domain.Message, error) {
	return r.messages.GetPrivateHistory(userA, userB)
}

// checkKind fills an empty kind and rejects a mismatching one.
func (r *MessageRouter) checkKind(msg *domain.Message, want domain.MessageKind) error {
	if msg.Kind == "" {
		msg.Kind = want
	}
	if msg.Kind != want {
		return fmt.Errorf("%w: kind %q routed as %s", errors.ErrInvalidInput, msg.Kind, want)
	}
	if r.maxContentLength > 0 && utf8.RuneCountInString(msg.Content) > r.maxContentLength {
		return errors.ErrContentTooLong
	}
	if !msg.Timestamp.IsZero() && !domain.TimestampInRange(msg.Timestamp) {
		return errors.ErrTimestampRange
	}
	return nil
}

func (r *MessageRouter) persist(msg domain.Message) (domain.Message, error) {
	msg = msg.WithDefaults(r.clock.Now())
	msg.Content = r.filter.Filter(msg.Content)
	persisted, err := r.messages.StoreMessage(msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("persist %s from %q: %w", msg.Kind, msg.Sender, err)
	}
	return persisted, nil
}

func (r *MessageRouter) drop(msg domain.Message, outcome domain.Outcome) RouteResult {
	r.log.Info("Message dropped",
		"kind", msg.Kind,
		"sender", msg.Sender,
		"receiver", msg.Receiver,
		"outcome", outcome.String())
	r.metrics.RecordRouted(msg.Kind, outcome)
	return RouteResult{Outcome: outcome}
}
