//go:generate go run go.uber.org/mock/mockgen -source=session_binder.go -destination=../mocks/mock_session_binder.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"

	"github.com/benbjohnson/clock"
)

type ISessionBinder interface {
	Bind(ctx context.Context, connectionID, username string) (domain.Message, error)
	Release(ctx context.Context, connectionID string) (domain.Message, bool, error)
	Username(connectionID string) (string, bool)
}

// SessionBinder ties realtime connections to identities.
// A connection is UNBOUND until a successful Bind and goes back to UNBOUND on Release.
type SessionBinder struct {
	mu       sync.Mutex
	bindings map[string]string // map connection -> username

	users      repositories.IUserRepository
	messages   repositories.IMessageRepository
	presence   contract.IPresenceRegistry
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	projector  contract.IPresenceProjector
	clock      clock.Clock
	metrics    observability.MetricsCollector
	log        *slog.Logger
}

type SessionBinderDeps struct {
	Users      repositories.IUserRepository
	Messages   repositories.IMessageRepository
	Presence   contract.IPresenceRegistry
	Registry   contract.IRegistry
	Dispatcher contract.IDispatcher
	Projector  contract.IPresenceProjector
	Clock      clock.Clock
	Metrics    observability.MetricsCollector
	Log        *slog.Logger
}

func NewSessionBinder(deps SessionBinderDeps) *SessionBinder {
	return &SessionBinder{
		bindings:   make(map[string]string),
		users:      deps.Users,
		messages:   deps.Messages,
		presence:   deps.Presence,
		registry:   deps.Registry,
		dispatcher: deps.Dispatcher,
		projector:  deps.Projector,
		clock:      deps.Clock,
		metrics:    deps.Metrics,
		log:        deps.Log,
	}
}

// Bind joins the connection as username and announces it on the broadcast
// destination. The binding is claimed before the JOIN is persisted and rolled
// back if storage fails, so a refused Bind leaves no JOIN behind.
func (b *SessionBinder) Bind(ctx context.Context, connectionID, username string) (domain.Message, error) {
	if _, bound := b.Username(connectionID); bound {
		return domain.Message{}, errors.ErrAlreadyBound
	}
	if _, err := b.users.GetUserByUsername(username); err != nil {
		return domain.Message{}, fmt.Errorf("join as %q: %w", username, err)
	}

	b.mu.Lock()
	if _, bound := b.bindings[connectionID]; bound {
		b.mu.Unlock()
		return domain.Message{}, errors.ErrAlreadyBound
	}
	b.bindings[connectionID] = username
	b.mu.Unlock()

	join := domain.Message{Sender: username, Kind: domain.KindJoin}.WithDefaults(b.clock.Now())
	persisted, err := b.messages.StoreMessage(join)
	if err != nil {
		b.mu.Lock()
		delete(b.bindings, connectionID)
		b.mu.Unlock()
		return domain.Message{}, fmt.Errorf("persist join: %w", err)
	}

	if previous, ok := b.presence.Lookup(username); ok {
		b.log.Info("Username joined again, newer connection takes over",
			"username", username,
			"previous_connection_id", previous.ConnectionID,
			"connection_id", connectionID)
	}
	b.registry.Follow(connectionID, domain.PrivateDestination(username))
	b.presence.SetOnline(username, connectionID)
	b.metrics.SetOnlineUsers(len(b.presence.ListOnline()))
	b.projector.Project(ctx, domain.PresenceChange{Username: username, Online: true})

	_ = b.dispatcher.Dispatch(ctx, domain.Broadcast, persisted)
	b.log.Info("User joined", "username", username, "connection_id", connectionID)
	return persisted, nil
}

// Release unbinds a closing connection. It reports false when nothing was
// announced: either the connection never joined, or a newer connection owns
// the username and presence is left untouched.
func (b *SessionBinder) Release(ctx context.Context, connectionID string) (domain.Message, bool, error) {
	b.mu.Lock()
	username, bound := b.bindings[connectionID]
	delete(b.bindings, connectionID)
	b.mu.Unlock()
	if !bound {
		return domain.Message{}, false, nil
	}

	if !b.presence.SetOfflineIfOwner(username, connectionID) {
		b.log.Debug("Stale connection released", "username", username, "connection_id", connectionID)
		return domain.Message{}, false, nil
	}
	b.metrics.SetOnlineUsers(len(b.presence.ListOnline()))
	b.projector.Project(ctx, domain.PresenceChange{Username: username, Online: false})

	leave := domain.Message{Sender: username, Kind: domain.KindLeave}.WithDefaults(b.clock.Now())
	_ = b.dispatcher.Dispatch(ctx, domain.Broadcast, leave)
	b.log.Info("User left", "username", username, "connection_id", connectionID)
	return leave, true, nil
}

func (b *SessionBinder) Username(connectionID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	username, ok := b.bindings[connectionID]
	return username, ok
}
