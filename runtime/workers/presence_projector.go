package workers

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/repositories"
)

// PresenceProjector copies presence transitions onto the stored identities.
// Pending transitions are coalesced per username, so only the latest one for a
// user is ever written and an older state can never overwrite a newer one.
// Once Run has returned, Project writes synchronously.
type PresenceProjector struct {
	users   repositories.IUserRepository
	metrics observability.MetricsCollector
	log     *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	stopped bool
	wake    chan struct{}

	// writeMu orders batch writes and post-stop writes.
	writeMu sync.Mutex
}

// sizeHint preallocates room for that many distinct pending usernames.
func NewPresenceProjector(users repositories.IUserRepository, sizeHint int,
	metrics observability.MetricsCollector, log *slog.Logger) *PresenceProjector {
	return &PresenceProjector{
		users:   users,
		metrics: metrics,
		log:     log,
		pending: make(map[string]bool, max(sizeHint, 0)),
		wake:    make(chan struct{}, 1),
	}
}

func (p *PresenceProjector) Project(_ context.Context, change domain.PresenceChange) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		p.metrics.RecordProjectionFallback()
		p.writeMu.Lock()
		defer p.writeMu.Unlock()
		p.commit(change.Username, change.Online)
		return
	}
	p.pending[change.Username] = change.Online
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *PresenceProjector) Run(ctx context.Context) error {
	for {
		select {
		case <-p.wake:
			p.flush(false)
		case <-ctx.Done():
			p.flush(true)
			return nil
		}
	}
}

// flush writes every pending change. With stop set, later changes bypass the
// queue and are written by Project itself.
func (p *PresenceProjector) flush(stop bool) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]bool, len(batch))
	if stop {
		p.stopped = true
	}
	p.mu.Unlock()

	for username, online := range batch {
		p.commit(username, online)
	}
}

func (p *PresenceProjector) commit(username string, online bool) {
	if err := p.users.SetOnline(username, online); err != nil {
		p.log.Warn("Unable to project presence",
			"username", username,
			"online", online,
			"error", err)
	}
}
