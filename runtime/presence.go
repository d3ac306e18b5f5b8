package runtime

import (
	"slices"
	"sync"

	"chat-relay/domain"

	"github.com/samber/lo"
)

// PresenceRegistry is the authoritative username -> live connection table.
// It holds at most one entry per username; a later SetOnline overwrites.
type PresenceRegistry struct {
	mu      sync.RWMutex
	entries map[string]domain.PresenceEntry
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{entries: make(map[string]domain.PresenceEntry)}
}

func (p *PresenceRegistry) SetOnline(username, connectionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[username] = domain.PresenceEntry{Username: username, ConnectionID: connectionID}
}

// SetOffline is idempotent.
func (p *PresenceRegistry) SetOffline(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, username)
}

// SetOfflineIfOwner removes the entry only when it still points at connectionID.
// It reports whether the entry was removed.
func (p *PresenceRegistry) SetOfflineIfOwner(username, connectionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[username]
	if !ok || entry.ConnectionID != connectionID {
		return false
	}
	delete(p.entries, username)
	return true
}

func (p *PresenceRegistry) IsOnline(username string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.entries[username]
	return ok
}

// ListOnline returns a sorted snapshot of present usernames.
func (p *PresenceRegistry) ListOnline() []string {
	p.mu.RLock()
	usernames := lo.Keys(p.entries)
	p.mu.RUnlock()
	slices.Sort(usernames)
	return usernames
}

func (p *PresenceRegistry) Lookup(username string) (domain.PresenceEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[username]
	return entry, ok
}
