package runtime

import (
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
)

type Set map[string]struct{}

// Registry maps destinations to the connections observing them.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]contract.MessageSink // map connection -> Sink
	members     map[domain.Destination]Set      // map destination to connections
	memberships map[string][]domain.Destination // map connection to destinations
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[string]contract.MessageSink),
		members:     make(map[domain.Destination]Set),
		memberships: make(map[string][]domain.Destination),
	}
}

// SinksFor resolves the sinks of every connection observing the destination.
// Returns nil if nobody observes it.
func (r *Registry) SinksFor(destination domain.Destination) []contract.MessageSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.members[destination]
	if !ok {
		return nil
	}
	sinks := make([]contract.MessageSink, 0, len(members))
	for connectionID := range members {
		if sink, exists := r.sessions[connectionID]; exists {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// Subscribe registers a connection's sink and the destinations it observes from the start.
func (r *Registry) Subscribe(connectionID string, sink contract.MessageSink, destinations ...domain.Destination) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[connectionID] = sink
	for _, destination := range destinations {
		r.follow(connectionID, destination)
	}
}

// Follow adds a destination to an already subscribed connection.
func (r *Registry) Follow(connectionID string, destination domain.Destination) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connectionID]; !ok {
		return
	}
	r.follow(connectionID, destination)
}

// Unsubscribe removes the connection from every destination and drops
// destinations nobody observes anymore.
func (r *Registry) Unsubscribe(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connectionID)
	for _, destination := range r.memberships[connectionID] {
		if members, ok := r.members[destination]; ok {
			delete(members, connectionID)
			if len(members) == 0 {
				delete(r.members, destination)
			}
		}
	}
	delete(r.memberships, connectionID)
}

func (r *Registry) follow(connectionID string, destination domain.Destination) {
	members, ok := r.members[destination]
	if !ok {
		members = make(Set)
		r.members[destination] = members
	}
	if _, already := members[connectionID]; already {
		return
	}
	members[connectionID] = struct{}{}
	r.memberships[connectionID] = append(r.memberships[connectionID], destination)
}
