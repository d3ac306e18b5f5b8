//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// MessageSink receives deliveries. Consume must not block the caller:
// a sink that cannot accept a delivery right away returns an error instead.
type MessageSink interface {
	Consume(ctx context.Context, d domain.Delivery) error
}

type IRegistry interface {
	Subscribe(connectionID string, sink MessageSink, destinations ...domain.Destination)
	Follow(connectionID string, destination domain.Destination)
	Unsubscribe(connectionID string)
	SinksFor(destination domain.Destination) []MessageSink
}

type IDispatcher interface {
	Dispatch(ctx context.Context, destination domain.Destination, msg domain.Message) error
}

type IPresenceRegistry interface {
	SetOnline(username, connectionID string)
	SetOffline(username string)
	SetOfflineIfOwner(username, connectionID string) bool
	IsOnline(username string) bool
	ListOnline() []string
	Lookup(username string) (domain.PresenceEntry, bool)
}

// IPresenceProjector commits presence transitions onto the stored identity.
type IPresenceProjector interface {
	Project(ctx context.Context, change domain.PresenceChange)
}
