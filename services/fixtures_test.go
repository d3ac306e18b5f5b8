package services_test

import (
	"log/slog"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var routingInstant = time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)

// harness wires real presence, registry and dispatcher around mocked storage.
type harness struct {
	ctrl      *gomock.Controller
	users     *mocks.MockIUserRepository
	messages  *mocks.MockIMessageRepository
	projector *mocks.MockIPresenceProjector
	presence  *runtime.PresenceRegistry
	registry  *runtime.Registry
	clock     *clock.Mock
	router    *services.MessageRouter
	binder    *services.SessionBinder
	metrics   *observability.Collector
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	clk := clock.NewMock()
	clk.Set(routingInstant)
	metrics := observability.NewCollector(prometheus.NewRegistry())
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(registry, metrics, slog.Default())

	h := &harness{
		ctrl:      ctrl,
		users:     mocks.NewMockIUserRepository(ctrl),
		messages:  mocks.NewMockIMessageRepository(ctrl),
		projector: mocks.NewMockIPresenceProjector(ctrl),
		presence:  runtime.NewPresenceRegistry(),
		registry:  registry,
		clock:     clk,
		metrics:   metrics,
	}
	h.router = services.NewMessageRouter(services.MessageRouterDeps{
		Presence:         h.presence,
		Messages:         h.messages,
		Dispatcher:       dispatcher,
		Clock:            clk,
		Metrics:          metrics,
		Log:              slog.Default(),
		MaxContentLength: 100,
	})
	h.binder = services.NewSessionBinder(services.SessionBinderDeps{
		Users:      h.users,
		Messages:   h.messages,
		Presence:   h.presence,
		Registry:   registry,
		Dispatcher: dispatcher,
		Projector:  h.projector,
		Clock:      clk,
		Metrics:    metrics,
		Log:        slog.Default(),
	})
	return h
}

// connect opens a fake connection observing the broadcast destination.
func (h *harness) connect(connectionID string) *sink.ConnectionSink {
	s := sink.NewConnectionSink(16)
	h.registry.Subscribe(connectionID, s, domain.Broadcast)
	return s
}

// storeAssigningIDs makes the message mock behave like the badger repository.
func (h *harness) storeAssigningIDs() {
	var next int64
	h.messages.EXPECT().StoreMessage(gomock.Any()).DoAndReturn(func(msg domain.Message) (domain.Message, error) {
		next++
		msg.ID = next
		return msg, nil
	}).AnyTimes()
}

func drain(s *sink.ConnectionSink) []domain.Delivery {
	var out []domain.Delivery
	for {
		select {
		case d := <-s.Deliveries:
			out = append(out, d)
		default:
			return out
		}
	}
}

func requireNoDelivery(t *testing.T, sinks ...*sink.ConnectionSink) {
	t.Helper()
	for _, s := range sinks {
		require.Empty(t, drain(s))
	}
}
