package workers

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/observability"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceProjector_CommitsQueuedChanges(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	// The online change may be coalesced away, the offline one must land last
	committed := make(chan struct{})
	gomock.InOrder(
		users.EXPECT().SetOnline("alice", true).Return(nil).MaxTimes(1),
		users.EXPECT().SetOnline("alice", false).DoAndReturn(func(string, bool) error {
			close(committed)
			return nil
		}),
	)

	projector := NewPresenceProjector(users, 4, observability.NewCollector(prometheus.NewRegistry()), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = projector.Run(ctx) }()

	projector.Project(ctx, domain.PresenceChange{Username: "alice", Online: true})
	projector.Project(ctx, domain.PresenceChange{Username: "alice", Online: false})

	select {
	case <-committed:
	case <-time.After(time.Second):
		req.Fail("presence changes were not projected")
	}
}

func TestPresenceProjector_LatestChangePerUserWins(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	// Given alice joined then left before the worker ran, and bob joined
	projector := NewPresenceProjector(users, 1, observability.NewCollector(prometheus.NewRegistry()), slog.Default())
	projector.Project(context.Background(), domain.PresenceChange{Username: "alice", Online: true})
	projector.Project(context.Background(), domain.PresenceChange{Username: "bob", Online: true})
	projector.Project(context.Background(), domain.PresenceChange{Username: "alice", Online: false})

	// Then only the latest state of each user is stored
	users.EXPECT().SetOnline("alice", false).Return(nil).Times(1)
	users.EXPECT().SetOnline("bob", true).Return(nil).Times(1)

	// When the worker runs until shutdown
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.NoError(projector.Run(ctx))
}

func TestPresenceProjector_WritesSynchronouslyOnceStopped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	registry := prometheus.NewRegistry()
	projector := NewPresenceProjector(users, 4, observability.NewCollector(registry), slog.Default())

	// Given a worker that has already returned
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.NoError(projector.Run(ctx))

	// When a connection released during shutdown projects alice offline
	users.EXPECT().SetOnline("alice", false).Return(nil).Times(1)
	projector.Project(context.Background(), domain.PresenceChange{Username: "alice", Online: false})

	// Then the change was written before Project returned
	ctrl.Finish()
	req.NoError(testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP chat_presence_projection_sync_writes_total Presence changes written synchronously because the projector had stopped
# TYPE chat_presence_projection_sync_writes_total counter
chat_presence_projection_sync_writes_total 1
`), "chat_presence_projection_sync_writes_total"))
}

func TestPresenceProjector_DrainsOnShutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	projector := NewPresenceProjector(users, 4, observability.NewCollector(prometheus.NewRegistry()), slog.Default())
	projector.Project(context.Background(), domain.PresenceChange{Username: "alice", Online: false})

	users.EXPECT().SetOnline("alice", false).Return(errors.ErrUserNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.NoError(projector.Run(ctx))
}
