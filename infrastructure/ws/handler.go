package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Authenticator resolves an optional principal from the upgrade request.
type Authenticator interface {
	Authenticate(r *http.Request) (domain.Identity, bool)
}

type Config struct {
	BufferSize        int
	MessagesPerSecond float64
	MessageBurst      int
	MaxFrameBytes     int64
	WriteTimeout      time.Duration
	PongTimeout       time.Duration
	PingInterval      time.Duration
}

func (c Config) withDefaults() Config {
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	if c.MessagesPerSecond <= 0 {
		c.MessagesPerSecond = 10
	}
	if c.MessageBurst <= 0 {
		c.MessageBurst = 20
	}
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = 64 << 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongTimeout {
		c.PingInterval = c.PongTimeout * 9 / 10
	}
	return c
}

type Deps struct {
	Auth     Authenticator
	Binder   services.ISessionBinder
	Router   services.IMessageRouter
	Registry contract.IRegistry
	Metrics  observability.MetricsCollector
	Log      *slog.Logger
	Config   Config
}

// Handler upgrades GET /ws and runs one session per connection.
type Handler struct {
	auth     Authenticator
	binder   services.ISessionBinder
	router   services.IMessageRouter
	registry contract.IRegistry
	metrics  observability.MetricsCollector
	log      *slog.Logger
	cfg      Config
	upgrader websocket.Upgrader
	sessions sync.WaitGroup
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		auth:     deps.Auth,
		binder:   deps.Binder,
		router:   deps.Router,
		registry: deps.Registry,
		metrics:  deps.Metrics,
		log:      deps.Log,
		cfg:      deps.Config.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade refused", "error", err)
		return
	}
	h.sessions.Add(1)
	defer h.sessions.Done()

	id := uuid.NewString()
	s := &session{
		id:      id,
		conn:    conn,
		sink:    sink.NewConnectionSink(h.cfg.BufferSize),
		replies: make(chan any, h.cfg.BufferSize),
		limiter: rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.MessageBurst),
		binder:  h.binder,
		router:  h.router,
		cfg:     h.cfg,
		log:     h.log.With("connection_id", id),
	}
	if h.auth != nil {
		s.principal, s.authenticated = h.auth.Authenticate(r)
	}

	h.registry.Subscribe(s.id, s.sink, domain.Broadcast)
	h.metrics.RecordConnectionOpened()
	s.log.Debug("Connection opened", "authenticated", s.authenticated)

	ctx := r.Context()
	err = s.run(ctx)

	h.registry.Unsubscribe(s.id)
	if _, _, releaseErr := h.binder.Release(context.WithoutCancel(ctx), s.id); releaseErr != nil {
		s.log.Error("Unable to release connection", "error", releaseErr)
	}
	h.metrics.RecordConnectionClosed()
	s.log.Debug("Connection closed", "reason", err)
}

// Wait blocks until every session has been released. Sessions end when the
// request context (the server base context) is canceled.
func (h *Handler) Wait() {
	h.sessions.Wait()
}
