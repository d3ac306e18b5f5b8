package handler

import (
	"log/slog"
	"net/http"

	"chat-relay/auth"
	"chat-relay/infrastructure/http/middleware"
	"chat-relay/observability"
	"chat-relay/services"

	"github.com/go-chi/chi/v5"
)

// RouterDeps groups everything NewRouter wires together.
type RouterDeps struct {
	Gate *auth.Gate

	AuthService    services.IAuthService
	MessageRouter  services.IMessageRouter
	HistoryService services.IHistoryService
	Cookie         CookieConfig

	// Realtime serves the websocket upgrade on /ws.
	Realtime http.Handler
	// Metrics serves /metrics. Collector records per-route request metrics.
	Metrics   http.Handler
	Collector observability.MetricsCollector
	// Inspector is mounted under /debug when set.
	Inspector http.Handler

	Log *slog.Logger
}

// NewRouter builds the chi router.
//
// Middleware order:
//
//	Recovery → Gate → Logging
//
// The gate never answers on its own; routes that need a principal sit behind auth.RequirePrincipal.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Log))
	r.Use(deps.Gate.Middleware)
	r.Use(middleware.NewLoggingMiddleware(deps.Log, deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.Cookie, deps.Log)
	messageHandler := NewMessageHandler(deps.MessageRouter, deps.HistoryService, deps.Log)

	r.Get("/health", health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Realtime != nil {
		r.Method(http.MethodGet, "/ws", deps.Realtime)
	}
	if deps.Inspector != nil {
		r.Mount("/debug", deps.Inspector)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePrincipal)
			r.Post("/logout", authHandler.Logout)
			r.Get("/current-user", authHandler.CurrentUser)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrincipal)

		r.Get("/users/online", authHandler.OnlineUsers)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/private", messageHandler.PrivateHistory)
			r.Get("/public", messageHandler.PublicHistory)
			r.Get("/search", messageHandler.Search)
		})
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
