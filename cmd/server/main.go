package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"chat-relay/auth"
	"chat-relay/infrastructure/grpc/server"
	"chat-relay/infrastructure/http/handler"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/sink"

	"github.com/benbjohnson/clock"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat-relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component explicitly, serves until a signal or a server
// failure, then closes resources in reverse order of opening.
func run() (code int, err error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logger.Error("Unable to release resources", "error", closeErr)
			err = multierr.Append(err, closeErr)
			if code == exitOK {
				code = exitRuntime
			}
		}
	}()

	// 2. Storage (BadgerDB + Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	closers = append(closers, func() error {
		logger.Info("Closing BadgerDB...")
		return db.Close()
	})

	users, err := repositories.NewUserRepository(db)
	if err != nil {
		return exitRuntime, fmt.Errorf("user repository: %w", err)
	}
	closers = append(closers, users.Close)

	messages, err := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	if err != nil {
		return exitRuntime, fmt.Errorf("message repository: %w", err)
	}
	closers = append(closers, messages.Close)

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	closers = append(closers, func() error {
		logger.Info("Closing Bluge...")
		return blugeWriter.Close()
	})
	index := repositories.NewMessageIndex(blugeWriter, logger)

	// 3. Metrics
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewCollector(promRegistry)

	// 4. Auth
	clk := clock.New()
	tokens := auth.NewTokenService([]byte(config.JWTSecret), config.AuthTokenDuration, clk)
	gate := auth.NewGate(tokens, users, auth.DefaultPublicRoutes(), logger)

	// 5. Routing core
	presence := runtime.NewPresenceRegistry()
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(registry, metrics, logger)
	indexSink := sink.NewIndexSink(index, config.IndexBufferSize, logger)
	dispatcher.RegisterSinks(indexSink)
	projector := workers.NewPresenceProjector(users, config.ProjectionBufferSize, metrics, logger)

	filter, err := buildFilter(config.CensoredWordsFile, charReplacement, logger)
	if err != nil {
		return exitConfig, err
	}

	binder := services.NewSessionBinder(services.SessionBinderDeps{
		Users:      users,
		Messages:   messages,
		Presence:   presence,
		Registry:   registry,
		Dispatcher: dispatcher,
		Projector:  projector,
		Clock:      clk,
		Metrics:    metrics,
		Log:        logger,
	})
	router := services.NewMessageRouter(services.MessageRouterDeps{
		Presence:         presence,
		Messages:         messages,
		Dispatcher:       dispatcher,
		Filter:           filter,
		Clock:            clk,
		Metrics:          metrics,
		Log:              logger,
		MaxContentLength: config.MaxContentLength,
	})
	authService := services.NewAuthService(users, tokens, presence, logger)
	historyService := services.NewHistoryService(messages, index, logger)

	// 6. Transports
	realtime := ws.NewHandler(ws.Deps{
		Auth:     gate,
		Binder:   binder,
		Router:   router,
		Registry: registry,
		Metrics:  metrics,
		Log:      logger,
		Config: ws.Config{
			BufferSize:        config.ConnectionBufferSize,
			MessagesPerSecond: config.MessagesPerSecond,
			MessageBurst:      config.MessageBurst,
		},
	})

	var inspector http.Handler
	if logger.Enabled(ctx, slog.LevelDebug) {
		inspector = internal.NewInspector(db, nil, func() map[string]any {
			return map[string]any{"online": len(presence.ListOnline())}
		}).Routes()
		logger.Info("Debug Badger inspector available", "path", "/debug/inspect")
	}

	g, gctx := errgroup.WithContext(ctx)

	httpAddress := fmt.Sprintf("%s:%d", config.Host, config.HTTPPort)
	httpServer := &http.Server{
		Addr: httpAddress,
		Handler: handler.NewRouter(&handler.RouterDeps{
			Gate:           gate,
			AuthService:    authService,
			MessageRouter:  router,
			HistoryService: historyService,
			Cookie:         handler.CookieConfig{MaxAge: config.AuthTokenDuration, Secure: config.SecureCookie},
			Realtime:       realtime,
			Metrics:        observability.Handler(promRegistry),
			Collector:      metrics,
			Inspector:      inspector,
			Log:            logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		// Hijacked websocket connections outlive Shutdown; they end with this context.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}
	healthServer := server.NewHealthServer(logger, gate)

	// 7. Run
	supervisor := workers.NewSupervisor(logger, metrics, config.RestartInterval)
	supervisor.Add(projector, indexSink)

	// Workers outlive the transports: connections released during shutdown
	// still project presence and feed the index.
	workersCtx, stopWorkers := context.WithCancel(context.WithoutCancel(gctx))
	defer stopWorkers()
	g.Go(func() error {
		supervisor.Run(workersCtx)
		return nil
	})
	g.Go(func() error {
		healthServer.Watch(gctx, func() error {
			if db.IsClosed() {
				return fmt.Errorf("badger is closed")
			}
			return nil
		}, config.HealthInterval)
		return nil
	})
	g.Go(func() error {
		return healthServer.Serve(grpcListener)
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", "address", httpAddress, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.ShutdownTimeout)
		defer cancel()
		healthServer.Stop()
		shutdownErr := httpServer.Shutdown(shutdownCtx)
		realtime.Wait()
		stopWorkers()
		return shutdownErr
	})

	if err := g.Wait(); err != nil {
		return exitRuntime, err
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// buildFilter loads the censored dictionary when one is configured.
// path may be a file or a directory of .txt files.
func buildFilter(path string, replacement rune, logger *slog.Logger) (moderation.ContentFilter, error) {
	if path == "" {
		return moderation.Passthrough{}, nil
	}
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	words, err := moderation.LoadWords(os.DirFS(dir), name)
	if err != nil {
		return nil, fmt.Errorf("censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(words, replacement, logger)
	if err != nil {
		return nil, fmt.Errorf("censored words: %w", err)
	}
	logger.Info("Content moderation enabled", "words", len(words))
	return moderator, nil
}
