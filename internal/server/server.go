// Package server hosts the HTTP process for the word-chain game: the
// operation endpoint, the SSE and WebSocket push streams, and the wiring
// between the lobby engine, the turn coordinator, and the dictionary
// client.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/stakahashi/shiritori.space/internal/jisho"
	"github.com/stakahashi/shiritori.space/internal/jisho/cache"
	"github.com/stakahashi/shiritori.space/internal/lobby"
	"github.com/stakahashi/shiritori.space/internal/platform/timeouts"
	"github.com/stakahashi/shiritori.space/internal/shiritori"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config defines the inputs for the game server process.
type Config struct {
	HTTPAddr string

	MaxLobbies  int
	MaxPlayers  int
	LobbyIdle   time.Duration
	PlayerGrace time.Duration

	// JishoBaseURL overrides the dictionary endpoint, mainly for tests.
	JishoBaseURL string
	// DictCachePath enables the on-disk verdict cache when non-empty.
	DictCachePath string

	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the game HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	registry        *lobby.Registry
	store           *cache.Store
}

// NewServer wires the engine, the coordinator, and the dictionary client
// into an HTTP server ready to listen.
func NewServer(config Config) (*Server, error) {
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	var store *cache.Store
	if config.DictCachePath != "" {
		var err error
		store, err = cache.Open(config.DictCachePath)
		if err != nil {
			return nil, fmt.Errorf("open verdict cache: %w", err)
		}
	}

	var verdicts jisho.VerdictStore
	if store != nil {
		verdicts = store
	}
	coordinator := shiritori.NewCoordinator(jisho.NewClient(config.JishoBaseURL, verdicts))
	registry := lobby.NewRegistry(lobby.Config{
		MaxLobbies:  config.MaxLobbies,
		MaxPlayers:  config.MaxPlayers,
		LobbyIdle:   config.LobbyIdle,
		PlayerGrace: config.PlayerGrace,
	}, coordinator)
	coordinator.Bind(registry)

	return &Server{
		httpAddr:        config.HTTPAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              config.HTTPAddr,
			Handler:           otelhttp.NewHandler(newHandler(registry), "server"),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
		registry: registry,
		store:    store,
	}, nil
}

// Run builds a server from config and serves until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init game server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve game: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("game server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("game server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.registry != nil {
		s.registry.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close verdict cache: %v", err)
		}
	}
}
