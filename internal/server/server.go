package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/zkjiang/autoabstract/internal/abstract"
	"github.com/zkjiang/autoabstract/internal/api"
	"github.com/zkjiang/autoabstract/internal/config"
	"github.com/zkjiang/autoabstract/internal/home"
	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
	"github.com/zkjiang/autoabstract/internal/server/endpoints"
	"github.com/zkjiang/autoabstract/internal/session"
	"github.com/zkjiang/autoabstract/internal/svcctx"
)

// Server is the main AutoAbstract HTTP server. It owns the abstraction
// session and the extraction client, and rebuilds the client when the
// configuration changes on disk.
type Server struct {
	httpServer *http.Server
	session    *session.Session
	extractor  *hotExtractor
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8421)
	Port int
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
	// Home is the autoabstract home directory
	Home *home.Dir
	// Extractor overrides the OpenRouter client, mainly for tests
	Extractor abstract.Extractor
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8421
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	hot := &hotExtractor{}
	switch {
	case cfg.Extractor != nil:
		hot.swap(cfg.Extractor)
	case cfg.ConfigManager != nil:
		hot.swap(newClient(cfg.ConfigManager.Get(), cfg.Logger))

		// Watch for config changes
		logger := cfg.Logger
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			hot.swap(newClient(c, logger))
			logger.Info("extraction client reloaded from config")
		})
	default:
		return nil, errors.New("either Extractor or ConfigManager is required")
	}

	s := &Server{
		session:   session.New(),
		extractor: hot,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	s.services = &svcctx.Services{
		Session:   s.session,
		Extractor: hot,
		Config:    cfg.ConfigManager,
		Logger:    cfg.Logger,
		Home:      cfg.Home,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:     s.withServices(mux),
		ReadTimeout: 30 * time.Second,
		// Extraction holds the response open for the whole model round
		// trip, so the write timeout has to cover a slow completion.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

func newClient(c *config.Config, logger *slog.Logger) *abstract.OpenRouterClient {
	ec := c.ExtractorConfig()
	ec.Logger = logger
	return abstract.NewOpenRouterClient(ec)
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Session returns the abstraction session.
func (s *Server) Session() *session.Session {
	return s.session
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server's services are wired.
// Returns 503 Service Unavailable when they are not.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil || s.services.Session == nil || s.services.Extractor == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}

// hotExtractor is an extraction client that can be swapped out when the
// configuration is hot-reloaded. Requests in flight keep the client they
// started with.
type hotExtractor struct {
	mu     sync.RWMutex
	client abstract.Extractor
}

func (h *hotExtractor) swap(client abstract.Extractor) {
	h.mu.Lock()
	h.client = client
	h.mu.Unlock()
}

func (h *hotExtractor) Extract(ctx context.Context, note string, fields []schema.Field) (*record.Record, error) {
	h.mu.RLock()
	client := h.client
	h.mu.RUnlock()
	return client.Extract(ctx, note, fields)
}
