package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/handlers"
	"mercator-hq/feedback/pkg/api/middleware"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/telemetry/health"
	"mercator-hq/feedback/pkg/telemetry/metrics"
	"mercator-hq/feedback/pkg/telemetry/tracing"
)

// Dependencies are the services the routes are served by. Analyzer,
// Analytics, Accounts and Enforcer are required.
type Dependencies struct {
	Analyzer  handlers.Analyzer
	Analytics handlers.AnalyticsReader
	Accounts  handlers.AccountService
	Enforcer  auth.Enforcer

	// Health serves /health, /ready and /version. Nil registers a checker
	// with no checks.
	Health *health.Checker

	// Metrics serves the metrics endpoint and records per-route metrics.
	// May be nil.
	Metrics *metrics.Collector

	// TLS enables HTTPS on the listener when set. Its GetCertificate or
	// Certificates must be populated.
	TLS *tls.Config

	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP server of the feedback analyzer.
type Server struct {
	config       config.ServerConfig
	metricsCfg   config.MetricsConfig
	deps         Dependencies
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	return &Server{
		config:       cfg.Server,
		metricsCfg:   cfg.Telemetry.Metrics,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is
// cancelled, SIGINT or SIGTERM arrives, Stop is called, or the listener
// fails. It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
		BaseContext:    func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
		TLSConfig:      s.deps.TLS,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting feedback api server",
			"address", ln.Addr().String(),
			"tls", httpServer.TLSConfig != nil,
		)

		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.markStopped()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start or Serve to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server, waiting up to
// server.shutdown_timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.RUnlock()
		if !running {
			return
		}

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.markStopped()
		slog.Info("feedback api server stopped")
	})

	return shutdownErr
}

func (s *Server) markStopped() {
	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	authMW := auth.NewAPIKeyMiddleware(
		s.deps.Enforcer,
		auth.DefaultSources(s.config.APIKeyHeader),
		api.WriteError,
	)

	public := map[string]http.Handler{
		"GET /api/status":         handlers.NewStatusHandler(),
		"POST /api/auth/register": handlers.NewRegisterHandler(s.deps.Accounts),
		"POST /api/auth/login":    handlers.NewLoginHandler(s.deps.Accounts),
	}
	protected := map[string]http.Handler{
		"POST /api/analyze":        handlers.NewAnalyzeHandler(s.deps.Analyzer),
		"GET /api/analytics":       handlers.NewAnalyticsHandler(s.deps.Analytics),
		"GET /api/analyses/export": handlers.NewExportHandler(s.deps.Analytics),
		"GET /api/user/profile":    handlers.NewProfileHandler(),
	}

	for pattern, h := range public {
		mux.Handle(pattern, middleware.InstrumentRoute(pattern, s.deps.Metrics)(h))
	}
	for pattern, h := range protected {
		mux.Handle(pattern, middleware.InstrumentRoute(pattern, s.deps.Metrics)(authMW.Handle(h)))
	}

	health.Register(mux, s.deps.Health, s.deps.Version, s.deps.Commit, s.deps.BuildTime)

	if s.metricsCfg.Enabled && s.deps.Metrics != nil {
		mux.Handle("GET "+s.metricsCfg.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = middleware.BodyLimitMiddleware(s.config.MaxBodyBytes)(handler)
	handler = middleware.CORSMiddleware(middleware.CORSConfigFrom(s.config.CORS))(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = tracing.HTTPMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address, or "" before Serve.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
