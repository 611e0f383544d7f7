// Package server provides the HTTP admission API for PromptGate.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"promptgate/pkg/config"
	"promptgate/pkg/limits"
	"promptgate/pkg/server/middleware"
	"promptgate/pkg/telemetry/metrics"
)

// Server is the HTTP admission server.
type Server struct {
	config       *config.ServerConfig
	metricsCfg   *config.MetricsConfig
	manager      *limits.Manager
	collector    *metrics.Collector
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.Mutex
	isRunning    bool
}

// NewServer creates a new admission server. The collector may be nil
// when the metrics endpoint is disabled.
func NewServer(cfg *config.ServerConfig, metricsCfg *config.MetricsConfig, manager *limits.Manager, collector *metrics.Collector) *Server {
	return &Server{
		config:     cfg,
		metricsCfg: metricsCfg,
		manager:    manager,
		collector:  collector,
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Routes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting admission server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		s.isRunning = false
		s.mu.Unlock()

		if !running || s.httpServer == nil {
			return
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		slog.Info("shutting down admission server", "timeout", s.config.ShutdownTimeout)
		if shutdownErr := s.httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			err = fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
		}
	})
	return err
}

// Routes builds the router with the full middleware chain. Exposed for
// handler tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/admission/check", s.handleCheck)
	mux.HandleFunc("GET /v1/admission/status/{identifier}", s.handleStatus)
	mux.HandleFunc("POST /v1/admission/reset/{identifier}", s.handleReset)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.metricsCfg != nil && s.metricsCfg.Enabled && s.collector != nil {
		mux.Handle("GET "+s.metricsCfg.Path, s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.RequestID(handler)
	return handler
}
