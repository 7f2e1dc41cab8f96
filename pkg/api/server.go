package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/shapeview/internal/logger"
	"github.com/marmos91/shapeview/pkg/api/handlers"
	"github.com/marmos91/shapeview/pkg/viewer"
)

// Server provides an HTTP server for the REST API.
//
// Endpoints:
//   - GET /health, /health/ready, /health/stores: Probes
//   - GET /api/v1/datasets/...: Dataset metadata and shape lookups
//
// The server supports graceful shutdown.
type Server struct {
	server       *http.Server
	viewer       *viewer.Viewer
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates a new API HTTP server.
//
// The server is created in a stopped state. Call Start() to begin serving requests.
//
// Defaults are applied here so the server works when created directly
// (e.g., in tests). This is idempotent with the defaults applied during
// config loading.
//
// Parameters:
//   - config: Server configuration (port, timeouts)
//   - v: Viewer serving lookups (may be nil for health endpoints only)
//   - canvas: Default image size for shape endpoints
func NewServer(config APIConfig, v *viewer.Viewer, canvas handlers.Canvas) *Server {
	config.ApplyDefaults()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(v, config, canvas),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		viewer: v,
		config: config,
	}
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the API HTTP server and blocks until the context is cancelled
// or an error occurs.
//
// When the context is cancelled, Start initiates graceful shutdown and returns.
//
// Returns:
//   - nil on graceful shutdown
//   - error if the server fails to start or shutdown encounters an error
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "port", s.config.Port)
		logger.Debug("API endpoints available",
			"health", fmt.Sprintf("http://localhost:%d/health", s.config.Port),
			"datasets", fmt.Sprintf("http://localhost:%d/api/v1/datasets", s.config.Port),
		)

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("API server shutdown signal received")
		// Don't use the cancelled ctx as it would cause immediate shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop initiates graceful shutdown of the API server.
//
// Stop is safe to call multiple times and safe to call concurrently with Start().
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("API server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
		} else {
			logger.Info("API server stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
