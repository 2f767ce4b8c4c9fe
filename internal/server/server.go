package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

// Config holds the HTTP server settings.
type Config struct {
	Address      string
	SnapshotRate float64 // spectator snapshots per second per attempt
	CORSOrigins  []string
}

// Server is the HTTP API server with the spectator feed.
type Server struct {
	config  Config
	metrics *Metrics
	hub     *Hub
	router  *chi.Mux
	logger  *log.Logger
}

// New creates a server. times may be nil when no database is open.
func New(cfg Config, levels LevelSource, times TimeSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	metrics := NewMetrics()
	hub := NewHub(cfg.SnapshotRate, metrics, logger)

	s := &Server{
		config:  cfg,
		metrics: metrics,
		hub:     hub,
		logger:  logger,
	}
	s.router = NewRouter(RouterConfig{
		Levels:      levels,
		Times:       times,
		Hub:         hub,
		Metrics:     metrics,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	})
	return s
}

// Observe returns the observers of one attempt: metrics and the
// spectator feed. It matches tui.Env.Observe.
func (s *Server) Observe(session string) level.Observer {
	return level.Observers{s.metrics.Observer(), s.hub.Observer(session)}
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the spectator hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Metrics returns the metric set.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.config.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
