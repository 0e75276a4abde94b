package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	apimiddleware "github.com/helixml/briefer/infrastructure/api/middleware"
)

// DefaultWriteTimeout is the response write deadline unless overridden.
const DefaultWriteTimeout = 90 * time.Second

// Server represents the HTTP API server.
type Server struct {
	router       chi.Router
	httpServer   *http.Server
	logger       *slog.Logger
	addr         string
	writeTimeout time.Duration
}

// NewServer creates a new API Server with request id, correlation id,
// request logging and panic recovery applied to every route.
func NewServer(addr string, logger *slog.Logger) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// No Timeout here: the MCP endpoint streams. Route groups that want one
	// add it themselves.
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(logger))
	router.Use(chimiddleware.Recoverer)

	return Server{
		router:       router,
		addr:         addr,
		logger:       logger,
		writeTimeout: DefaultWriteTimeout,
	}
}

// SetWriteTimeout changes the write deadline. It must outlast the slowest
// route timeout. Non-positive values are ignored.
func (s *Server) SetWriteTimeout(d time.Duration) {
	if d > 0 {
		s.writeTimeout = d
	}
}

// WriteTimeout returns the response write deadline.
func (s Server) WriteTimeout() time.Duration {
	return s.writeTimeout
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Inline generation can take as long as the AI timeout.
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}
