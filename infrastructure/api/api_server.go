package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/helixml/briefer"
	apimiddleware "github.com/helixml/briefer/infrastructure/api/middleware"
	v1 "github.com/helixml/briefer/infrastructure/api/v1"
	mcpinternal "github.com/helixml/briefer/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPVersion is the version the MCP endpoint reports to clients.
const MCPVersion = "1.0.0"

const (
	// DefaultRequestTimeout bounds /api requests when no AI timeout is
	// known. It is longer than the default AI timeout of 60s.
	DefaultRequestTimeout = 75 * time.Second

	requestTimeoutMargin = 15 * time.Second
)

// RequestTimeoutFor returns the /api route timeout for an AI timeout. The
// provider deadline always fires first, so a slow model surfaces as a
// generation error rather than a gateway timeout.
func RequestTimeoutFor(aiTimeout time.Duration) time.Duration {
	if aiTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return aiTimeout + requestTimeoutMargin
}

// WriteTimeoutFor returns a server write deadline that outlasts the given
// route timeout.
func WriteTimeoutFor(requestTimeout time.Duration) time.Duration {
	return requestTimeout + requestTimeoutMargin
}

// APIServer provides an HTTP API backed by a briefer Client.
type APIServer struct {
	client         *briefer.Client
	allowedOrigins []string
	requestTimeout time.Duration
	server         *Server
	router         chi.Router
	routerCalled   bool
	logger         *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given briefer Client.
// allowedOrigins configures CORS; an empty list allows every origin.
func NewAPIServer(client *briefer.Client, allowedOrigins []string) *APIServer {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &APIServer{
		client:         client,
		allowedOrigins: allowedOrigins,
		requestTimeout: DefaultRequestTimeout,
		logger:         client.Logger(),
	}
}

// WithRequestTimeout sets the timeout of the /api routes. Non-positive
// values keep the current one. Call it before mounting routes.
func (a *APIServer) WithRequestTimeout(d time.Duration) *APIServer {
	if d > 0 {
		a.requestTimeout = d
	}
	return a
}

// RequestTimeout returns the timeout applied to the /api routes.
func (a *APIServer) RequestTimeout() time.Duration {
	return a.requestTimeout
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Use(a.corsHandler())

	router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Health Check Complete"})
	})
	router.Get("/health", a.healthHandler)
	router.Get("/healthz", a.healthHandler)

	transcripts := v1.NewTranscriptsRouter(c)
	icebreakers := v1.NewIcebreakersRouter(c)

	router.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(a.requestTimeout))
		transcripts.Register(r)
		icebreakers.Register(r)
	})

	// MCP streams responses and sets session headers itself, so it must stay
	// outside the Timeout middleware.
	mcpSrv := mcpinternal.NewServer(c.Transcripts, c.Icebreakers, MCPVersion, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

func (a *APIServer) corsHandler() func(http.Handler) http.Handler {
	wildcard := false
	for _, o := range a.allowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{apimiddleware.HeaderCorrelationID, "Mcp-Session-Id"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}

func (a *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.client.Ping(r.Context()); err != nil {
		a.logger.Warn("health check failed", slog.Any("error", err))
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// DocsRouter returns a router for Swagger UI and the OpenAPI document.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	server.SetWriteTimeout(WriteTimeoutFor(a.requestTimeout))
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
