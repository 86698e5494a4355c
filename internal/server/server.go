// package server contains middleware & handlers for the compilations web service
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/compilations/internal/services"
	"github.com/desertthunder/compilations/internal/session"
	"github.com/desertthunder/compilations/internal/shared"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Route is one method + pattern served by a [Handler].
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Handler groups related endpoints. Implementations return every route they serve so they can be
// registered in one call.
type Handler interface {
	Routes() []Route
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers all routes of a Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options wires the services and settings behind a [Server].
type Options struct {
	Config   shared.ServerConfig
	Auth     services.Authenticator
	Library  services.Library
	Resolver services.MediaResolver
	Sessions session.Store
	Logger   *log.Logger
}

// Server wraps the HTTP server and its router.
type Server struct {
	http   *http.Server
	router *BasicRouter
	logger *log.Logger
}

// New builds the router, registers every handler and prepares the [http.Server].
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	urls := NewURLBuilder(opts.Config.PublicURL, opts.Config.ScriptName)
	sessions := NewSessions(SessionOpts{
		Store:  opts.Sessions,
		TTL:    opts.Config.SessionTTL,
		Secure: opts.Config.CookieSecure,
		Path:   urls.Path("/"),
		Logger: shared.WithLogger(logger, "component", "sessions"),
	})

	router := NewBasicRouter()
	router.Use(middleware.RequestID, middleware.Recoverer, RequestLogger(logger))
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(Health))

	router.Use(BasicAuth("compilations", opts.Config.Users), sessions.Middleware)
	router.Handler(NewIndexHandler(urls))
	router.Handler(NewOAuthHandler(opts.Auth, urls, logger))
	router.Handler(NewVideosHandler(opts.Library, opts.Resolver, logger))

	return &Server{
		http: &http.Server{
			Addr:              opts.Config.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		router: router,
		logger: logger,
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Start runs the HTTP server and blocks until it fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
