// Package server exposes the solve pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz       liveness and build version
//	POST /v1/solve      solve a graph sent in canonical text form
//	POST /v1/leaves     count the leaves of a parent array
//	GET  /v1/generate   generate a connected random graph
//
// /v1/solve takes the solver options as query parameters (strategy,
// iterations, seed, workers, refresh) and answers with JSON, or with a
// rendered diagram when format is dot, svg or png. Identical concurrent
// solves are collapsed into one computation.
//
// Errors are JSON objects with "error", "code" and "request_id" fields.
// Malformed input maps to 400, disconnected graphs to 422 and oversized
// requests to 413.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/leafspan/pkg/pipeline"
)

// Defaults for [Option] values that are not set.
const (
	DefaultAddr         = ":8080"
	DefaultMaxVertices  = 2000
	DefaultMaxBodyBytes = 4 << 20
	DefaultTimeout      = 60 * time.Second
)

// Server is the leafspan HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router

	addr         string
	maxVertices  int
	maxBodyBytes int64
	timeout      time.Duration
	defaults     pipeline.Options

	solves singleflight.Group
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMaxVertices rejects graphs with more vertices than n. Zero disables
// the limit.
func WithMaxVertices(n int) Option {
	return func(s *Server) { s.maxVertices = n }
}

// WithMaxBodyBytes limits request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// WithTimeout bounds the time spent on one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithDefaults sets the solver options used when a request leaves them out.
func WithDefaults(opts pipeline.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// New creates a Server that solves with runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:       runner,
		logger:       log.Default(),
		addr:         DefaultAddr,
		maxVertices:  DefaultMaxVertices,
		maxBodyBytes: DefaultMaxBodyBytes,
		timeout:      DefaultTimeout,
		defaults:     pipeline.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Post("/leaves", s.handleLeaves)
		r.Get("/generate", s.handleGenerate)
	})

	return r
}
