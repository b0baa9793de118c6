// Package httpapi exposes the catalogue over HTTP: a small JSON API under
// /api/ and the static front-end for everything else.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/introspection"
	"golang.org/x/time/rate"

	"github.com/aretw0/argumentaire/pkg/core"
)

// DefaultMaxBodyBytes caps the size of a submitted entry.
const DefaultMaxBodyBytes = 1 << 20

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 5 * time.Second

// Catalogue is the part of core.Service the HTTP layer needs.
type Catalogue interface {
	ListAll(ctx context.Context) ([]core.Record, error)
	Upsert(ctx context.Context, phrase, argumentaire string, sources []core.Source) (core.Record, error)
}

// Inspectable is a component whose state is published on /api/status.
type Inspectable interface {
	introspection.Introspectable
	introspection.Component
}

// Server serves the API and the static files.
type Server struct {
	catalogue  Catalogue
	logger     *slog.Logger
	staticDir  string
	denyGlobs  []string
	maxBody    int64
	limiter    *rate.Limiter
	components []Inspectable
	handler    http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStaticDir sets the directory served for non-API GET requests.
// Empty disables static serving.
func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

// WithDenyGlobs adds doublestar patterns, relative to the static dir, that
// are never served.
func WithDenyGlobs(patterns ...string) Option {
	return func(s *Server) {
		s.denyGlobs = append(s.denyGlobs, patterns...)
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// WithRateLimit throttles submissions to rps per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithComponents registers components reported by /api/status.
func WithComponents(components ...Inspectable) Option {
	return func(s *Server) {
		s.components = append(s.components, components...)
	}
}

// New creates a Server over catalogue.
func New(catalogue Catalogue, opts ...Option) *Server {
	s := &Server{
		catalogue: catalogue,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxBody:   DefaultMaxBodyBytes,
		denyGlobs: append([]string(nil), DefaultDenyGlobs...),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/argumentaires", s.handleList)
	mux.HandleFunc("POST /api/argumentaires", s.handleSubmit)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("OPTIONS /", s.handleOptions)
	mux.HandleFunc("POST /", s.handleUnknown)
	mux.Handle("GET /", s.staticHandler())

	return chain(mux, s.requestID, s.logRequests, cors)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
