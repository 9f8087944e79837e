// Package server exposes the generator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/pgmeta/internal/config"
	"github.com/koustreak/pgmeta/internal/filestore"
	"github.com/koustreak/pgmeta/internal/logger"
	"github.com/koustreak/pgmeta/internal/service"
	"github.com/koustreak/pgmeta/internal/typegen"
)

// Check reports whether a dependency is healthy.
type Check func(ctx context.Context) error

// Server serves generated bindings.
type Server struct {
	cfg       config.ServerConfig
	svc       *service.Service
	defaults  typegen.Options
	publisher *filestore.Publisher
	checks    map[string]Check
	log       *logger.Logger

	http *http.Server
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithPublisher enables the publish endpoint.
func WithPublisher(p *filestore.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// WithCheck adds a named dependency to the health report.
func WithCheck(name string, c Check) Option {
	return func(s *Server) { s.checks[name] = c }
}

// WithDefaults sets the options used when a request leaves them out.
func WithDefaults(opts typegen.Options) Option {
	return func(s *Server) { s.defaults = opts }
}

// New returns a Server. A nil log discards everything.
func New(cfg config.ServerConfig, svc *service.Service, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{cfg: cfg, svc: svc, checks: map[string]Check{}, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/generators", func(r chi.Router) {
		r.Get("/", s.handleTargets)
		r.Get("/{target}", s.handleGenerate)
		r.Post("/{target}/publish", s.handlePublish)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", s.cfg.Addr).Logger().Info("server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
