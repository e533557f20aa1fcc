// Package server exposes the operator dashboard: an HTML status page
// plus a small JSON API for triggering runs and restores.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tablewarden/tablewarden"
	"github.com/tablewarden/tablewarden/pkg/constants"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

// Server serves the dashboard over HTTP.
type Server struct {
	client *tablewarden.Client
	http   *http.Server
}

// New builds a server listening on addr.
func New(client *tablewarden.Client, addr string) *Server {
	s := &Server{client: client}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
		r.Get("/status", s.handleStatus)
		r.Get("/sources", s.handleSources)
		r.Post("/run", s.handleRun)
		r.Post("/sources/{source}/restore", s.handleRestore)
	})

	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("dashboard listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ServerShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// requestLogger logs each request through the application logger rather
// than chi's stdlib-backed default.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
