package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"eventx/config"
	"eventx/handlers"
	"eventx/metrics"
)

// Server is the JSON API over HTTP.
type Server struct {
	server *http.Server
}

// New wires the routes and the middleware chain. m may be nil.
func New(cfg config.ServerConfig, h *handlers.Handlers, m *metrics.Metrics) *Server {
	router := mux.NewRouter()
	router.Use(metricsMiddleware(m))

	router.Handle("/api/events", handlers.HandlerFunc(h.ListEvents)).Methods(http.MethodGet)
	router.Handle("/api/auth/login", handlers.HandlerFunc(h.Login)).Methods(http.MethodPost)
	router.Handle("/api/auth/register", handlers.HandlerFunc(h.Register)).Methods(http.MethodPost)
	router.Handle("/api/registrations", handlers.HandlerFunc(h.RegisterForEvent)).Methods(http.MethodPost)
	router.Handle("/health", handlers.HandlerFunc(h.Health)).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	var handler http.Handler = router
	handler = CORSMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)

	return &Server{
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks serving until Shutdown is called, then returns nil.
func (s *Server) Start() error {
	slog.Info("server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down server...")
	return s.server.Shutdown(ctx)
}
