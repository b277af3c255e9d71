package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/swe-alert-service/internal/adapter/state"
	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// StateReader returns the most recent check result.
type StateReader interface {
	Latest(ctx context.Context) (domain.CheckResult, error)
}

// Server exposes health, readiness, metrics, and latest-state HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// /state routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, latest StateReader, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /state", s.handleState(latest))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleState(latest StateReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := latest.Latest(r.Context())
		switch {
		case errors.Is(err, state.ErrNoState):
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no check has completed yet"})
		case err != nil:
			s.logger.Error("read latest state failed", "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "state unavailable"})
		default:
			sharedobs.WriteJSON(w, http.StatusOK, res)
		}
	}
}
