// Package server exposes workout history, personal records and storage
// diagnostics over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayoisaiah/lift/history"
	"github.com/ayoisaiah/lift/plan"
)

const shutdownTimeout = 10 * time.Second

// Server holds dependencies for HTTP handlers.
type Server struct {
	history *history.Repository
	plans   *plan.Repository
	log     *slog.Logger
	router  chi.Router
}

// New creates a Server with all routes configured. plans may be nil, in
// which case the plan routes are not mounted.
func New(hist *history.Repository, plans *plan.Repository, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		history: hist,
		plans:   plans,
		log:     log,
		router:  chi.NewRouter(),
	}

	s.routes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogging(s.log))

	s.router.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/history", s.handleListHistory)
		r.Post("/history", s.handleSaveHistory)
		r.Get("/history/export", s.handleExportHistory)
		r.Post("/history/import", s.handleImportHistory)
		r.Get("/history/{id}", s.handleGetHistory)
		r.Patch("/history/{id}", s.handleUpdateHistory)
		r.Delete("/history/{id}", s.handleDeleteHistory)
		r.Get("/records", s.handleRecords)
		r.Get("/stats", s.handleStats)

		if s.plans != nil {
			r.Get("/plans", s.handleListPlans)
			r.Post("/plans", s.handleSavePlan)
			r.Delete("/plans/{id}", s.handleDeletePlan)
		}
	})

	s.router.Get("/api/diagnostics", s.handleDiagnostics)
	s.router.Delete("/api/diagnostics", s.handleResetDiagnostics)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server starting", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	s.log.Info("server stopped")

	return nil
}
