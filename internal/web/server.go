// Package web serves the resolved forecast state over a small read-only HTTP
// API for dashboards and automation.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tariffwatch/internal/model"
	"tariffwatch/internal/schedule"
)

// SnapshotSource provides the latest published snapshot.
type SnapshotSource interface {
	Snapshot() *model.ForecastSnapshot
}

// Server exposes the resolved state. All derived values are recomputed per
// request against the snapshot reference sampled at the top of the handler,
// so each response is a consistent view.
type Server struct {
	source SnapshotSource
	http   *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, source SnapshotSource) *Server {
	s := &Server{source: source}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/v1/state", s.handleState)
	r.Get("/api/v1/schedule/{date}", s.handleSchedule)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] http server listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[ERROR] http server: %v", err)
		}
	}()
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.http.Shutdown(ctx) }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no forecast data yet")
		return
	}
	writeJSON(w, http.StatusOK, schedule.Resolve(snap, time.Now()))
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Snapshot()
	if snap == nil {
		writeError(w, http.StatusServiceUnavailable, "no forecast data yet")
		return
	}
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	windows := schedule.DaySchedule(snap, date)
	if windows == nil {
		windows = []model.PriceWindow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "schedule": windows})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
