// Package api exposes the review API: a small HTTP surface for
// inspecting generated day collections and triggering regeneration
// before anything is sent.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fundingforward/outreach/internal/domain"
)

// Runner regenerates one sequence day on demand.
type Runner interface {
	Run(ctx context.Context, day domain.Day) (*domain.DayCollection, error)
}

// CollectionStore reads persisted day artifacts.
type CollectionStore interface {
	ReadDayCollection(day domain.Day) (*domain.DayCollection, error)
	AvailableDays() []domain.Day
}

// Handlers holds the review API dependencies.
type Handlers struct {
	store  CollectionStore
	runner Runner
}

// NewHandlers wires the review API. runner may be nil, in which case
// the generate endpoint reports the feature as unavailable.
func NewHandlers(store CollectionStore, runner Runner) *Handlers {
	return &Handlers{store: store, runner: runner}
}

// Routes builds the chi router for the review API.
func Routes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/days", h.ListDays)
		r.Get("/days/{day}", h.GetDay)
		r.Get("/stats", h.GetStats)
		r.Post("/generate", h.Generate)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
