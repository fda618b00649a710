package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
	"github.com/fundingforward/outreach/internal/store"
)

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListDays returns the sequence days that have a persisted artifact.
func (h *Handlers) ListDays(w http.ResponseWriter, r *http.Request) {
	days := h.store.AvailableDays()
	if days == nil {
		days = []domain.Day{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"days": days})
}

// GetDay returns the full day collection for review.
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	day, err := domain.ParseDay(chi.URLParam(r, "day"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	col, err := h.store.ReadDayCollection(day)
	if err != nil {
		if errors.Is(err, store.ErrNoArtifact) || os.IsNotExist(err) {
			respondError(w, http.StatusNotFound, "no collection for day "+string(day))
			return
		}
		logger.Error("read day collection failed", "day", string(day), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to read day collection")
		return
	}
	respondJSON(w, http.StatusOK, col)
}

// dayStats is one row of the aggregated stats response.
type dayStats struct {
	Day        domain.Day             `json:"day"`
	Statistics domain.BatchStatistics `json:"statistics"`
}

// GetStats aggregates batch statistics across every persisted day.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	var rows []dayStats
	total := domain.BatchStatistics{}

	for _, day := range h.store.AvailableDays() {
		col, err := h.store.ReadDayCollection(day)
		if err != nil {
			logger.Warn("skipping unreadable day collection", "day", string(day), "error", err.Error())
			continue
		}
		rows = append(rows, dayStats{Day: day, Statistics: col.Statistics})
		total.Total += col.Statistics.Total
		total.Generated += col.Statistics.Generated
		total.Blocked += col.Statistics.Blocked
		for reason, n := range col.Statistics.ByReason {
			if total.ByReason == nil {
				total.ByReason = make(map[domain.BlockReason]int)
			}
			total.ByReason[reason] += n
		}
	}

	if rows == nil {
		rows = []dayStats{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":    rows,
		"overall": total,
	})
}

type generateRequest struct {
	Day string `json:"day"`
}

// Generate runs the batch for one day and returns the fresh collection.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "generation is not enabled on this server")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	day, err := domain.ParseDay(req.Day)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	col, err := h.runner.Run(r.Context(), day)
	if err != nil {
		logger.Error("generation failed", "day", string(day), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	respondJSON(w, http.StatusOK, col)
}
