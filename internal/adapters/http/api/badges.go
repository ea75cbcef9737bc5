package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// handleGetBadges handles GET /badges. The all=true query includes retired
// badges.
func (s *Server) handleGetBadges(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	badges := s.deps.ListBadges(r.Context(), activeOnly)
	if badges == nil {
		badges = []model.BadgeDefinition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": badges})
}

// handleEvaluate handles POST /evaluate/{employeeID}: run all active badge
// criteria now and report what was newly awarded.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	awards, err := s.deps.EvaluateBadges(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if awards == nil {
		awards = []model.BadgeAward{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id":   id,
		"newly_awarded": awards,
	})
}

// handleGetProgress handles GET /progress/{employeeID}: percentage progress
// toward every active badge.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	progress, err := s.deps.BadgeProgress(r.Context(), id, time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id": id,
		"progress":    progress,
	})
}
