package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// handleGenerateDigest handles POST /digest/{employeeID}/generate.
// weekStart is required; weekEnd defaults to the exclusive boundary seven
// days later and also accepts the inclusive Sunday form.
func (s *Server) handleGenerateDigest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")

	q := r.URL.Query()
	rawStart := q.Get("weekStart")
	if rawStart == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing weekStart", ErrBadRequest))
		return
	}
	weekStart, err := parseDay(rawStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: weekStart: %v", ErrBadRequest, err))
		return
	}

	weekEnd := weekStart.Add(7 * 24 * time.Hour)
	if rawEnd := q.Get("weekEnd"); rawEnd != "" {
		weekEnd, err = parseDay(rawEnd)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: weekEnd: %v", ErrBadRequest, err))
			return
		}
	}

	d, err := s.deps.GenerateDigest(r.Context(), id, weekStart, weekEnd)
	if err != nil {
		writeDigestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleGetDigest handles GET /digest/{employeeID}?weekStart=YYYY-MM-DD.
func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")

	rawStart := r.URL.Query().Get("weekStart")
	if rawStart == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing weekStart", ErrBadRequest))
		return
	}
	weekStart, err := parseDay(rawStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: weekStart: %v", ErrBadRequest, err))
		return
	}

	d, err := s.deps.GetDigest(r.Context(), id, weekStart)
	if err != nil {
		writeDigestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// writeDigestError additionally maps week-validation failures to 400.
func writeDigestError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrBadWeek) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeServiceError(w, err)
}
