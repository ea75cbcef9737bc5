package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// handlePostEmployee handles POST /employees.
func (s *Server) handlePostEmployee(w http.ResponseWriter, r *http.Request) {
	var e model.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if err := s.deps.RegisterEmployee(r.Context(), e); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": e.ID, "status": "registered"})
}

// handleGetEmployee handles GET /employees/{employeeID}.
func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	e, err := s.deps.GetEmployee(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleGetRecognitions handles GET /recognitions/{employeeID}.
func (s *Server) handleGetRecognitions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	recs, err := s.deps.ListRecognitions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if recs == nil {
		recs = []model.Recognition{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id":  id,
		"recognitions": recs,
	})
}
