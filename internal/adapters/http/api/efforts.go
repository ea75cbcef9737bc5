package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/acclaimhq/acclaim/internal/app"
	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// handlePostEffort handles POST /efforts: validate, dedupe, enqueue.
// Duplicates acknowledge with 200 rather than erroring, so at-least-once
// publishers can retry blindly.
func (s *Server) handlePostEffort(w http.ResponseWriter, r *http.Request) {
	var e model.Effort
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}

	err := s.deps.Submit(r.Context(), e)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
	case errors.Is(err, service.ErrDuplicateEffort):
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
	default:
		writeServiceError(w, err)
	}
}
