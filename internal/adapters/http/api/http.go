// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/acclaimhq/acclaim/internal/adapters/repository"
	service "github.com/acclaimhq/acclaim/internal/app"
	"github.com/acclaimhq/acclaim/internal/domain/model"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the orchestrator.
type Dependencies interface {
	Submit(ctx context.Context, e model.Effort) error
	RegisterEmployee(ctx context.Context, e model.Employee) error
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
	ListRecognitions(ctx context.Context, employeeID string) ([]model.Recognition, error)
	ListBadges(ctx context.Context, activeOnly bool) []model.BadgeDefinition
	EvaluateBadges(ctx context.Context, employeeID string, asOf time.Time) ([]model.BadgeAward, error)
	BadgeProgress(ctx context.Context, employeeID string, asOf time.Time) (map[string]int, error)
	GenerateDigest(ctx context.Context, employeeID string, weekStart, weekEnd time.Time) (model.WeeklyDigest, error)
	GetDigest(ctx context.Context, employeeID string, weekStart time.Time) (model.WeeklyDigest, error)
}

// StatsProvider defines the interface for service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps  Dependencies
	stats StatsProvider
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider) *Server {
	return &Server{deps: deps, stats: stats}
}

// Router builds the chi router with every route attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	r.Get("/metrics", s.handleMetrics)
	r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))

	r.Post("/efforts", MetricsMiddleware(s.handlePostEffort, "efforts"))

	r.Post("/employees", MetricsMiddleware(s.handlePostEmployee, "employees"))
	r.Get("/employees/{employeeID}", MetricsMiddleware(s.handleGetEmployee, "employees"))
	r.Get("/recognitions/{employeeID}", MetricsMiddleware(s.handleGetRecognitions, "recognitions"))

	r.Get("/badges", MetricsMiddleware(s.handleGetBadges, "badges"))
	r.Post("/evaluate/{employeeID}", MetricsMiddleware(s.handleEvaluate, "evaluate"))
	r.Get("/progress/{employeeID}", MetricsMiddleware(s.handleGetProgress, "progress"))

	r.Post("/digest/{employeeID}/generate", MetricsMiddleware(s.handleGenerateDigest, "digest_generate"))
	r.Get("/digest/{employeeID}", MetricsMiddleware(s.handleGetDigest, "digest"))

	return r
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps orchestrator and store sentinels onto HTTP codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEffort),
		errors.Is(err, service.ErrInvalidEmployee):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, service.ErrRetriesExhausted),
		errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

// parseDay accepts a date as 2006-01-02 or full RFC3339.
func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid date; use YYYY-MM-DD or RFC3339")
	}
	return t, nil
}
