// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Discover runs a validated discovery query.
	Discover(ctx context.Context, f filter.Filter) (model.DiscoveryResponse, error)

	// GetSession returns the discovery view of one session. lat/lon are
	// optional caller coordinates for distance enrichment.
	GetSession(ctx context.Context, id string, lat, lon *float64) (model.DiscoveryResult, error)
}

// Server wires HTTP routes for the discovery API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	discoveryHandler *DiscoveryHandler
	sessionHandler   *SessionHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		discoveryHandler: NewDiscoveryHandler(deps),
		sessionHandler:   NewSessionHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/discovery", MetricsMiddleware(s.discoveryHandler.HandleDiscovery, "discovery"))
	mux.HandleFunc("/discovery/", MetricsMiddleware(s.sessionHandler.HandleGetSession, "discovery_session"))
}

// successResponse is the envelope for all 2xx payloads.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorBody enumerates what went wrong; Fields names the offending
// query parameters on validation failures.
type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code string, err error, fields ...string) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    code,
		Message: msg,
		Fields:  fields,
	}})
}

// writeDomainError translates planner errors into HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var vErr *filter.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr, vErr.FieldNames()...)
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", ErrSessionNotFound)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", ErrInternal)
	}
}
