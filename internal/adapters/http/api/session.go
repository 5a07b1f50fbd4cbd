// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/courtside/courtside/internal/domain/model"
)

// SessionDependencies defines the interface for single-session lookups.
type SessionDependencies interface {
	GetSession(ctx context.Context, id string, lat, lon *float64) (model.DiscoveryResult, error)
}

// SessionHandler handles single-session discovery requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleGetSession handles GET /discovery/{session_id} requests.
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	// Extract path parameter after /discovery/
	id := strings.TrimPrefix(r.URL.Path, "/discovery/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	q := r.URL.Query()
	lat, err := queryFloat(q, "latitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	lon, err := queryFloat(q, "longitude")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if (lat == nil) != (lon == nil) {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest,
			"latitude", "longitude")
		return
	}

	result, err := h.deps.GetSession(r.Context(), id, lat, lon)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}
