// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
)

// DiscoveryDependencies defines the interface for discovery queries.
type DiscoveryDependencies interface {
	Discover(ctx context.Context, f filter.Filter) (model.DiscoveryResponse, error)
}

// DiscoveryHandler handles discovery search requests.
type DiscoveryHandler struct {
	deps DiscoveryDependencies
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(deps DiscoveryDependencies) *DiscoveryHandler {
	return &DiscoveryHandler{deps: deps}
}

// HandleDiscovery handles GET /discovery requests.
func (h *DiscoveryHandler) HandleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params, err := parseFilterParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	f, err := filter.New(params)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp, err := h.deps.Discover(r.Context(), f)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

// parseFilterParams lifts the raw query string into filter params.
// Syntactic failures (unparseable numbers or timestamps) surface here;
// semantic validation happens in filter.New.
func parseFilterParams(r *http.Request) (filter.Params, error) {
	q := r.URL.Query()
	var p filter.Params
	var err error

	if p.Latitude, err = queryFloat(q, "latitude"); err != nil {
		return p, err
	}
	if p.Longitude, err = queryFloat(q, "longitude"); err != nil {
		return p, err
	}
	if p.RadiusKm, err = queryFloat(q, "radius"); err != nil {
		return p, err
	}
	if p.StartTime, err = queryTime(q, "startTime"); err != nil {
		return p, err
	}
	if p.EndTime, err = queryTime(q, "endTime"); err != nil {
		return p, err
	}
	if p.MinPlayers, err = queryInt(q, "minPlayers"); err != nil {
		return p, err
	}
	if p.MaxPlayers, err = queryInt(q, "maxPlayers"); err != nil {
		return p, err
	}
	if p.Limit, err = queryInt(q, "limit"); err != nil {
		return p, err
	}
	if p.Offset, err = queryInt(q, "offset"); err != nil {
		return p, err
	}
	p.SkillLevel = q.Get("skillLevel")
	p.CourtType = q.Get("courtType")

	return p, nil
}
