// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/courtside/courtside/internal/domain/types"
)

// SessionRecord is the read model of a session owned by the session
// subsystem. Discovery never mutates it.
type SessionRecord struct {
	ID             string
	Name           string
	Location       string // free-text venue description
	Latitude       *float64
	Longitude      *float64
	ScheduledAt    time.Time
	MaxPlayers     int
	CurrentPlayers int
	SkillLevel     types.SkillLevel // empty when the organizer did not set one
	CourtType      string
	Visibility     types.Visibility
	Status         types.Status
	OrganizerName  string
	ShareCode      string // 6-char join code printed on invites
}

// HasCoordinates reports whether the session carries a geo position.
func (r SessionRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// OccupancyRatio returns currentPlayers/maxPlayers. MaxPlayers is
// guaranteed positive by the session subsystem.
func (r SessionRecord) OccupancyRatio() float64 {
	return float64(r.CurrentPlayers) / float64(r.MaxPlayers)
}

// DiscoveryResult is a single ranked search hit. Ephemeral: built per
// query or served from cache, never persisted.
type DiscoveryResult struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Location       string           `json:"location"`
	DistanceKm     *float64         `json:"distanceKm,omitempty"` // present only when a geo filter applied
	ScheduledAt    time.Time        `json:"scheduledAt"`
	CurrentPlayers int              `json:"currentPlayers"`
	MaxPlayers     int              `json:"maxPlayers"`
	SkillLevel     types.SkillLevel `json:"skillLevel,omitempty"`
	CourtType      string           `json:"courtType,omitempty"`
	OrganizerName  string           `json:"organizerName"`
	Visibility     types.Visibility `json:"visibility"`
	RelevanceScore int              `json:"relevanceScore"`
}

// DiscoveryResponse is the aggregate payload returned by a discovery
// query. TotalCount reflects the coarse store predicate, not the
// post-refinement count; see the planner for the trade-off.
type DiscoveryResponse struct {
	Sessions     []DiscoveryResult `json:"sessions"`
	TotalCount   int               `json:"totalCount"`
	SearchRadius *float64          `json:"searchRadius,omitempty"`
	Filters      any               `json:"filters"`
}
