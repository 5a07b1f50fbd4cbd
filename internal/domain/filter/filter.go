// Package filter defines the validated, immutable discovery filter and
// its cache-key normalization.
package filter

import (
	"fmt"
	"time"

	"github.com/courtside/courtside/internal/domain/types"
)

// Bounds and defaults for discovery filters.
const (
	DefaultRadiusKm = 50.0
	MaxRadiusKm     = 500.0
	DefaultLimit    = 20
	MaxLimit        = 100

	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// Params collects the raw, optional filter fields as parsed at the HTTP
// boundary. Nil/empty means the field was not supplied.
type Params struct {
	Latitude   *float64
	Longitude  *float64
	RadiusKm   *float64
	StartTime  *time.Time
	EndTime    *time.Time
	SkillLevel string
	MinPlayers *int
	MaxPlayers *int
	CourtType  string
	Limit      *int
	Offset     *int
}

// Filter is a validated discovery filter. Build one with New; treat it
// as immutable afterwards. The planner relies on validation having
// happened exactly once, at construction.
type Filter struct {
	Latitude   *float64         `json:"latitude,omitempty"`
	Longitude  *float64         `json:"longitude,omitempty"`
	RadiusKm   float64          `json:"radiusKm"`
	StartTime  *time.Time       `json:"startTime,omitempty"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	SkillLevel types.SkillLevel `json:"skillLevel,omitempty"`
	MinPlayers *int             `json:"minPlayers,omitempty"`
	MaxPlayers *int             `json:"maxPlayers,omitempty"`
	CourtType  string           `json:"courtType,omitempty"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// New validates p and builds a Filter with defaults applied. The
// returned error is a *ValidationError enumerating every offending
// field, so callers can report them all at once.
func New(p Params) (Filter, error) {
	v := &ValidationError{}

	if (p.Latitude == nil) != (p.Longitude == nil) {
		v.add("latitude", "latitude and longitude must be supplied together")
		v.add("longitude", "latitude and longitude must be supplied together")
	}
	if p.Latitude != nil && (*p.Latitude < minLatitude || *p.Latitude > maxLatitude) {
		v.add("latitude", fmt.Sprintf("must be in [%g,%g]", minLatitude, maxLatitude))
	}
	if p.Longitude != nil && (*p.Longitude < minLongitude || *p.Longitude > maxLongitude) {
		v.add("longitude", fmt.Sprintf("must be in [%g,%g]", minLongitude, maxLongitude))
	}

	radius := DefaultRadiusKm
	if p.RadiusKm != nil {
		if *p.RadiusKm <= 0 || *p.RadiusKm > MaxRadiusKm {
			v.add("radius", fmt.Sprintf("must be in (0,%g]", MaxRadiusKm))
		} else {
			radius = *p.RadiusKm
		}
	}

	if p.StartTime != nil && p.EndTime != nil && p.StartTime.After(*p.EndTime) {
		v.add("startTime", "must not be after endTime")
	}

	skill := types.SkillLevel(p.SkillLevel)
	if p.SkillLevel != "" && !skill.Valid() {
		v.add("skillLevel", "unknown skill level")
	}

	if p.MinPlayers != nil && *p.MinPlayers < 0 {
		v.add("minPlayers", "must be >= 0")
	}
	if p.MaxPlayers != nil && *p.MaxPlayers < 0 {
		v.add("maxPlayers", "must be >= 0")
	}
	if p.MinPlayers != nil && p.MaxPlayers != nil && *p.MinPlayers > *p.MaxPlayers {
		v.add("minPlayers", "must not exceed maxPlayers")
	}

	limit := DefaultLimit
	if p.Limit != nil {
		if *p.Limit < 1 || *p.Limit > MaxLimit {
			v.add("limit", fmt.Sprintf("must be in [1,%d]", MaxLimit))
		} else {
			limit = *p.Limit
		}
	}

	offset := 0
	if p.Offset != nil {
		if *p.Offset < 0 {
			v.add("offset", "must be >= 0")
		} else {
			offset = *p.Offset
		}
	}

	if v.has() {
		return Filter{}, v
	}

	return Filter{
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		RadiusKm:   radius,
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		SkillLevel: skill,
		MinPlayers: p.MinPlayers,
		MaxPlayers: p.MaxPlayers,
		CourtType:  p.CourtType,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// HasGeo reports whether a geo filter is active.
func (f Filter) HasGeo() bool {
	return f.Latitude != nil && f.Longitude != nil
}

// HasTimeWindow reports whether the filter constrains scheduling time.
func (f Filter) HasTimeWindow() bool {
	return f.StartTime != nil || f.EndTime != nil
}
