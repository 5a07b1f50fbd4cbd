package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key prefixes shared by the cache and the invalidation bus.
const (
	DiscoveryKeyPrefix = "discovery:"
	SessionKeyPrefix   = "session:"
)

// coordinatePrecision rounds lat/lon to 4 decimal places (~11m) so
// near-identical coordinates reuse the same cache entry.
const coordinatePrecision = 4

// CacheKey returns the normalized cache key for this filter. Unset
// optional fields are omitted and the remaining fields are joined in
// sorted name order, so two equivalent filters always map to the same
// key regardless of how they were assembled.
func (f Filter) CacheKey() string {
	fields := map[string]string{
		"limit":  strconv.Itoa(f.Limit),
		"offset": strconv.Itoa(f.Offset),
	}
	if f.HasGeo() {
		fields["latitude"] = formatCoordinate(*f.Latitude)
		fields["longitude"] = formatCoordinate(*f.Longitude)
		fields["radiusKm"] = strconv.FormatFloat(f.RadiusKm, 'f', -1, 64)
	}
	if f.StartTime != nil {
		fields["startTime"] = f.StartTime.UTC().Format(time.RFC3339)
	}
	if f.EndTime != nil {
		fields["endTime"] = f.EndTime.UTC().Format(time.RFC3339)
	}
	if f.SkillLevel != "" {
		fields["skillLevel"] = string(f.SkillLevel)
	}
	if f.MinPlayers != nil {
		fields["minPlayers"] = strconv.Itoa(*f.MinPlayers)
	}
	if f.MaxPlayers != nil {
		fields["maxPlayers"] = strconv.Itoa(*f.MaxPlayers)
	}
	if f.CourtType != "" {
		fields["courtType"] = f.CourtType
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "_" + fields[name]
	}
	return DiscoveryKeyPrefix + strings.Join(parts, ":")
}

// SessionCacheKey returns the cache key for a single-session lookup.
func SessionCacheKey(sessionID string) string {
	return SessionKeyPrefix + sessionID
}

func formatCoordinate(v float64) string {
	return fmt.Sprintf("%.*f", coordinatePrecision, v)
}
