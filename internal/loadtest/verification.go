package loadtest

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
)

// verify checks the ranking invariants of a discovery response against
// the query that produced it. Each violated invariant yields one message.
func verify(resp model.DiscoveryResponse, q url.Values) []string {
	var msgs []string

	limit := filter.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if len(resp.Sessions) > limit {
		msgs = append(msgs, fmt.Sprintf("got %d sessions for limit %d", len(resp.Sessions), limit))
	}

	geo := q.Get("latitude") != "" && q.Get("longitude") != ""
	radius := filter.DefaultRadiusKm
	if raw := q.Get("radius"); raw != "" {
		if r, err := strconv.ParseFloat(raw, 64); err == nil {
			radius = r
		}
	}

	prevScore := 101
	for _, s := range resp.Sessions {
		if s.RelevanceScore < 0 || s.RelevanceScore > 100 {
			msgs = append(msgs, fmt.Sprintf("session %s: score %d out of bounds", s.ID, s.RelevanceScore))
		}
		if s.RelevanceScore > prevScore {
			msgs = append(msgs, fmt.Sprintf("session %s: score %d breaks descending order", s.ID, s.RelevanceScore))
		}
		prevScore = s.RelevanceScore

		switch {
		case geo && s.DistanceKm == nil:
			msgs = append(msgs, fmt.Sprintf("session %s: missing distance on geo query", s.ID))
		case geo && *s.DistanceKm > radius:
			msgs = append(msgs, fmt.Sprintf("session %s: distance %.1fkm exceeds radius %.1fkm", s.ID, *s.DistanceKm, radius))
		case !geo && s.DistanceKm != nil:
			msgs = append(msgs, fmt.Sprintf("session %s: distance present without geo query", s.ID))
		}
	}

	if geo {
		if resp.SearchRadius == nil || *resp.SearchRadius != radius {
			msgs = append(msgs, "search radius not echoed on geo query")
		}
	}
	return msgs
}
