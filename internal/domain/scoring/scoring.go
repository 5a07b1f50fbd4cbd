// Package scoring ranks discovery candidates with a bounded composite
// relevance score.
package scoring

import (
	"time"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
)

// Score weights and bounds. The formula must stay deterministic in
// (record, filter, now) so cached responses remain a pure function of
// their inputs.
const (
	baseScore = 100
	minScore  = 0
	maxScore  = 100

	distanceWeight       = 40.0
	pastPenalty          = 30
	upcomingBonus        = 10
	skillMatchBonus      = 20
	skillMismatchPenalty = 10
	availabilityBonus    = 10

	occupancyThreshold = 0.8
	upcomingWindow     = 24 * time.Hour
)

// Scorer computes a relevance score for a candidate session.
type Scorer interface {
	// Score returns a value in [0,100]. distanceKm is nil when no geo
	// filter applies or the record lacks coordinates.
	Score(rec model.SessionRecord, f filter.Filter, distanceKm *float64) int
}

// Option applies a configuration option to the RelevanceScorer.
type Option func(*RelevanceScorer)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *RelevanceScorer) {
		if now != nil {
			s.now = now
		}
	}
}

// RelevanceScorer implements Scorer with the additive distance, time,
// skill and availability terms.
type RelevanceScorer struct {
	now func() time.Time
}

// NewRelevanceScorer creates a scorer with configuration options.
func NewRelevanceScorer(opts ...Option) *RelevanceScorer {
	s := &RelevanceScorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the composite relevance score for rec under f.
func (s *RelevanceScorer) Score(rec model.SessionRecord, f filter.Filter, distanceKm *float64) int {
	score := float64(baseScore)
	now := s.now()

	// Distance term: linear penalty up to the full weight at the radius
	// edge. No geo filter means no distance penalty.
	if f.HasGeo() && distanceKm != nil {
		proximity := (f.RadiusKm - *distanceKm) / f.RadiusKm
		if proximity < 0 {
			proximity = 0
		}
		score -= distanceWeight * (1 - proximity)
	}

	// Time term: only evaluated when the caller constrained the window.
	if f.HasTimeWindow() {
		switch {
		case rec.ScheduledAt.Before(now):
			score -= pastPenalty
		case rec.ScheduledAt.Sub(now) <= upcomingWindow:
			score += upcomingBonus
		}
	}

	// Skill term: needs an opinion on both sides.
	if f.SkillLevel != "" && rec.SkillLevel != "" {
		if f.SkillLevel == rec.SkillLevel {
			score += skillMatchBonus
		} else {
			score -= skillMismatchPenalty
		}
	}

	// Availability term: reward sessions with open spots.
	if rec.OccupancyRatio() < occupancyThreshold {
		score += availabilityBonus
	}

	return clamp(int(score))
}

func clamp(v int) int {
	if v < minScore {
		return minScore
	}
	if v > maxScore {
		return maxScore
	}
	return v
}
