// Package discovery implements the query planner: cache orchestration,
// coarse-predicate pushdown, in-memory refinement, and ranking.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/courtside/courtside/internal/adapters/repository"
	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/geo"
	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/internal/domain/scoring"
	"github.com/courtside/courtside/internal/domain/types"
	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// defaultCacheTTL bounds how long a discovery response may be served
// without consulting the store.
const defaultCacheTTL = 300 * time.Second

// Store is the candidate source consumed by the planner.
type Store interface {
	FindCandidates(ctx context.Context, pred repository.CoarsePredicate, limit, offset int) ([]model.SessionRecord, error)
	Count(ctx context.Context, pred repository.CoarsePredicate) (int, error)
	GetByID(ctx context.Context, id string) (model.SessionRecord, error)
}

// Cache is the response cache consumed by the planner. GetOrLoad must
// coalesce concurrent misses for one key into a single load.
type Cache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (any, error)) (any, bool, error)
}

// Recorder receives cache and latency accounting per query.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordQuery(ctx context.Context, d time.Duration)
}

// Planner executes discovery queries.
type Planner struct {
	store    Store
	cache    Cache
	scorer   scoring.Scorer
	recorder Recorder
	ttl      time.Duration
	log      logger.Logger
}

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithScorer overrides the relevance scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(p *Planner) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithCacheTTL sets the TTL for cached discovery responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Planner) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithRecorder sets the hit/miss/latency recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Planner) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets a custom logger for the planner.
func WithLogger(log logger.Logger) Option {
	return func(p *Planner) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a planner over the given store and cache.
func New(store Store, cache Cache, opts ...Option) *Planner {
	p := &Planner{
		store:  store,
		cache:  cache,
		scorer: scoring.NewRelevanceScorer(),
		ttl:    defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("discovery")
	}
	return p
}

// Discover runs a discovery query for an already-validated filter.
// Responses are cached under the filter's normalized key; concurrent
// misses for the same key share one store round-trip.
func (p *Planner) Discover(ctx context.Context, f filter.Filter) (model.DiscoveryResponse, error) {
	start := time.Now()
	metrics.RecordDiscoveryRequest()

	v, hit, err := p.cache.GetOrLoad(ctx, f.CacheKey(), p.ttl, func(ctx context.Context) (any, error) {
		return p.query(ctx, f)
	})

	if p.recorder != nil {
		if hit {
			p.recorder.RecordCacheHit()
		} else {
			p.recorder.RecordCacheMiss()
		}
		p.recorder.RecordQuery(ctx, time.Since(start))
	}
	if err != nil {
		return model.DiscoveryResponse{}, err
	}

	resp, ok := v.(model.DiscoveryResponse)
	if !ok {
		return model.DiscoveryResponse{}, fmt.Errorf("unexpected cached payload for %q", f.CacheKey())
	}
	return resp, nil
}

// query is the cache-miss path: pushdown, refinement, ranking.
func (p *Planner) query(ctx context.Context, f filter.Filter) (model.DiscoveryResponse, error) {
	pred := buildPredicate(f)

	candidates, err := p.store.FindCandidates(ctx, pred, f.Limit, f.Offset)
	if err != nil {
		p.log.Error(ctx, "candidate fetch failed",
			logger.Any("predicate", pred), logger.Error(err))
		return model.DiscoveryResponse{}, err
	}

	// totalCount reflects the coarse predicate only. Refinement (geo
	// radius, player bounds) narrows just the fetched page; counting
	// post-refinement would force a full scan per request.
	total, err := p.store.Count(ctx, pred)
	if err != nil {
		p.log.Error(ctx, "candidate count failed",
			logger.Any("predicate", pred), logger.Error(err))
		return model.DiscoveryResponse{}, err
	}

	results := p.refineAndRank(candidates, f)

	resp := model.DiscoveryResponse{
		Sessions:   results,
		TotalCount: total,
		Filters:    f,
	}
	if f.HasGeo() {
		radius := f.RadiusKm
		resp.SearchRadius = &radius
	}
	return resp, nil
}

// buildPredicate lowers the filter fields the store can evaluate
// natively into a coarse predicate.
func buildPredicate(f filter.Filter) repository.CoarsePredicate {
	return repository.CoarsePredicate{
		Status:             types.StatusActive,
		Visibility:         types.VisibilityPublic,
		SkillLevel:         f.SkillLevel,
		CourtType:          f.CourtType,
		StartTime:          f.StartTime,
		EndTime:            f.EndTime,
		RequireCoordinates: f.HasGeo(),
	}
}

// refineAndRank applies the in-memory predicates the store cannot
// express, scores the survivors, and orders them.
func (p *Planner) refineAndRank(candidates []model.SessionRecord, f filter.Filter) []model.DiscoveryResult {
	results := make([]model.DiscoveryResult, 0, len(candidates))

	for _, rec := range candidates {
		if f.MinPlayers != nil && rec.CurrentPlayers < *f.MinPlayers {
			continue
		}
		if f.MaxPlayers != nil && rec.CurrentPlayers > *f.MaxPlayers {
			continue
		}

		var distance *float64
		if f.HasGeo() {
			d, ok := geo.RecordDistanceKm(rec, f)
			if !ok || d > f.RadiusKm {
				continue
			}
			distance = &d
		}

		results = append(results, toResult(rec, distance, p.scorer.Score(rec, f, distance)))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].ScheduledAt.Before(results[j].ScheduledAt)
	})
	return results
}

// GetSession looks up a single discoverable session. The cached value
// is the bare record; distance and score are derived per request so one
// cache entry serves callers at any location.
func (p *Planner) GetSession(ctx context.Context, id string, lat, lon *float64) (model.DiscoveryResult, error) {
	v, _, err := p.cache.GetOrLoad(ctx, filter.SessionCacheKey(id), p.ttl, func(ctx context.Context) (any, error) {
		rec, err := p.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec.Status != types.StatusActive || rec.Visibility != types.VisibilityPublic {
			return nil, repository.ErrNotFound
		}
		return rec, nil
	})
	if err != nil {
		return model.DiscoveryResult{}, err
	}

	rec, ok := v.(model.SessionRecord)
	if !ok {
		return model.DiscoveryResult{}, fmt.Errorf("unexpected cached payload for session %q", id)
	}

	f := filter.Filter{Latitude: lat, Longitude: lon, RadiusKm: filter.DefaultRadiusKm}
	var distance *float64
	if d, hasDistance := geo.RecordDistanceKm(rec, f); hasDistance {
		distance = &d
	}
	return toResult(rec, distance, p.scorer.Score(rec, f, distance)), nil
}

// Snapshot builds the discovery view of a record outside any query
// context, as carried by realtime events. No geo filter applies, so the
// score is the record's baseline relevance.
func (p *Planner) Snapshot(rec model.SessionRecord) model.DiscoveryResult {
	f := filter.Filter{RadiusKm: filter.DefaultRadiusKm}
	return toResult(rec, nil, p.scorer.Score(rec, f, nil))
}

func toResult(rec model.SessionRecord, distance *float64, score int) model.DiscoveryResult {
	return model.DiscoveryResult{
		ID:             rec.ID,
		Name:           rec.Name,
		Location:       rec.Location,
		DistanceKm:     distance,
		ScheduledAt:    rec.ScheduledAt,
		CurrentPlayers: rec.CurrentPlayers,
		MaxPlayers:     rec.MaxPlayers,
		SkillLevel:     rec.SkillLevel,
		CourtType:      rec.CourtType,
		OrganizerName:  rec.OrganizerName,
		Visibility:     rec.Visibility,
		RelevanceScore: score,
	}
}
