// Package monitor tracks cache effectiveness and query latency and
// derives an aggregate health status for the discovery subsystem.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// Default health thresholds.
const (
	defaultWarningHitRate    = 0.60
	defaultCriticalHitRate   = 0.40
	defaultWarningAvgMs      = 200.0
	defaultCriticalAvgMs     = 500.0
	defaultSlowQueryDuration = time.Second
)

// Status is the aggregate health classification.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Health is the point-in-time health snapshot.
type Health struct {
	Status         Status  `json:"status"`
	HitRate        float64 `json:"hitRate"`
	AvgQueryTimeMs float64 `json:"avgQueryTimeMs"`
}

// Monitor accumulates hit/miss and latency tallies. Safe for
// concurrent use.
type Monitor struct {
	mu           sync.Mutex
	hits         uint64
	misses       uint64
	queryCount   uint64
	totalQueryMs float64

	warningHitRate  float64
	criticalHitRate float64
	warningAvgMs    float64
	criticalAvgMs   float64
	slowQuery       time.Duration

	log logger.Logger
}

// Option applies a configuration option to the Monitor.
type Option func(*Monitor)

// WithHitRateThresholds sets the warning and critical hit-rate floors.
func WithHitRateThresholds(warning, critical float64) Option {
	return func(m *Monitor) {
		if warning > 0 && critical > 0 && critical <= warning {
			m.warningHitRate = warning
			m.criticalHitRate = critical
		}
	}
}

// WithLatencyThresholds sets the warning and critical average-latency
// ceilings in milliseconds.
func WithLatencyThresholds(warningMs, criticalMs float64) Option {
	return func(m *Monitor) {
		if warningMs > 0 && criticalMs >= warningMs {
			m.warningAvgMs = warningMs
			m.criticalAvgMs = criticalMs
		}
	}
}

// WithSlowQueryThreshold sets the per-query duration that triggers a
// slow-query warning regardless of aggregate health.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.slowQuery = d
		}
	}
}

// WithLogger sets a custom logger for the monitor.
func WithLogger(log logger.Logger) Option {
	return func(m *Monitor) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a monitor with configuration options.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		warningHitRate:  defaultWarningHitRate,
		criticalHitRate: defaultCriticalHitRate,
		warningAvgMs:    defaultWarningAvgMs,
		criticalAvgMs:   defaultCriticalAvgMs,
		slowQuery:       defaultSlowQueryDuration,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Get().Named("monitor")
	}
	return m
}

// RecordCacheHit tallies a cache hit.
func (m *Monitor) RecordCacheHit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

// RecordCacheMiss tallies a cache miss.
func (m *Monitor) RecordCacheMiss() {
	m.mu.Lock()
	m.misses++
	m.mu.Unlock()
}

// RecordQuery tallies one discovery query. Queries over the slow-query
// threshold are logged as warnings.
func (m *Monitor) RecordQuery(ctx context.Context, d time.Duration) {
	ms := float64(d.Milliseconds())
	metrics.RecordQueryLatency(ms)

	m.mu.Lock()
	m.queryCount++
	m.totalQueryMs += ms
	m.mu.Unlock()

	if d >= m.slowQuery {
		metrics.RecordSlowQuery()
		m.log.Warn(ctx, "slow discovery query",
			logger.Duration("duration", d),
			logger.Duration("threshold", m.slowQuery))
	}
}

// Health computes the current status from the accumulated tallies. Hit
// rate is only judged once at least one cache lookup happened, and
// latency once at least one query ran.
func (m *Monitor) Health() Health {
	m.mu.Lock()
	hits, misses := m.hits, m.misses
	queryCount, totalMs := m.queryCount, m.totalQueryMs
	m.mu.Unlock()

	h := Health{Status: StatusHealthy}

	lookups := hits + misses
	if lookups > 0 {
		h.HitRate = float64(hits) / float64(lookups)
	}
	if queryCount > 0 {
		h.AvgQueryTimeMs = totalMs / float64(queryCount)
	}

	switch {
	case lookups > 0 && h.HitRate < m.criticalHitRate,
		queryCount > 0 && h.AvgQueryTimeMs > m.criticalAvgMs:
		h.Status = StatusCritical
	case lookups > 0 && h.HitRate < m.warningHitRate,
		queryCount > 0 && h.AvgQueryTimeMs > m.warningAvgMs:
		h.Status = StatusWarning
	}
	return h
}
