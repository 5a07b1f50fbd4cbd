// Package service assembles the discovery subsystem and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/courtside/courtside/internal/adapters/bus"
	"github.com/courtside/courtside/internal/adapters/cache"
	eventqueue "github.com/courtside/courtside/internal/adapters/mq/queue"
	dispatch "github.com/courtside/courtside/internal/adapters/mq/worker"
	"github.com/courtside/courtside/internal/adapters/realtime"
	"github.com/courtside/courtside/internal/adapters/repository"
	"github.com/courtside/courtside/internal/domain/discovery"
	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/internal/domain/types"
	"github.com/courtside/courtside/internal/monitor"
	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// metricsUpdateInterval paces the background gauge refresh.
const metricsUpdateInterval = 5 * time.Second

// Service implements the API dependencies for the discovery system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       *repository.SQLStore
	cache       *cache.LRUCache
	planner     *discovery.Planner
	monitor     *monitor.Monitor
	bus         *bus.Bus
	eventQueue  *eventqueue.InMemoryQueue
	broadcaster *realtime.Broadcaster
	pool        *dispatch.Pool

	// Configuration
	storeDSN          string
	storeQueryTimeout time.Duration
	cacheCapacity     int
	cacheTTL          time.Duration
	queueSize         int
	dispatcherCount   int
	hitRateWarning    float64
	hitRateCritical   float64
	latencyWarningMS  float64
	latencyCriticalMS float64
	slowQuery         time.Duration

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStoreDSN sets the SQLite data source for the session store.
func WithStoreDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.storeDSN = dsn
		}
	}
}

// WithStoreQueryTimeout bounds every store query.
func WithStoreQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeQueryTimeout = d
		}
	}
}

// WithCacheCapacity sets the maximum number of cached responses.
func WithCacheCapacity(capacity int) Option {
	return func(s *Service) {
		s.cacheCapacity = capacity
	}
}

// WithCacheTTL sets the freshness window for cached responses.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithQueueSize sets the maximum size of the realtime event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDispatcherCount sets the number of realtime dispatchers.
func WithDispatcherCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.dispatcherCount = count
		}
	}
}

// WithHitRateThresholds sets the monitor's warning and critical
// hit-rate floors.
func WithHitRateThresholds(warning, critical float64) Option {
	return func(s *Service) {
		s.hitRateWarning = warning
		s.hitRateCritical = critical
	}
}

// WithLatencyThresholds sets the monitor's warning and critical
// average-latency ceilings in milliseconds.
func WithLatencyThresholds(warningMS, criticalMS float64) Option {
	return func(s *Service) {
		s.latencyWarningMS = warningMS
		s.latencyCriticalMS = criticalMS
	}
}

// WithSlowQueryThreshold sets the per-query slow warning threshold.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slowQuery = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDSN:          "courtside.db",
		storeQueryTimeout: 5 * time.Second,
		cacheCapacity:     1000,
		cacheTTL:          300 * time.Second,
		queueSize:         4096,
		dispatcherCount:   2,
		hitRateWarning:    0.60,
		hitRateCritical:   0.40,
		latencyWarningMS:  200,
		latencyCriticalMS: 500,
		slowQuery:         time.Second,
		stopCh:            make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting discovery service...")

	store, err := repository.NewSQLStore(s.storeDSN,
		repository.WithQueryTimeout(s.storeQueryTimeout),
	)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	s.store = store

	s.cache = cache.New(
		cache.WithCapacity(s.cacheCapacity),
		cache.WithDefaultTTL(s.cacheTTL),
	)
	s.monitor = monitor.New(
		monitor.WithHitRateThresholds(s.hitRateWarning, s.hitRateCritical),
		monitor.WithLatencyThresholds(s.latencyWarningMS, s.latencyCriticalMS),
		monitor.WithSlowQueryThreshold(s.slowQuery),
	)
	s.planner = discovery.New(s.store, s.cache,
		discovery.WithCacheTTL(s.cacheTTL),
		discovery.WithRecorder(s.monitor),
	)

	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.broadcaster = realtime.NewBroadcaster()
	s.bus = bus.New(s.cache, bus.WithPublisher(s.eventQueue))

	s.pool = dispatch.NewPool(s.dispatcherCount, s.eventQueue, s.broadcaster)
	s.pool.Start(ctx)

	go func() {
		if err := s.broadcaster.Serve(); err != nil {
			s.logger.Error(ctx, "socket server stopped", logger.Error(err))
		}
	}()
	go s.updateGauges(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "discovery service started",
		logger.Int("cacheCapacity", s.cacheCapacity),
		logger.Duration("cacheTTL", s.cacheTTL),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dispatchers", s.dispatcherCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping discovery service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.broadcaster != nil {
		_ = s.broadcaster.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "discovery service stopped")
}

// updateGauges refreshes cache gauges until the service stops.
func (s *Service) updateGauges(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			metrics.UpdateCachedEntries(s.cache.Len())
		}
	}
}

// Discover runs a discovery query. Part of the API dependencies.
func (s *Service) Discover(ctx context.Context, f filter.Filter) (model.DiscoveryResponse, error) {
	return s.planner.Discover(ctx, f)
}

// GetSession returns the discovery view of one session. Part of the
// API dependencies.
func (s *Service) GetSession(ctx context.Context, id string, lat, lon *float64) (model.DiscoveryResult, error) {
	return s.planner.GetSession(ctx, id, lat, lon)
}

// SocketHandler exposes the realtime endpoint for mounting.
func (s *Service) SocketHandler() http.Handler {
	return s.broadcaster.Handler()
}

// CreateSession registers a newly created session and announces it.
func (s *Service) CreateSession(ctx context.Context, rec model.SessionRecord) error {
	if err := s.store.Insert(ctx, rec); err != nil {
		return err
	}
	if rec.Status == types.StatusActive && rec.Visibility == types.VisibilityPublic {
		s.bus.SessionCreated(ctx, s.planner.Snapshot(rec))
	}
	return nil
}

// UpdateSessionPlayers records a roster change and announces it.
func (s *Service) UpdateSessionPlayers(ctx context.Context, id string, currentPlayers int) error {
	if err := s.store.UpdatePlayers(ctx, id, currentPlayers); err != nil {
		return err
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.bus.SessionUpdated(ctx, s.planner.Snapshot(rec))
	return nil
}

// TerminateSession takes a session out of the discoverable set.
func (s *Service) TerminateSession(ctx context.Context, id string, status types.Status) error {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.bus.SessionTerminated(ctx, model.SessionRef{ID: rec.ID, ShareCode: rec.ShareCode})
	return nil
}

// ReactivateSession returns a session to the discoverable set.
func (s *Service) ReactivateSession(ctx context.Context, id string) error {
	if err := s.store.UpdateStatus(ctx, id, types.StatusActive); err != nil {
		return err
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.bus.SessionReactivated(ctx, s.planner.Snapshot(rec))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}
	if !s.started {
		return stats
	}

	cacheStats := s.cache.Stats()
	metrics.UpdateCachedEntries(s.cache.Len())

	stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
	stats["cache"] = map[string]interface{}{
		"entries":   s.cache.Len(),
		"capacity":  s.cacheCapacity,
		"hits":      cacheStats.Hits,
		"misses":    cacheStats.Misses,
		"evictions": cacheStats.Evictions,
		"requests":  cacheStats.Requests(),
		"hitRate":   cacheStats.HitRate(),
	}
	stats["health"] = s.monitor.Health()
	stats["queueLength"] = s.eventQueue.Len(context.Background())
	stats["realtimeClients"] = s.broadcaster.ClientCount()
	return stats
}
