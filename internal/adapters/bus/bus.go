// Package bus couples session lifecycle changes to cache invalidation
// and realtime notification. Session mutations flow through here so the
// cache never serves a view the caller just made stale.
package bus

import (
	"context"
	"time"

	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// Invalidation scopes reported to metrics.
const (
	scopeAll     = "all"
	scopeSession = "session"
)

// Cache is the subset of the response cache the bus invalidates.
type Cache interface {
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string) int
}

// Publisher forwards realtime events toward connected clients. The
// in-memory event queue implements this.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any) error
}

// Bus invalidates cached discovery state and emits realtime events on
// session lifecycle changes.
type Bus struct {
	cache     Cache
	publisher Publisher
	now       func() time.Time
	log       logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithPublisher attaches a realtime publisher. Without one the bus
// only invalidates.
func WithPublisher(p Publisher) Option {
	return func(b *Bus) {
		if p != nil {
			b.publisher = p
		}
	}
}

// WithClock overrides the event timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bus) {
		if now != nil {
			b.now = now
		}
	}
}

// WithLogger sets a custom logger for the bus.
func WithLogger(log logger.Logger) Option {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// New creates a bus over the given cache.
func New(cache Cache, opts ...Option) *Bus {
	b := &Bus{
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = logger.Get().Named("bus")
	}
	return b
}

// PurgeAll drops every cached discovery response. Any session mutation
// can change result membership or ordering for arbitrary filters, so
// the whole prefix goes.
func (b *Bus) PurgeAll(ctx context.Context) {
	n := b.cache.DeleteByPrefix(ctx, filter.DiscoveryKeyPrefix)
	metrics.RecordInvalidation(scopeAll)
	b.log.Debug(ctx, "purged discovery responses", logger.Int("entries", n))
}

// PurgeSession drops the cached single-session view.
func (b *Bus) PurgeSession(ctx context.Context, sessionID string) {
	b.cache.Delete(ctx, filter.SessionCacheKey(sessionID))
	metrics.RecordInvalidation(scopeSession)
}

// SessionCreated reacts to a newly discoverable session.
func (b *Bus) SessionCreated(ctx context.Context, session model.DiscoveryResult) {
	b.PurgeAll(ctx)
	b.publish(ctx, model.EventSessionCreated, model.SessionEvent{
		Session:   session,
		Timestamp: b.now().UTC(),
	})
}

// SessionUpdated reacts to a mutation of an existing session.
func (b *Bus) SessionUpdated(ctx context.Context, session model.DiscoveryResult) {
	b.PurgeAll(ctx)
	b.PurgeSession(ctx, session.ID)
	b.publish(ctx, model.EventSessionUpdated, model.SessionEvent{
		Session:   session,
		Timestamp: b.now().UTC(),
	})
}

// SessionTerminated reacts to a session leaving the discoverable set.
func (b *Bus) SessionTerminated(ctx context.Context, ref model.SessionRef) {
	b.PurgeAll(ctx)
	b.PurgeSession(ctx, ref.ID)
	b.publish(ctx, model.EventSessionTerminated, model.SessionTerminatedEvent{
		Session:   ref,
		Timestamp: b.now().UTC(),
	})
}

// SessionReactivated reacts to a session re-entering the discoverable set.
func (b *Bus) SessionReactivated(ctx context.Context, session model.DiscoveryResult) {
	b.PurgeAll(ctx)
	b.PurgeSession(ctx, session.ID)
	b.publish(ctx, model.EventSessionReactivated, model.SessionEvent{
		Session:   session,
		Timestamp: b.now().UTC(),
	})
}

// publish forwards the event when a publisher is attached. Notification
// is best-effort: a failure never blocks the invalidation that already
// happened.
func (b *Bus) publish(ctx context.Context, name string, payload any) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(ctx, name, payload); err != nil {
		b.log.Warn(ctx, "realtime publish failed",
			logger.String("event", name), logger.Error(err))
	}
}
