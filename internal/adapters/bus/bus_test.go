package bus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtside/courtside/internal/adapters/bus"
	"github.com/courtside/courtside/internal/adapters/cache"
	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

type capturedEvent struct {
	name    string
	payload any
}

type fakePublisher struct {
	events []capturedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, name string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, capturedEvent{name: name, payload: payload})
	return nil
}

var busNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newBus(c bus.Cache, p bus.Publisher) *bus.Bus {
	return bus.New(c,
		bus.WithPublisher(p),
		bus.WithClock(func() time.Time { return busNow }),
	)
}

func TestInvalidation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache holding discovery and session entries", t, func() {
		c := cache.New(cache.WithCapacity(16))
		c.Set(ctx, "discovery:limit_20:offset_0", "list-a", time.Minute)
		c.Set(ctx, "discovery:limit_20:offset_20", "list-b", time.Minute)
		c.Set(ctx, filter.SessionCacheKey("s1"), "session-1", time.Minute)
		b := newBus(c, nil)

		Convey("When every discovery response is purged", func() {
			b.PurgeAll(ctx)

			Convey("Then list entries are gone but the session entry survives", func() {
				_, ok := c.Get(ctx, "discovery:limit_20:offset_0")
				So(ok, ShouldBeFalse)
				_, ok = c.Get(ctx, "discovery:limit_20:offset_20")
				So(ok, ShouldBeFalse)
				_, ok = c.Get(ctx, filter.SessionCacheKey("s1"))
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a single session is purged", func() {
			b.PurgeSession(ctx, "s1")

			Convey("Then only its entry disappears", func() {
				_, ok := c.Get(ctx, filter.SessionCacheKey("s1"))
				So(ok, ShouldBeFalse)
				_, ok = c.Get(ctx, "discovery:limit_20:offset_0")
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestLifecycleEvents(t *testing.T) {
	ctx := context.Background()

	session := model.DiscoveryResult{ID: "s1", Name: "Evening Doubles"}

	Convey("Given a bus with a publisher attached", t, func() {
		c := cache.New(cache.WithCapacity(16))
		pub := &fakePublisher{}
		b := newBus(c, pub)

		c.Set(ctx, "discovery:limit_20:offset_0", "stale", time.Minute)
		c.Set(ctx, filter.SessionCacheKey("s1"), "stale", time.Minute)

		Convey("When a session is created", func() {
			b.SessionCreated(ctx, session)

			So(len(pub.events), ShouldEqual, 1)
			So(pub.events[0].name, ShouldEqual, model.EventSessionCreated)

			ev, ok := pub.events[0].payload.(model.SessionEvent)
			So(ok, ShouldBeTrue)
			So(ev.Session.ID, ShouldEqual, "s1")
			So(ev.Timestamp.Equal(busNow), ShouldBeTrue)

			_, cached := c.Get(ctx, "discovery:limit_20:offset_0")
			So(cached, ShouldBeFalse)
		})

		Convey("When a session is updated", func() {
			b.SessionUpdated(ctx, session)

			So(len(pub.events), ShouldEqual, 1)
			So(pub.events[0].name, ShouldEqual, model.EventSessionUpdated)

			_, cached := c.Get(ctx, filter.SessionCacheKey("s1"))
			So(cached, ShouldBeFalse)
		})

		Convey("When a session is terminated", func() {
			b.SessionTerminated(ctx, model.SessionRef{ID: "s1", ShareCode: "AB12CD"})

			So(len(pub.events), ShouldEqual, 1)
			So(pub.events[0].name, ShouldEqual, model.EventSessionTerminated)

			ev, ok := pub.events[0].payload.(model.SessionTerminatedEvent)
			So(ok, ShouldBeTrue)
			So(ev.Session.ShareCode, ShouldEqual, "AB12CD")

			_, cached := c.Get(ctx, filter.SessionCacheKey("s1"))
			So(cached, ShouldBeFalse)
		})

		Convey("When a session is reactivated", func() {
			b.SessionReactivated(ctx, session)

			So(len(pub.events), ShouldEqual, 1)
			So(pub.events[0].name, ShouldEqual, model.EventSessionReactivated)
		})
	})

	Convey("Given a publisher that always fails", t, func() {
		c := cache.New(cache.WithCapacity(16))
		pub := &fakePublisher{err: errors.New("queue full")}
		b := newBus(c, pub)
		c.Set(ctx, "discovery:limit_20:offset_0", "stale", time.Minute)

		Convey("Then invalidation still happens and nothing panics", func() {
			So(func() { b.SessionCreated(ctx, session) }, ShouldNotPanic)

			_, cached := c.Get(ctx, "discovery:limit_20:offset_0")
			So(cached, ShouldBeFalse)
		})
	})

	Convey("Given a bus without a publisher", t, func() {
		c := cache.New(cache.WithCapacity(16))
		b := newBus(c, nil)

		Convey("Then lifecycle hooks only invalidate", func() {
			So(func() { b.SessionUpdated(ctx, session) }, ShouldNotPanic)
		})
	})
}
