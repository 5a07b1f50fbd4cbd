package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtside/courtside/internal/adapters/repository"
	service "github.com/courtside/courtside/internal/app"
	"github.com/courtside/courtside/internal/domain/filter"
	"github.com/courtside/courtside/internal/domain/model"
	"github.com/courtside/courtside/internal/domain/types"
	"github.com/courtside/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func newService(t *testing.T) *service.Service {
	t.Helper()
	svc := service.New(
		service.WithStoreDSN(":memory:"),
		service.WithCacheCapacity(64),
		service.WithCacheTTL(time.Minute),
		service.WithQueueSize(64),
		service.WithDispatcherCount(1),
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func record(id string, players int) model.SessionRecord {
	return model.SessionRecord{
		ID:             id,
		Name:           "Session " + id,
		Location:       "Riverside Hall",
		ScheduledAt:    time.Now().Add(48 * time.Hour),
		MaxPlayers:     8,
		CurrentPlayers: players,
		Visibility:     types.VisibilityPublic,
		Status:         types.StatusActive,
		OrganizerName:  "Sam",
		ShareCode:      "AB12CD",
	}
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service with one session", t, func() {
		svc := newService(t)
		So(svc.CreateSession(ctx, record("s1", 3)), ShouldBeNil)

		f, err := filter.New(filter.Params{})
		So(err, ShouldBeNil)

		Convey("When discovering", func() {
			resp, err := svc.Discover(ctx, f)
			So(err, ShouldBeNil)
			So(len(resp.Sessions), ShouldEqual, 1)
			So(resp.Sessions[0].CurrentPlayers, ShouldEqual, 3)

			Convey("And the roster changes", func() {
				So(svc.UpdateSessionPlayers(ctx, "s1", 5), ShouldBeNil)

				Convey("Then the next discovery reflects the change", func() {
					resp, err := svc.Discover(ctx, f)
					So(err, ShouldBeNil)
					So(resp.Sessions[0].CurrentPlayers, ShouldEqual, 5)
				})
			})

			Convey("And the session is terminated", func() {
				So(svc.TerminateSession(ctx, "s1", types.StatusCancelled), ShouldBeNil)

				Convey("Then it disappears from discovery", func() {
					resp, err := svc.Discover(ctx, f)
					So(err, ShouldBeNil)
					So(len(resp.Sessions), ShouldEqual, 0)

					_, err = svc.GetSession(ctx, "s1", nil, nil)
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				})

				Convey("And reactivation brings it back", func() {
					So(svc.ReactivateSession(ctx, "s1"), ShouldBeNil)

					resp, err := svc.Discover(ctx, f)
					So(err, ShouldBeNil)
					So(len(resp.Sessions), ShouldEqual, 1)
				})
			})
		})

		Convey("When fetching a single session", func() {
			res, err := svc.GetSession(ctx, "s1", nil, nil)
			So(err, ShouldBeNil)
			So(res.ID, ShouldEqual, "s1")
			So(res.RelevanceScore, ShouldBeBetweenOrEqual, 0, 100)
		})
	})
}

func TestServiceStats(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newService(t)
		So(svc.CreateSession(ctx, record("s1", 3)), ShouldBeNil)

		f, err := filter.New(filter.Params{})
		So(err, ShouldBeNil)

		_, err = svc.Discover(ctx, f) // miss
		So(err, ShouldBeNil)
		_, err = svc.Discover(ctx, f) // hit
		So(err, ShouldBeNil)

		Convey("Then stats expose cache and health numbers", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)

			cacheStats, ok := stats["cache"].(map[string]interface{})
			So(ok, ShouldBeTrue)
			So(cacheStats["requests"], ShouldNotBeNil)
			So(stats["health"], ShouldNotBeNil)
			So(stats["realtimeClients"], ShouldEqual, 0)
		})
	})

	Convey("Given a stopped service", t, func() {
		svc := service.New(service.WithStoreDSN(":memory:"))

		Convey("Then stats only report the started flag", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["cache"], ShouldBeNil)
		})
	})
}
