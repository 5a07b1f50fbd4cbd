package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/courtside/internal/monitor"
	"github.com/courtside/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh monitor", t, func() {
		m := monitor.New()

		Convey("Then with no traffic it reports healthy", func() {
			h := m.Health()
			So(h.Status, ShouldEqual, monitor.StatusHealthy)
			So(h.HitRate, ShouldEqual, 0)
			So(h.AvgQueryTimeMs, ShouldEqual, 0)
		})

		Convey("When the hit rate is strong and queries are fast", func() {
			for i := 0; i < 8; i++ {
				m.RecordCacheHit()
			}
			for i := 0; i < 2; i++ {
				m.RecordCacheMiss()
			}
			m.RecordQuery(ctx, 50*time.Millisecond)

			h := m.Health()
			So(h.Status, ShouldEqual, monitor.StatusHealthy)
			So(h.HitRate, ShouldAlmostEqual, 0.8, 1e-9)
			So(h.AvgQueryTimeMs, ShouldAlmostEqual, 50, 1e-9)
		})

		Convey("When the hit rate dips below 60%", func() {
			m.RecordCacheHit()
			m.RecordCacheMiss()

			So(m.Health().Status, ShouldEqual, monitor.StatusWarning)
		})

		Convey("When the hit rate collapses below 40%", func() {
			m.RecordCacheHit()
			for i := 0; i < 3; i++ {
				m.RecordCacheMiss()
			}

			So(m.Health().Status, ShouldEqual, monitor.StatusCritical)
		})

		Convey("When queries average above 200ms", func() {
			m.RecordCacheHit() // keep the hit rate healthy
			m.RecordQuery(ctx, 300*time.Millisecond)

			So(m.Health().Status, ShouldEqual, monitor.StatusWarning)
		})

		Convey("When queries average above 500ms", func() {
			m.RecordCacheHit()
			m.RecordQuery(ctx, 700*time.Millisecond)

			So(m.Health().Status, ShouldEqual, monitor.StatusCritical)
		})

		Convey("When a single query exceeds the slow threshold", func() {
			So(func() { m.RecordQuery(ctx, 1200*time.Millisecond) }, ShouldNotPanic)
		})
	})

	Convey("Given custom thresholds", t, func() {
		m := monitor.New(
			monitor.WithHitRateThresholds(0.9, 0.5),
			monitor.WithLatencyThresholds(10, 20),
		)
		m.RecordCacheHit()
		m.RecordCacheHit()
		m.RecordCacheMiss() // 0.66 < 0.9 warning floor

		So(m.Health().Status, ShouldEqual, monitor.StatusWarning)
	})
}
