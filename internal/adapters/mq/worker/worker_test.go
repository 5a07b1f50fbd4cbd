package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/courtside/courtside/internal/adapters/mq/queue"
	worker "github.com/courtside/courtside/internal/adapters/mq/worker"
	logging "github.com/courtside/courtside/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logging.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// Mock implementations for testing.
type mockQueue struct {
	eventChan chan queue.Event
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		eventChan: make(chan queue.Event, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Event {
	return mq.eventChan
}

func (mq *mockQueue) Close() error {
	close(mq.eventChan)
	return nil
}

func (mq *mockQueue) addEvent(event queue.Event) {
	mq.eventChan <- event
}

type mockSink struct {
	mu        sync.Mutex
	delivered []queue.Event
	failNames map[string]error
}

func newMockSink() *mockSink {
	return &mockSink{failNames: make(map[string]error)}
}

func (ms *mockSink) Broadcast(event string, payload any) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if err, ok := ms.failNames[event]; ok {
		return err
	}
	ms.delivered = append(ms.delivered, queue.Event{Name: event, Payload: payload})
	return nil
}

func (ms *mockSink) deliveredCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.delivered)
}

func (ms *mockSink) waitForDelivered(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ms.deliveredCount() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	convey.Convey("Given a dispatcher over a mock queue and sink", t, func() {
		mq := newMockQueue()
		sink := newMockSink()
		d := worker.NewDispatcher(mq, sink, worker.WithName("test-dispatcher"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go d.Run(ctx)

		convey.Convey("When events are queued", func() {
			mq.addEvent(queue.Event{ID: "e1", Name: "discovery:session-created", Payload: "p1"})
			mq.addEvent(queue.Event{ID: "e2", Name: "discovery:session-updated", Payload: "p2"})

			convey.Convey("Then the sink receives them in order", func() {
				convey.So(sink.waitForDelivered(2, time.Second), convey.ShouldBeTrue)

				sink.mu.Lock()
				defer sink.mu.Unlock()
				convey.So(sink.delivered[0].Name, convey.ShouldEqual, "discovery:session-created")
				convey.So(sink.delivered[1].Name, convey.ShouldEqual, "discovery:session-updated")
			})
		})

		convey.Convey("When the sink rejects an event", func() {
			sink.failNames["discovery:session-terminated"] = errors.New("no clients")
			mq.addEvent(queue.Event{ID: "bad", Name: "discovery:session-terminated"})
			mq.addEvent(queue.Event{ID: "good", Name: "discovery:session-created"})

			convey.Convey("Then delivery continues past the failure", func() {
				convey.So(sink.waitForDelivered(1, time.Second), convey.ShouldBeTrue)
				sink.mu.Lock()
				defer sink.mu.Unlock()
				convey.So(sink.delivered[0].ID, convey.ShouldBeEmpty) // mock stores only name/payload
				convey.So(sink.delivered[0].Name, convey.ShouldEqual, "discovery:session-created")
			})
		})
	})
}

func TestDispatcher_Shutdown(t *testing.T) {
	convey.Convey("Given a running dispatcher", t, func() {
		mq := newMockQueue()
		sink := newMockSink()
		d := worker.NewDispatcher(mq, sink)

		ctx := context.Background()
		go d.Run(ctx)

		convey.Convey("Then Shutdown returns promptly", func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()
			convey.So(d.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		sink := newMockSink()
		pool := worker.NewPool(3, q, sink)

		ctx := context.Background()
		pool.Start(ctx)

		convey.Convey("When events are published", func() {
			for i := 0; i < 10; i++ {
				convey.So(q.Publish(ctx, "discovery:session-created", i), convey.ShouldBeNil)
			}

			convey.Convey("Then every event reaches the sink", func() {
				convey.So(sink.waitForDelivered(10, 2*time.Second), convey.ShouldBeTrue)
			})

			convey.Convey("And Shutdown drains and closes the queue", func() {
				convey.So(sink.waitForDelivered(10, 2*time.Second), convey.ShouldBeTrue)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
