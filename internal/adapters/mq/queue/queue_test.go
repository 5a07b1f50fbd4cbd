package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	event1 := Event{ID: "event1", Name: "discovery:session-created", At: time.Now()}
	if !q.Enqueue(ctx, event1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	eventChan := q.Dequeue(ctx)
	event := <-eventChan
	if event.ID != "event1" {
		t.Errorf("expected event1, got %v", event.ID)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Event{ID: "event1"}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, Event{ID: "event2"}) {
		t.Error("expected enqueue to succeed")
	}

	// Full queue drops instead of blocking
	if q.Enqueue(ctx, Event{ID: "event3"}) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_Publish(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.Publish(ctx, "discovery:session-created", map[string]string{"id": "s1"}); err != nil {
		t.Fatalf("expected publish to succeed, got %v", err)
	}

	if err := q.Publish(ctx, "discovery:session-updated", nil); !errors.Is(err, ErrBackpressure) {
		t.Errorf("expected ErrBackpressure, got %v", err)
	}

	eventChan := q.Dequeue(ctx)
	event := <-eventChan
	if event.Name != "discovery:session-created" {
		t.Errorf("unexpected event name %q", event.Name)
	}
	if event.ID == "" {
		t.Error("expected a generated event id")
	}
	if event.At.IsZero() {
		t.Error("expected a publish timestamp")
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Publish(ctx, "discovery:session-created", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2000))
	ctx := context.Background()
	numGoroutines := 10
	numEvents := 100

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numEvents; j++ {
				event := Event{
					ID:   fmt.Sprintf("event-%d-%d", id, j),
					Name: "discovery:session-updated",
				}
				if !q.Enqueue(ctx, event) {
					t.Errorf("enqueue failed for event-%d-%d", id, j)
				}
			}
			done <- true
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	if l := q.Len(ctx); l != numGoroutines*numEvents {
		t.Errorf("expected length %d, got %d", numGoroutines*numEvents, l)
	}

	received := 0
	eventChan := q.Dequeue(ctx)
	timeout := time.After(2 * time.Second)
	for received < numGoroutines*numEvents {
		select {
		case <-eventChan:
			received++
		case <-timeout:
			t.Fatalf("timed out after receiving %d events", received)
		}
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if q.IsClosed() {
		t.Error("expected new queue to be open")
	}

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected repeated close to be a no-op, got %v", err)
	}

	if q.Enqueue(ctx, Event{ID: "late"}) {
		t.Error("expected enqueue on closed queue to fail")
	}

	// Dequeue channel drains and closes
	eventChan := q.Dequeue(ctx)
	if _, ok := <-eventChan; ok {
		t.Error("expected dequeue channel to be closed")
	}
}
