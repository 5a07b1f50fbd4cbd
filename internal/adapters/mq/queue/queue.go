// Package queue buffers realtime discovery events between the
// invalidation bus and the socket dispatchers.
//
// The queue is in-memory and bounded: when subscribers fall behind,
// events are dropped rather than stalling the write path.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtside/courtside/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 4096
	defaultBufferSize    = 4096
)

// Event is the envelope flowing through the queue. Payload is the
// already-built broadcast body; dispatchers forward it as-is.
type Event struct {
	ID      string
	Name    string
	Payload any
	At      time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event to the queue.
	// Returns false if the queue is full and the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel that will receive events as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events     chan Event
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.bufferSize)
	metrics.UpdateEventQueueSize(0)

	return q
}

// Enqueue adds an event to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordRealtimeDropped()
		return false
	}

	if len(q.events) >= q.capacity {
		metrics.RecordRealtimeDropped()
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordRealtimeEvent(e.Name)
		metrics.UpdateEventQueueSize(len(q.events))
		return true
	case <-ctx.Done():
		metrics.RecordRealtimeDropped()
		return false
	default:
		metrics.RecordRealtimeDropped()
		return false
	}
}

// Publish wraps Enqueue behind the bus's publisher contract: it stamps
// the envelope and converts a full or closed queue into an error.
func (q *InMemoryQueue) Publish(ctx context.Context, name string, payload any) error {
	e := Event{
		ID:      uuid.NewString(),
		Name:    name,
		Payload: payload,
		At:      time.Now().UTC(),
	}

	if q.IsClosed() {
		return ErrClosed
	}
	if !q.Enqueue(ctx, e) {
		return ErrBackpressure
	}
	return nil
}

// Dequeue returns a channel that will receive events as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	dequeueChan := make(chan Event)
	go func() {
		defer close(dequeueChan)
		for event := range q.events {
			select {
			case dequeueChan <- event:
				metrics.UpdateEventQueueSize(len(q.events))
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.events)
	metrics.UpdateEventQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.events)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
