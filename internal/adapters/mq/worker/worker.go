// Package worker drains the realtime event queue and fans events out to
// the socket broadcaster.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/courtside/courtside/internal/adapters/mq/queue"
	"github.com/courtside/courtside/pkg/logger"
	"github.com/courtside/courtside/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultDispatcherCount = 2
	dispatcherStopTimeout  = 5 * time.Second
	poolShutdownTimeout    = 30 * time.Second
)

// Event abstracts what dispatchers read off the queue.
type Event = queue.Event

// Sink receives events for delivery to connected clients.
type Sink interface {
	Broadcast(event string, payload any) error
}

// Queue defines how dispatchers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Dispatcher forwards queued events to a sink until stopped.
type Dispatcher struct {
	queue Queue
	sink  Sink
	name  string

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewDispatcher creates a dispatcher with configuration options.
func NewDispatcher(q Queue, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:    q,
		sink:     sink,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("dispatcher"),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.name != "dispatcher" {
		d.logger = d.logger.Named(d.name)
	}

	return d
}

// Run starts the dispatch loop.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	eventChan := d.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}

			if err := d.deliver(ctx, event); err != nil {
				d.logger.Error(ctx, "event delivery failed", logger.Error(err))
			}
		}
	}
}

// stop signals the dispatch loop to exit. Safe to call more than once.
func (d *Dispatcher) stop() {
	d.stopOnce.Do(func() { close(d.shutdown) })
}

// Shutdown gracefully stops the dispatcher.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.stop()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// deliver hands a single event to the sink. A sink failure drops the
// event; clients reconcile by re-querying discovery.
func (d *Dispatcher) deliver(ctx context.Context, event Event) error {
	if err := d.sink.Broadcast(event.Name, event.Payload); err != nil {
		metrics.RecordRealtimeDropped()
		return fmt.Errorf("broadcast %s event %s: %w", event.Name, event.ID, err)
	}
	return nil
}

// Pool manages multiple dispatchers draining one queue.
type Pool struct {
	dispatchers []*Dispatcher
	queue       Queue
	sink        Sink

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a dispatcher pool.
func NewPool(count int, q Queue, sink Sink) *Pool {
	if count < 1 {
		count = defaultDispatcherCount
	}

	pool := &Pool{
		dispatchers: make([]*Dispatcher, count),
		queue:       q,
		sink:        sink,
		shutdown:    make(chan struct{}),
		logger:      logger.Get().Named("dispatcher-pool"),
	}

	for i := 0; i < count; i++ {
		pool.dispatchers[i] = NewDispatcher(
			q,
			sink,
			WithName("dispatcher-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateDispatcherCount(count)

	return pool
}

// Start starts all dispatchers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, d := range p.dispatchers {
		go d.Run(ctx)
	}
}

// Stop stops all dispatchers without waiting for the queue to drain.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, d := range p.dispatchers {
		d.stop()
	}
	for _, d := range p.dispatchers {
		select {
		case <-d.done:
		case <-time.After(dispatcherStopTimeout):
		}
	}
}

// Shutdown closes the queue and waits for the dispatchers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for _, d := range p.dispatchers {
		d.stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, d := range p.dispatchers {
		select {
		case <-d.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "dispatcher shutdown timed out", logger.Int("dispatcher_id", i))
		}
	}

	metrics.UpdateDispatcherCount(0)

	return nil
}
