package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrClosed is returned when publishing to a closed queue.
	ErrClosed = errors.New("queue closed")

	// ErrBackpressure is returned when the queue is full and the event
	// was dropped.
	ErrBackpressure = errors.New("queue full, event dropped")
)
