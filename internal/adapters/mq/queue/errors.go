package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	// ErrQueueFull signals backpressure to the intake layer.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueClosed marks an enqueue after shutdown began.
	ErrQueueClosed = errors.New("queue closed")
)
