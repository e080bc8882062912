package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueFull   = errors.New("change queue full")
	ErrQueueClosed = errors.New("change queue closed")
)
