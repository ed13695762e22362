package refetch

import (
	"errors"
	"fmt"
)

// ErrExecutorClosed is returned by Submit after Stop.
var ErrExecutorClosed = errors.New("refetch: executor closed")

// ErrQueueFull is the sentinel wrapped by QueueFullError.
var ErrQueueFull = errors.New("refetch: queue full")

// QueueFullError reports back-pressure on a shard.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("refetch: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

func (e *QueueFullError) Unwrap() error { return ErrQueueFull }
