package event

import "sync/atomic"

// Default channel capacities. The audio→main channel is larger because a
// burst of controller input can outpace the main thread's idle cadence.
const (
	DefaultMainCapacity     = 2048
	DefaultRealTimeCapacity = 512
)

// Channel is a unidirectional, bounded, non-blocking task queue with a
// single consumer. TrySend is safe to call from the audio thread: it never
// blocks, never allocates and never panics, even after Close.
//
// Close does not close the underlying Go channel (a send racing a close
// would panic); it only flips a flag that turns subsequent sends into
// counted drops. Teardown therefore degrades to no-ops, as required.
type Channel[T any] struct {
	ch      chan T
	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewChannel creates a channel with the given capacity.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Channel[T]{ch: make(chan T, capacity)}
}

// TrySend enqueues task without blocking. It reports false when the task
// was dropped because the channel is full or closed.
func (c *Channel[T]) TrySend(task T) bool {
	if c.closed.Load() {
		c.dropped.Add(1)
		return false
	}
	select {
	case c.ch <- task:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

// Poll receives one task without blocking.
func (c *Channel[T]) Poll() (T, bool) {
	select {
	case task := <-c.ch:
		return task, true
	default:
		var zero T
		return zero, false
	}
}

// Drain polls up to max tasks, invoking fn for each, and returns how many
// were processed. The cap bounds the consumer's work per tick.
func (c *Channel[T]) Drain(max int, fn func(T)) int {
	n := 0
	for n < max {
		task, ok := c.Poll()
		if !ok {
			break
		}
		fn(task)
		n++
	}
	return n
}

// Len returns the current backlog.
func (c *Channel[T]) Len() int {
	return len(c.ch)
}

// Dropped returns the number of tasks dropped so far.
func (c *Channel[T]) Dropped() uint64 {
	return c.dropped.Load()
}

// Close turns all subsequent sends into counted drops. Called by the
// consumer during teardown; idempotent.
func (c *Channel[T]) Close() {
	c.closed.Store(true)
}

// Closed reports whether Close has been called.
func (c *Channel[T]) Closed() bool {
	return c.closed.Load()
}
