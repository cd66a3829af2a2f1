// Package bootstrap reconciles host lifecycle ordering: the plugin's init
// callback runs before the host can reveal the plugin's own track/FX
// identity, so session construction is deferred to the next main-thread
// idle tick and published through a write-once cell.
//
// Every consumer of the cell treats "not yet filled" as a valid state. The
// coordinator is a run-once state machine; re-entrant scheduling (the host
// may call init-adjacent hooks more than once, e.g. on preset reload) is a
// no-op.
package bootstrap

import (
	"log/slog"
	"sync/atomic"
)

// Cell is a lazily-filled, write-once container. Get is safe from any
// thread (the audio path peeks at it on every callback); Fill must only be
// called once, by the coordinator, on the main thread.
type Cell[T any] struct {
	value atomic.Pointer[T]
}

// NewCell returns an empty cell.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// Fill publishes the value. The first fill wins; later fills are ignored
// and reported as false.
func (c *Cell[T]) Fill(value T) bool {
	return c.value.CompareAndSwap(nil, &value)
}

// Get returns the value, or false while the cell is empty. Never blocks.
func (c *Cell[T]) Get() (T, bool) {
	p := c.value.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Filled reports whether the cell holds a value.
func (c *Cell[T]) Filled() bool {
	return c.value.Load() != nil
}

// State is the coordinator's lifecycle position.
type State uint8

const (
	// Uninitialized means no creation has been scheduled yet.
	Uninitialized State = iota
	// ScheduledOnce means the deferred creation callback is registered
	// but has not run.
	ScheduledOnce
	// Filled means the session exists and the cell is populated.
	Filled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ScheduledOnce:
		return "scheduled"
	case Filled:
		return "filled"
	default:
		return "unknown"
	}
}

// Scheduler registers a callback for the next main-thread idle tick. The
// host shim provides the real implementation; tests drive it by hand.
type Scheduler interface {
	RunOnNextIdle(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// RunOnNextIdle implements Scheduler.
func (f SchedulerFunc) RunOnNextIdle(fn func()) { f(fn) }

// Coordinator defers construction of a value until host identity is
// knowable and publishes it exactly once. All methods run on the main
// thread.
type Coordinator[T any] struct {
	state  State
	cell   *Cell[T]
	logger *slog.Logger
}

// NewCoordinator creates a coordinator publishing into cell.
func NewCoordinator[T any](cell *Cell[T], logger *slog.Logger) *Coordinator[T] {
	return &Coordinator[T]{cell: cell, logger: logger}
}

// State returns the current lifecycle position.
func (c *Coordinator[T]) State() State {
	return c.state
}

// ScheduleSessionCreation registers factory to run on the next idle tick.
// Idempotent: calls while already scheduled or filled are no-ops. If the
// factory fails (host identity still not resolvable), the coordinator
// returns to Uninitialized so a later lifecycle hook can schedule again;
// until then the system simply stays in its valid "not ready" state.
func (c *Coordinator[T]) ScheduleSessionCreation(sched Scheduler, factory func() (T, error)) {
	if c.state != Uninitialized {
		c.logger.Debug("session creation already scheduled or done", "state", c.state.String())
		return
	}
	c.state = ScheduledOnce
	sched.RunOnNextIdle(func() {
		if c.state == Filled {
			return
		}
		value, err := factory()
		if err != nil {
			c.logger.Warn("deferred session creation failed, staying not ready", "error", err)
			c.state = Uninitialized
			return
		}
		if !c.cell.Fill(value) {
			c.logger.Warn("cell already filled by someone else")
		}
		c.state = Filled
		c.logger.Info("session created and published")
	})
}
