package bootstrap

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler collects deferred callbacks and runs them when told,
// imitating the host's main-thread idle tick.
type fakeScheduler struct {
	pending []func()
}

func (s *fakeScheduler) RunOnNextIdle(fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *fakeScheduler) tick() {
	pending := s.pending
	s.pending = nil
	for _, fn := range pending {
		fn()
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCell_FillOnce(t *testing.T) {
	cell := NewCell[int]()

	_, ok := cell.Get()
	assert.False(t, ok, "empty cell is a valid state, not an error")
	assert.False(t, cell.Filled())

	assert.True(t, cell.Fill(42))
	v, ok := cell.Get()
	require.True(t, ok)
	assert.Equal(t, 42, v)

	assert.False(t, cell.Fill(99), "second fill is ignored")
	v, _ = cell.Get()
	assert.Equal(t, 42, v)
}

func TestCoordinator_CreatesExactlyOnce(t *testing.T) {
	cell := NewCell[string]()
	c := NewCoordinator(cell, testLogger())
	sched := &fakeScheduler{}

	created := 0
	factory := func() (string, error) {
		created++
		return "session", nil
	}

	assert.Equal(t, Uninitialized, c.State())
	c.ScheduleSessionCreation(sched, factory)
	assert.Equal(t, ScheduledOnce, c.State())
	assert.False(t, cell.Filled(), "not filled until the idle tick")

	// A second accidental call before the tick is a no-op.
	c.ScheduleSessionCreation(sched, factory)
	require.Len(t, sched.pending, 1)

	sched.tick()
	assert.Equal(t, Filled, c.State())
	assert.Equal(t, 1, created)
	v, ok := cell.Get()
	require.True(t, ok)
	assert.Equal(t, "session", v)

	// Scheduling after fill stays a no-op.
	c.ScheduleSessionCreation(sched, factory)
	sched.tick()
	assert.Equal(t, 1, created)
}

func TestCoordinator_FactoryFailureAllowsRetry(t *testing.T) {
	cell := NewCell[string]()
	c := NewCoordinator(cell, testLogger())
	sched := &fakeScheduler{}

	attempts := 0
	factory := func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", fmt.Errorf("identity not yet queryable")
		}
		return "session", nil
	}

	c.ScheduleSessionCreation(sched, factory)
	sched.tick()
	assert.Equal(t, Uninitialized, c.State(), "failure returns to uninitialized")
	assert.False(t, cell.Filled())

	c.ScheduleSessionCreation(sched, factory)
	sched.tick()
	assert.Equal(t, Filled, c.State())
	assert.True(t, cell.Filled())
	assert.Equal(t, 2, attempts)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "scheduled", ScheduledOnce.String())
	assert.Equal(t, "filled", Filled.String())
	assert.Equal(t, "unknown", State(9).String())
}
