package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/midi"
	"github.com/sonicbind/surfacemap/realtime"
)

func gatherValue(t *testing.T, r *Registry, name string) float64 {
	t.Helper()
	families, err := r.PrometheusRegistry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			m := f.GetMetric()[0]
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRegistry_RealTimeCollectors(t *testing.T) {
	r := NewRegistry()
	rtTasks := realtime.NewChannel()
	mainTasks := event.NewMainChannel()
	p := realtime.New(rtTasks, mainTasks, nil)

	require.NoError(t, r.RegisterRealTime(p))
	require.NoError(t, r.RegisterChannels(rtTasks, mainTasks))

	assert.Zero(t, gatherValue(t, r, "surfacemap_rt_events_matched_total"))

	// Counter reads go through the processor's atomics at scrape time.
	p.ProcessIncomingMidi(0, midi.ShortMessage{})
	assert.Equal(t, 1.0, gatherValue(t, r, "surfacemap_rt_malformed_messages_total"))

	// Channel backlog is a live gauge.
	rtTasks.TrySend(realtime.SetControlEnabledTask(true))
	assert.Equal(t, 1.0, gatherValue(t, r, "surfacemap_channel_rt_backlog"))
}

func TestRegistry_DuplicateRegistrationFails(t *testing.T) {
	r := NewRegistry()
	p := realtime.New(realtime.NewChannel(), event.NewMainChannel(), nil)
	require.NoError(t, r.RegisterRealTime(p))
	assert.Error(t, r.RegisterRealTime(p))
}

func TestRegistry_Handler(t *testing.T) {
	assert.NotNil(t, NewRegistry().Handler())
}
