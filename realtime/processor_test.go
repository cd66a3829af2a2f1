package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

type recordingOutput struct {
	sent []midi.ShortMessage
}

func (o *recordingOutput) SendMidi(msg midi.ShortMessage) {
	o.sent = append(o.sent, msg)
}

func newTestProcessor(mainCap int) (*Processor, *Channel, *event.MainChannel, *recordingOutput) {
	tasks := NewChannel()
	main := event.NewChannel[event.MainTask](mainCap)
	out := &recordingOutput{}
	return New(tasks, main, out), tasks, main, out
}

func tableWith(id mapping.QualifiedMappingID, src mapping.Source) *SourceTable {
	return NewSourceTable([]CompiledSource{{ID: id, Source: src}})
}

func ccSource(channel, number int16) mapping.Source {
	return mapping.Source{
		Kind:        mapping.SourceMidi,
		MessageKind: midi.KindControlChange,
		Channel:     channel,
		Number:      number,
	}
}

func drainMain(main *event.MainChannel) []event.MainTask {
	var got []event.MainTask
	main.Drain(1000, func(t event.MainTask) { got = append(got, t) })
	return got
}

func TestProcessor_MatchProducesControlEvent(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(16)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(0, 7))))
	p.Idle(64)

	p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, 127))

	got := drainMain(main)
	require.Len(t, got, 1)
	assert.Equal(t, event.MainControl, got[0].Kind)
	assert.Equal(t, id, got[0].Control.ID)
	assert.InDelta(t, 1.0, got[0].Control.Value, 1e-9)
	assert.Equal(t, uint64(1), p.Counters().Matched)
}

func TestProcessor_NoMatchProducesNothing(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(16)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(0, 7))))
	p.Idle(64)

	p.ProcessIncomingMidi(0, midi.ControlChange(1, 7, 127))
	p.ProcessIncomingMidi(0, midi.NoteOn(0, 60, 100))

	assert.Empty(t, drainMain(main))
	assert.Equal(t, uint64(0), p.Counters().Matched)
}

func TestProcessor_MalformedInputIsCountedNotFatal(t *testing.T) {
	p, _, main, _ := newTestProcessor(16)

	p.ProcessIncomingMidi(0, midi.ShortMessage{})
	p.ProcessIncomingMidi(0, midi.NewShortMessage(0x12, 0x99, 0xFF))

	assert.Empty(t, drainMain(main))
	assert.Equal(t, uint64(2), p.Counters().Malformed)
}

func TestProcessor_FullChannelDropsInsteadOfBlocking(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(2)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(mapping.AnyChannel, mapping.AnyNumber))))
	p.Idle(64)

	for i := 0; i < 5; i++ {
		p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, byte(i)))
	}

	assert.Len(t, drainMain(main), 2, "only the buffered events survive")
	c := p.Counters()
	assert.Equal(t, uint64(5), c.Matched)
	assert.Equal(t, uint64(3), c.Dropped)
}

func TestProcessor_IdleAppliesSampleRateBeforeClockWork(t *testing.T) {
	p, tasks, _, out := newTestProcessor(16)
	tasks.TrySend(UpdateSampleRateTask(96000))
	tasks.TrySend(SetClockTask(120))

	// Both tasks are applied in this Idle call, then clock advances at the
	// new rate. 120 BPM × 24 PPQ = 48 ticks/s → one tick per 2000 samples.
	p.Idle(2000)

	assert.Equal(t, 96000.0, p.SampleRate())
	require.Len(t, out.sent, 1)
	assert.Equal(t, midi.StatusTimingClock, out.sent[0].Status())
	assert.Equal(t, uint64(1), p.Counters().ClockTicks)
}

func TestProcessor_IdleDrainIsCapped(t *testing.T) {
	p, tasks, _, _ := newTestProcessor(16)
	for i := 0; i < maxTasksPerIdle+10; i++ {
		require.True(t, tasks.TrySend(SetControlEnabledTask(true)))
	}

	p.Idle(64)
	assert.Equal(t, uint64(maxTasksPerIdle), p.Counters().TasksApplied)
	assert.Equal(t, 10, tasks.Len(), "excess tasks wait for the next idle call")
}

func TestProcessor_ControlDisabledSuppressesEvents(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(16)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(0, 7))))
	tasks.TrySend(SetControlEnabledTask(false))
	p.Idle(64)

	p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, 64))
	assert.Empty(t, drainMain(main))

	tasks.TrySend(SetControlEnabledTask(true))
	p.Idle(64)
	p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, 64))
	assert.Len(t, drainMain(main), 1)
}

func TestProcessor_EmitFeedback(t *testing.T) {
	p, tasks, _, out := newTestProcessor(16)

	p.EmitFeedback(midi.ControlChange(0, 16, 100))
	require.Len(t, out.sent, 1)
	assert.Equal(t, uint64(1), p.Counters().FeedbackSent)

	// Feedback also arrives as a task from the session.
	tasks.TrySend(EmitFeedbackTask(midi.NoteOn(0, 60, 127)))
	p.Idle(64)
	assert.Len(t, out.sent, 2)

	// Malformed feedback is ignored.
	p.EmitFeedback(midi.ShortMessage{})
	assert.Len(t, out.sent, 2)

	// Disabled feedback is suppressed.
	tasks.TrySend(SetFeedbackEnabledTask(false))
	p.Idle(64)
	p.EmitFeedback(midi.ControlChange(0, 16, 1))
	assert.Len(t, out.sent, 2)
}

func TestProcessor_LearningCapturesInsteadOfDispatching(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(16)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(0, 7))))
	tasks.TrySend(StartLearningTask())
	p.Idle(64)

	p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, 64))

	got := drainMain(main)
	require.Len(t, got, 1)
	require.Equal(t, event.MainCaptured, got[0].Kind)
	src := got[0].Captured.Source
	assert.Equal(t, midi.KindControlChange, src.MessageKind)
	assert.Equal(t, int16(0), src.Channel)
	assert.Equal(t, int16(7), src.Number)

	// Learning disarms after one capture; the next message dispatches.
	p.ProcessIncomingMidi(0, midi.ControlChange(0, 7, 64))
	got = drainMain(main)
	require.Len(t, got, 1)
	assert.Equal(t, event.MainControl, got[0].Kind)
}

func TestProcessor_SystemMessagesNeverDispatch(t *testing.T) {
	p, tasks, main, _ := newTestProcessor(16)
	id := mapping.Qualified(mapping.CompartmentMain, mapping.NewMappingID())
	tasks.TrySend(ReplaceSourceTableTask(tableWith(id, ccSource(mapping.AnyChannel, mapping.AnyNumber))))
	p.Idle(64)

	p.ProcessIncomingMidi(0, midi.NewShortMessage(midi.StatusTimingClock, 0, 0))
	p.ProcessIncomingMidi(0, midi.NewShortMessage(midi.StatusStart, 0, 0))
	assert.Empty(t, drainMain(main))
}

func TestSourceTable_Immutability(t *testing.T) {
	entries := []CompiledSource{{Source: ccSource(0, 7)}}
	table := NewSourceTable(entries)
	entries[0].Source = ccSource(5, 5)

	assert.Equal(t, int16(0), table.Entries()[0].Source.Channel,
		"mutating the input slice must not affect the snapshot")

	_, _, ok := EmptySourceTable().MatchMidi(midi.ControlChange(0, 7, 1))
	assert.False(t, ok)
}
