package main

import (
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/host"
	"github.com/sonicbind/surfacemap/midi"
)

// intakeCapacity bounds the MIDI buffered between two audio ticks.
const intakeCapacity = 512

// eventSink consumes one audio block's worth of MIDI events.
type eventSink interface {
	ProcessEvents(events []host.MidiEvent)
}

// midiIntake hands messages from the MIDI driver's goroutine to the
// simulated audio thread. The real-time processor is single-threaded by
// contract (a plugin host serializes its audio callbacks), so the driver
// callback must never call into it directly. Push is safe from any
// goroutine; Forward runs on the audio goroutine only.
type midiIntake struct {
	queue *event.Channel[host.MidiEvent]
	block []host.MidiEvent
}

func newMidiIntake() *midiIntake {
	return &midiIntake{
		queue: event.NewChannel[host.MidiEvent](intakeCapacity),
		block: make([]host.MidiEvent, 0, intakeCapacity),
	}
}

// Push enqueues one message. A full queue drops it, like a host that ran
// out of event slots for the block.
func (q *midiIntake) Push(msg midi.ShortMessage) {
	q.queue.TrySend(host.MidiEvent{Message: msg})
}

// Forward drains everything buffered since the previous tick into the sink
// as one block. The block slice is reused across ticks.
func (q *midiIntake) Forward(sink eventSink) {
	q.block = q.block[:0]
	q.queue.Drain(intakeCapacity, func(ev host.MidiEvent) {
		q.block = append(q.block, ev)
	})
	if len(q.block) > 0 {
		sink.ProcessEvents(q.block)
	}
}

// Dropped reports messages discarded because the queue was full.
func (q *midiIntake) Dropped() uint64 {
	return q.queue.Dropped()
}
