package realtime

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

// maxTasksPerIdle bounds the task drain per Idle call so a configuration
// burst cannot eat into the audio budget.
const maxTasksPerIdle = 32

// suspensionGap is the wall-clock silence after which the processor assumes
// the audio device was closed and requests a full resync on the next call.
const suspensionGap = 2 * time.Second

// midiClockPPQ is the MIDI clock resolution, 24 pulses per quarter note.
const midiClockPPQ = 24

// MidiOutput is the host-level MIDI send capability. Implementations must
// be non-blocking; they are called from the audio thread.
type MidiOutput interface {
	SendMidi(msg midi.ShortMessage)
}

// Counters is a snapshot of the processor's diagnostics, read from the main
// thread by the metric layer.
type Counters struct {
	Matched      uint64
	Dropped      uint64
	Malformed    uint64
	TasksApplied uint64
	FeedbackSent uint64
	ClockTicks   uint64
}

// Processor receives host-delivered MIDI under the audio callback, matches
// it against the current source table and forwards control events to the
// session. It is constructed eagerly and fully; everything it needs later
// arrives via tasks.
type Processor struct {
	tasks *Channel
	main  *event.MainChannel
	out   MidiOutput

	// State below is owned by the audio thread after construction.
	table           *SourceTable
	controlEnabled  bool
	feedbackEnabled bool
	learning        bool
	sampleRate      float64

	clockBPM         float64
	samplesPerTick   float64
	samplesUntilTick float64

	lastIdle     int64 // unix nanos of the previous Idle call, 0 before first
	resyncWanted bool

	matched      atomic.Uint64
	dropped      atomic.Uint64
	malformed    atomic.Uint64
	tasksApplied atomic.Uint64
	feedbackSent atomic.Uint64
	clockTicks   atomic.Uint64
}

// New creates a processor bound to its two channels and the host MIDI
// output. The processor starts with an empty table, control and feedback
// enabled, and no clock.
func New(tasks *Channel, main *event.MainChannel, out MidiOutput) *Processor {
	return &Processor{
		tasks:           tasks,
		main:            main,
		out:             out,
		table:           EmptySourceTable(),
		controlEnabled:  true,
		feedbackEnabled: true,
	}
}

// ProcessIncomingMidi matches one host-delivered short message against the
// active source table and forwards control events. Total: malformed input
// is counted and ignored; a full session channel drops the event rather
// than stalling the callback. The sample offset is accepted for interface
// completeness; matching is offset-independent.
func (p *Processor) ProcessIncomingMidi(offset int32, msg midi.ShortMessage) {
	_ = offset
	if !msg.IsWellFormed() {
		p.malformed.Add(1)
		return
	}
	if msg.Kind() == midi.KindSystem {
		return
	}
	if p.learning {
		// While learning, the message's shape is captured instead of
		// being dispatched. One capture per arming.
		p.learning = false
		if src, ok := mapping.CaptureFromMidi(msg); ok {
			if !p.main.TrySend(event.CapturedTask(src)) {
				p.dropped.Add(1)
			}
		}
		return
	}
	if !p.controlEnabled {
		return
	}
	entries := p.table.Entries()
	for i := range entries {
		value, ok := entries[i].Source.MatchesMidi(msg)
		if !ok {
			continue
		}
		p.matched.Add(1)
		ev := event.ControlEvent{ID: entries[i].ID, Value: value}
		if !p.main.TrySend(event.ControlTask(ev)) {
			p.dropped.Add(1)
		}
	}
}

// Idle is called once per audio block. It detects suspension, drains the
// task channel with a fixed cap and advances MIDI clock timing. numSamples
// is the block length at the current sample rate.
func (p *Processor) Idle(numSamples int) {
	p.detectSuspension()

	for i := 0; i < maxTasksPerIdle; i++ {
		task, ok := p.tasks.Poll()
		if !ok {
			break
		}
		p.apply(task)
	}

	p.advanceClock(numSamples)
}

// EmitFeedback sends one feedback message computed by the main thread.
// Exposed for the host shim; feedback arriving via tasks takes the same
// path.
func (p *Processor) EmitFeedback(msg midi.ShortMessage) {
	if !p.feedbackEnabled || p.out == nil || !msg.IsWellFormed() {
		return
	}
	p.out.SendMidi(msg)
	p.feedbackSent.Add(1)
}

// Counters returns a snapshot of the diagnostics counters. Safe to call
// from any thread.
func (p *Processor) Counters() Counters {
	return Counters{
		Matched:      p.matched.Load(),
		Dropped:      p.dropped.Load(),
		Malformed:    p.malformed.Load(),
		TasksApplied: p.tasksApplied.Load(),
		FeedbackSent: p.feedbackSent.Load(),
		ClockTicks:   p.clockTicks.Load(),
	}
}

// SampleRate returns the currently applied sample rate. Test/diagnostic
// accessor; meaningful only from the audio thread's perspective.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

func (p *Processor) apply(task Task) {
	p.tasksApplied.Add(1)
	switch task.Kind {
	case TaskUpdateSampleRate:
		if task.SampleRate > 0 {
			p.sampleRate = task.SampleRate
			p.recomputeTick()
		}
	case TaskReplaceSourceTable:
		if task.Table != nil {
			p.table = task.Table
		}
	case TaskSetControlEnabled:
		p.controlEnabled = task.Flag
	case TaskSetFeedbackEnabled:
		p.feedbackEnabled = task.Flag
	case TaskStartLearning:
		p.learning = true
	case TaskStopLearning:
		p.learning = false
	case TaskEmitFeedback:
		p.EmitFeedback(task.Feedback)
	case TaskSetClock:
		p.clockBPM = task.ClockBPM
		p.recomputeTick()
	case TaskLogDebugInfo:
		p.reportCounters()
	}
}

func (p *Processor) detectSuspension() {
	now := time.Now().UnixNano()
	last := p.lastIdle
	p.lastIdle = now
	if last == 0 {
		return
	}
	if now-last > int64(suspensionGap) {
		p.resyncWanted = true
	}
	if p.resyncWanted && p.main.TrySend(event.FullResyncTask()) {
		p.resyncWanted = false
	}
}

func (p *Processor) recomputeTick() {
	if p.clockBPM <= 0 || p.sampleRate <= 0 {
		p.samplesPerTick = 0
		p.samplesUntilTick = 0
		return
	}
	p.samplesPerTick = p.sampleRate * 60 / (p.clockBPM * midiClockPPQ)
	if p.samplesUntilTick <= 0 || p.samplesUntilTick > p.samplesPerTick {
		p.samplesUntilTick = p.samplesPerTick
	}
}

func (p *Processor) advanceClock(numSamples int) {
	if p.samplesPerTick <= 0 || p.out == nil {
		return
	}
	p.samplesUntilTick -= float64(numSamples)
	for p.samplesUntilTick <= 0 {
		p.out.SendMidi(midi.NewShortMessage(midi.StatusTimingClock, 0, 0))
		p.clockTicks.Add(1)
		p.samplesUntilTick += p.samplesPerTick
	}
}

func (p *Processor) reportCounters() {
	d := event.Diagnostic{
		Level:     slog.LevelInfo,
		Component: "RealTimeProcessor",
		Message:   "counters",
		Value:     p.matched.Load(),
	}
	if !p.main.TrySend(event.DiagnosticTask(d)) {
		p.dropped.Add(1)
	}
}
