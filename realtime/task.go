package realtime

import (
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/midi"
)

// TaskKind discriminates tasks flowing from the main thread into the
// processor.
type TaskKind uint8

const (
	// TaskUpdateSampleRate applies a new sample rate before any further
	// timing-dependent work.
	TaskUpdateSampleRate TaskKind = iota
	// TaskReplaceSourceTable swaps in a new immutable source snapshot.
	TaskReplaceSourceTable
	// TaskSetControlEnabled toggles control processing globally.
	TaskSetControlEnabled
	// TaskSetFeedbackEnabled toggles feedback emission globally.
	TaskSetFeedbackEnabled
	// TaskStartLearning makes the processor forward the next well-formed
	// message as a captured source shape instead of dispatching it.
	TaskStartLearning
	// TaskStopLearning cancels learning.
	TaskStopLearning
	// TaskEmitFeedback sends one precomputed feedback message to the host
	// MIDI output.
	TaskEmitFeedback
	// TaskSetClock configures MIDI clock generation.
	TaskSetClock
	// TaskLogDebugInfo makes the processor report its counters through the
	// diagnostics path.
	TaskLogDebugInfo
)

// Task is a tagged union. All variants are plain values; any allocation
// (e.g. building a source table) happens on the sending, non-real-time side.
type Task struct {
	Kind       TaskKind
	SampleRate float64
	Table      *SourceTable
	Flag       bool
	Feedback   midi.ShortMessage
	ClockBPM   float64
}

// UpdateSampleRateTask builds a sample-rate update.
func UpdateSampleRateTask(rate float64) Task {
	return Task{Kind: TaskUpdateSampleRate, SampleRate: rate}
}

// ReplaceSourceTableTask builds a table swap.
func ReplaceSourceTableTask(table *SourceTable) Task {
	return Task{Kind: TaskReplaceSourceTable, Table: table}
}

// SetControlEnabledTask toggles control processing.
func SetControlEnabledTask(enabled bool) Task {
	return Task{Kind: TaskSetControlEnabled, Flag: enabled}
}

// SetFeedbackEnabledTask toggles feedback emission.
func SetFeedbackEnabledTask(enabled bool) Task {
	return Task{Kind: TaskSetFeedbackEnabled, Flag: enabled}
}

// StartLearningTask arms learning.
func StartLearningTask() Task {
	return Task{Kind: TaskStartLearning}
}

// StopLearningTask cancels learning.
func StopLearningTask() Task {
	return Task{Kind: TaskStopLearning}
}

// EmitFeedbackTask wraps one outbound feedback message.
func EmitFeedbackTask(msg midi.ShortMessage) Task {
	return Task{Kind: TaskEmitFeedback, Feedback: msg}
}

// SetClockTask enables MIDI clock generation at the given tempo, or
// disables it when bpm is zero.
func SetClockTask(bpm float64) Task {
	return Task{Kind: TaskSetClock, ClockBPM: bpm}
}

// Channel is the main→audio task queue.
type Channel = event.Channel[Task]

// NewChannel creates the processor-bound channel with the default capacity.
func NewChannel() *Channel {
	return event.NewChannel[Task](event.DefaultRealTimeCapacity)
}

// NewChannelWithCapacity creates the processor-bound channel with a custom
// capacity.
func NewChannelWithCapacity(capacity int) *Channel {
	return event.NewChannel[Task](capacity)
}
