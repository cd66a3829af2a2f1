package event

import (
	"log/slog"

	"github.com/sonicbind/surfacemap/mapping"
)

// ControlEvent is produced by the real-time processor when a source matches
// an incoming message. Immutable after creation, cheap to copy, carries no
// host references.
type ControlEvent struct {
	ID    mapping.QualifiedMappingID
	Value float64
}

// MainTaskKind discriminates tasks flowing toward the session.
type MainTaskKind uint8

const (
	// MainControl dispatches a control event through the mapping graph.
	MainControl MainTaskKind = iota
	// MainFeedbackAll recomputes and re-sends feedback for every
	// feedback-enabled mapping.
	MainFeedbackAll
	// MainFullResync asks the session to push all mapping state and
	// feedback to the real-time processor again. Sent by the real-time
	// processor after it detects it had been suspended.
	MainFullResync
	// MainDiagnostic carries a log record out of the audio thread.
	MainDiagnostic
	// MainCaptured carries a learned source shape out of the audio thread.
	MainCaptured
	// MainRun executes an arbitrary closure on the main thread. Used by
	// the service to marshal decoded commands into the session's thread;
	// the closure is allocated on the sending side, never in the audio
	// callback.
	MainRun
)

// Diagnostic is a log record produced on the audio thread with preformatted
// text, so emitting it required no allocation there.
type Diagnostic struct {
	Level     slog.Level
	Component string
	Message   string
	Value     uint64
}

// MainTask is a tagged union of everything the session consumes. A struct
// rather than an interface so that the audio-thread variants (control,
// diagnostic, captured) can be sent without boxing.
type MainTask struct {
	Kind       MainTaskKind
	Control    ControlEvent
	Diagnostic Diagnostic
	Captured   CapturedSource
	Run        func()
}

// CapturedSource is the result of learning: the shape of the message that
// arrived while learning was active.
type CapturedSource struct {
	Source mapping.Source
}

// ControlTask wraps a control event.
func ControlTask(ev ControlEvent) MainTask {
	return MainTask{Kind: MainControl, Control: ev}
}

// FeedbackAllTask requests full feedback recomputation.
func FeedbackAllTask() MainTask {
	return MainTask{Kind: MainFeedbackAll}
}

// FullResyncTask requests a complete resync toward the real-time processor.
func FullResyncTask() MainTask {
	return MainTask{Kind: MainFullResync}
}

// DiagnosticTask wraps a diagnostic record.
func DiagnosticTask(d Diagnostic) MainTask {
	return MainTask{Kind: MainDiagnostic, Diagnostic: d}
}

// CapturedTask wraps a learned source shape.
func CapturedTask(s mapping.Source) MainTask {
	return MainTask{Kind: MainCaptured, Captured: CapturedSource{Source: s}}
}

// RunTask wraps a closure to execute on the main thread.
func RunTask(fn func()) MainTask {
	return MainTask{Kind: MainRun, Run: fn}
}

// MainChannel is the audio→main (and service→main) task queue.
type MainChannel = Channel[MainTask]

// NewMainChannel creates the session-bound channel with the default
// capacity.
func NewMainChannel() *MainChannel {
	return NewChannel[MainTask](DefaultMainCapacity)
}

// NewMainChannelWithCapacity creates the session-bound channel with a custom
// capacity.
func NewMainChannelWithCapacity(capacity int) *MainChannel {
	return NewChannel[MainTask](capacity)
}
