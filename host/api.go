// Package host defines the contract toward the DAW: the API surface the
// session calls into, and the plugin shim that composes the real-time
// processor with the lazily-created session.
package host

import (
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

// Identity is the plugin's host-assigned location. Not guaranteed to be
// queryable at construction time; see the bootstrap package.
type Identity struct {
	TrackGUID string
	FxIndex   int
}

// TransportState is the host transport snapshot.
type TransportState struct {
	Playing         bool
	PositionSeconds float64
	Tempo           float64
}

// ResolvedTarget is the result of resolving a target descriptor against
// current host state. It is valid only for the dispatch it was resolved
// for; the next event resolves again, which is what lets an inert mapping
// self-heal when the referenced object reappears.
type ResolvedTarget struct {
	Target       mapping.Target
	CurrentValue float64
	Discrete     bool
	StepCount    int

	// Handle is an opaque host-internal key passed back on invocation.
	Handle string
}

// Characteristics returns the mode-facing view of the target.
func (rt ResolvedTarget) Characteristics() mapping.TargetCharacteristics {
	return mapping.TargetCharacteristics{
		CurrentValue: rt.CurrentValue,
		Discrete:     rt.Discrete,
		StepCount:    rt.StepCount,
	}
}

// API is the capability surface the main thread calls into. All methods are
// synchronous-but-fast and must only be called from the main thread, except
// SendMidi which the audio thread uses and which must be non-blocking.
//
// Resolution failures are expected and recoverable: a renamed or deleted
// host object yields errors.ErrTargetUnresolved, never a panic.
type API interface {
	// Identity reports the plugin's own track/FX location. Fails with
	// errors.ErrIdentityUnknown until the host has assigned it.
	Identity() (Identity, error)

	// ResolveTarget resolves a descriptor against current host state.
	ResolveTarget(target mapping.Target) (ResolvedTarget, error)

	// InvokeTarget applies a value to a previously resolved target.
	InvokeTarget(target ResolvedTarget, value float64) error

	// Transport returns the current transport state.
	Transport() TransportState

	// SendMidi emits a MIDI message on the plugin's output. Non-blocking;
	// called from the audio thread for feedback and clock.
	SendMidi(msg midi.ShortMessage)
}
