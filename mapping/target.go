package mapping

import "fmt"

// TargetType names the kind of host state a target points at.
type TargetType uint8

const (
	// TargetTrackVolume controls a track's volume in [0, 1].
	TargetTrackVolume TargetType = iota
	// TargetTrackPan controls a track's pan, normalized to [0, 1].
	TargetTrackPan
	// TargetTrackMute toggles a track's mute state.
	TargetTrackMute
	// TargetFxParameter controls a parameter of an FX instance.
	TargetFxParameter
	// TargetTransportAction triggers a transport action (play, stop, ...).
	TargetTransportAction
	// TargetClipSlot triggers a cell of the clip matrix.
	TargetClipSlot
	// TargetVirtual emits a virtual control element consumed by
	// main-compartment mappings instead of touching host state.
	TargetVirtual
)

// String returns the target type name.
func (t TargetType) String() string {
	switch t {
	case TargetTrackVolume:
		return "track-volume"
	case TargetTrackPan:
		return "track-pan"
	case TargetTrackMute:
		return "track-mute"
	case TargetFxParameter:
		return "fx-parameter"
	case TargetTransportAction:
		return "transport-action"
	case TargetClipSlot:
		return "clip-slot"
	case TargetVirtual:
		return "virtual"
	default:
		return "unknown"
	}
}

// Target is an abstract reference into host state. It carries no live host
// handles; it must be resolved against current host state before every use,
// and resolution is allowed to fail without consequence beyond the mapping
// being inert for that event.
type Target struct {
	Type TargetType

	// TrackGUID identifies the track for track-scoped targets; empty means
	// "this plugin's own track".
	TrackGUID string

	// FxIndex/ParamIndex locate an FX parameter on the track.
	FxIndex    int
	ParamIndex int

	// Action names the transport action for TargetTransportAction.
	Action string

	// Row/Column locate a clip-matrix cell for TargetClipSlot.
	Row    int
	Column int

	// Element is the produced virtual element for TargetVirtual.
	Element string
}

// Describe returns a short diagnostic description.
func (t Target) Describe() string {
	switch t.Type {
	case TargetFxParameter:
		return fmt.Sprintf("%s fx=%d param=%d track=%q", t.Type, t.FxIndex, t.ParamIndex, t.TrackGUID)
	case TargetTransportAction:
		return fmt.Sprintf("%s action=%q", t.Type, t.Action)
	case TargetClipSlot:
		return fmt.Sprintf("%s cell=%d,%d", t.Type, t.Row, t.Column)
	case TargetVirtual:
		return fmt.Sprintf("%s element=%q", t.Type, t.Element)
	default:
		return fmt.Sprintf("%s track=%q", t.Type, t.TrackGUID)
	}
}
