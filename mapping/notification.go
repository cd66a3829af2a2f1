package mapping

// Prop identifies a single mapping property in change notifications, so a
// UI can re-render exactly what changed instead of diffing snapshots.
type Prop uint8

const (
	// PropName is the mapping's display name.
	PropName Prop = iota
	// PropSource is the source descriptor.
	PropSource
	// PropMode is the mode.
	PropMode
	// PropTarget is the target descriptor.
	PropTarget
	// PropControlEnabled is the control-enabled flag.
	PropControlEnabled
	// PropFeedbackEnabled is the feedback-enabled flag.
	PropFeedbackEnabled
	// PropVisibleInProjection is the projection visibility flag.
	PropVisibleInProjection
	// PropTags is the tag list.
	PropTags
	// PropGroup is the group membership.
	PropGroup
)

// String returns the property name as used on the wire.
func (p Prop) String() string {
	switch p {
	case PropName:
		return "name"
	case PropSource:
		return "source"
	case PropMode:
		return "mode"
	case PropTarget:
		return "target"
	case PropControlEnabled:
		return "control_enabled"
	case PropFeedbackEnabled:
		return "feedback_enabled"
	case PropVisibleInProjection:
		return "visible_in_projection"
	case PropTags:
		return "tags"
	case PropGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Affected describes the scope of a mutation: either exactly one property
// or multiple at once (e.g. after loading a preset).
type Affected struct {
	multiple bool
	prop     Prop
}

// AffectedOne marks exactly one property as changed.
func AffectedOne(p Prop) Affected {
	return Affected{prop: p}
}

// AffectedMultiple marks the whole mapping as changed.
func AffectedMultiple() Affected {
	return Affected{multiple: true}
}

// One returns the single changed property, or false if multiple changed.
func (a Affected) One() (Prop, bool) {
	if a.multiple {
		return 0, false
	}
	return a.prop, true
}

// Multiple reports whether more than one property changed.
func (a Affected) Multiple() bool {
	return a.multiple
}

// Change is emitted after every mutation the session accepts. Initiator
// carries the id of the UI control that caused the mutation (empty when the
// change came from learning or the service), so the originating control can
// suppress its own redundant re-render.
type Change struct {
	Mapping   QualifiedMappingID
	Affected  Affected
	Initiator string
}

// ChangeListener receives change notifications on the main thread.
type ChangeListener interface {
	MappingChanged(Change)
}

// ChangeListenerFunc adapts a function to the ChangeListener interface.
type ChangeListenerFunc func(Change)

// MappingChanged implements ChangeListener.
func (f ChangeListenerFunc) MappingChanged(c Change) { f(c) }
