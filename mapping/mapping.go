package mapping

// Mapping binds one source through one mode to one target, plus the
// enablement flags and tags the session consults during dispatch. Mutated
// exclusively by the session; the real-time processor only ever sees the
// compiled source pattern.
type Mapping struct {
	ID     MappingID
	Name   string
	Group  GroupID
	Source Source
	Mode   Mode
	Target Target

	ControlEnabled      bool
	FeedbackEnabled     bool
	VisibleInProjection bool

	Tags []string
}

// New returns an enabled mapping with a fresh ID and an absolute mode.
func New(name string) *Mapping {
	return &Mapping{
		ID:                  NewMappingID(),
		Name:                name,
		Mode:                NewAbsoluteMode(),
		ControlEnabled:      true,
		FeedbackEnabled:     true,
		VisibleInProjection: true,
	}
}

// HasTag reports whether the mapping carries the given tag.
func (m *Mapping) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// GroupID identifies a group within a compartment. The zero value is the
// implicit default group.
type GroupID string

// DefaultGroup is the implicit group every mapping belongs to unless
// assigned elsewhere.
const DefaultGroup GroupID = ""

// Group collects mappings for interaction semantics such as exclusivity:
// when Exclusive is set, a control event for one member disables feedback
// for the other members.
type Group struct {
	ID        GroupID
	Name      string
	Exclusive bool
}
