package session

import (
	"github.com/sonicbind/surfacemap/mapping"
)

// MappingChange is one UI-originated mutation of exactly one mapping. Apply
// runs on the main thread against the live mapping; Affected describes the
// scope for the resulting change notification.
type MappingChange interface {
	Apply(m *mapping.Mapping)
	Affected() mapping.Affected
}

// SetName renames the mapping.
type SetName struct{ Name string }

// Apply implements MappingChange.
func (c SetName) Apply(m *mapping.Mapping) { m.Name = c.Name }

// Affected implements MappingChange.
func (c SetName) Affected() mapping.Affected { return mapping.AffectedOne(mapping.PropName) }

// SetSource replaces the source descriptor.
type SetSource struct{ Source mapping.Source }

// Apply implements MappingChange.
func (c SetSource) Apply(m *mapping.Mapping) { m.Source = c.Source }

// Affected implements MappingChange.
func (c SetSource) Affected() mapping.Affected { return mapping.AffectedOne(mapping.PropSource) }

// SetMode replaces the mode.
type SetMode struct{ Mode mapping.Mode }

// Apply implements MappingChange.
func (c SetMode) Apply(m *mapping.Mapping) { m.Mode = c.Mode }

// Affected implements MappingChange.
func (c SetMode) Affected() mapping.Affected { return mapping.AffectedOne(mapping.PropMode) }

// SetTarget replaces the target descriptor.
type SetTarget struct{ Target mapping.Target }

// Apply implements MappingChange.
func (c SetTarget) Apply(m *mapping.Mapping) { m.Target = c.Target }

// Affected implements MappingChange.
func (c SetTarget) Affected() mapping.Affected { return mapping.AffectedOne(mapping.PropTarget) }

// SetControlEnabled toggles control for the mapping.
type SetControlEnabled struct{ Enabled bool }

// Apply implements MappingChange.
func (c SetControlEnabled) Apply(m *mapping.Mapping) { m.ControlEnabled = c.Enabled }

// Affected implements MappingChange.
func (c SetControlEnabled) Affected() mapping.Affected {
	return mapping.AffectedOne(mapping.PropControlEnabled)
}

// SetFeedbackEnabled toggles feedback for the mapping.
type SetFeedbackEnabled struct{ Enabled bool }

// Apply implements MappingChange.
func (c SetFeedbackEnabled) Apply(m *mapping.Mapping) { m.FeedbackEnabled = c.Enabled }

// Affected implements MappingChange.
func (c SetFeedbackEnabled) Affected() mapping.Affected {
	return mapping.AffectedOne(mapping.PropFeedbackEnabled)
}

// SetTags replaces the tag list.
type SetTags struct{ Tags []string }

// Apply implements MappingChange.
func (c SetTags) Apply(m *mapping.Mapping) { m.Tags = c.Tags }

// Affected implements MappingChange.
func (c SetTags) Affected() mapping.Affected { return mapping.AffectedOne(mapping.PropTags) }

// ReplaceAll overwrites every editable property at once (preset load).
type ReplaceAll struct {
	Name            string
	Source          mapping.Source
	Mode            mapping.Mode
	Target          mapping.Target
	ControlEnabled  bool
	FeedbackEnabled bool
	Tags            []string
}

// Apply implements MappingChange.
func (c ReplaceAll) Apply(m *mapping.Mapping) {
	m.Name = c.Name
	m.Source = c.Source
	m.Mode = c.Mode
	m.Target = c.Target
	m.ControlEnabled = c.ControlEnabled
	m.FeedbackEnabled = c.FeedbackEnabled
	m.Tags = c.Tags
}

// Affected implements MappingChange.
func (c ReplaceAll) Affected() mapping.Affected { return mapping.AffectedMultiple() }
