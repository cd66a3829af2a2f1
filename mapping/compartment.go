package mapping

import (
	"github.com/sonicbind/surfacemap/errors"
)

// Compartment is an ordered collection of mappings plus groups. A mapping
// belongs to exactly one compartment. Order is preserved because mapping
// order is user-visible and controls virtual-source dispatch priority.
type Compartment struct {
	kind     CompartmentKind
	order    []MappingID
	mappings map[MappingID]*Mapping
	groups   map[GroupID]*Group
}

// NewCompartment returns an empty compartment of the given kind containing
// only the default group.
func NewCompartment(kind CompartmentKind) *Compartment {
	return &Compartment{
		kind:     kind,
		mappings: make(map[MappingID]*Mapping),
		groups: map[GroupID]*Group{
			DefaultGroup: {ID: DefaultGroup, Name: "default"},
		},
	}
}

// Kind returns the compartment kind.
func (c *Compartment) Kind() CompartmentKind {
	return c.kind
}

// Len returns the number of mappings.
func (c *Compartment) Len() int {
	return len(c.order)
}

// Add appends a mapping. Adding an ID that already exists is an invariant
// violation and is rejected.
func (c *Compartment) Add(m *Mapping) error {
	if m == nil || m.ID.IsZero() {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Compartment", "Add", "mapping without id")
	}
	if _, exists := c.mappings[m.ID]; exists {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Compartment", "Add", "duplicate mapping id")
	}
	if _, ok := c.groups[m.Group]; !ok {
		return errors.WrapInvalid(errors.ErrGroupNotFound, "Compartment", "Add", "unknown group")
	}
	c.mappings[m.ID] = m
	c.order = append(c.order, m.ID)
	return nil
}

// Get returns the mapping with the given ID, or nil. A miss is expected for
// IDs from in-flight tasks that raced a deletion.
func (c *Compartment) Get(id MappingID) *Mapping {
	return c.mappings[id]
}

// Remove deletes a mapping. The ID is never reused; see MappingID.
func (c *Compartment) Remove(id MappingID) bool {
	if _, ok := c.mappings[id]; !ok {
		return false
	}
	delete(c.mappings, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every mapping in order. fn must not add or remove
// mappings.
func (c *Compartment) Each(fn func(*Mapping)) {
	for _, id := range c.order {
		fn(c.mappings[id])
	}
}

// AddGroup registers a group.
func (c *Compartment) AddGroup(g *Group) error {
	if g == nil || g.ID == DefaultGroup {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Compartment", "AddGroup", "invalid group id")
	}
	if _, exists := c.groups[g.ID]; exists {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Compartment", "AddGroup", "duplicate group id")
	}
	c.groups[g.ID] = g
	return nil
}

// GroupOf returns the group a mapping belongs to, falling back to the
// default group for dangling references.
func (c *Compartment) GroupOf(m *Mapping) *Group {
	if g, ok := c.groups[m.Group]; ok {
		return g
	}
	return c.groups[DefaultGroup]
}

// GroupMembers calls fn for every mapping in the given group, in order.
func (c *Compartment) GroupMembers(id GroupID, fn func(*Mapping)) {
	for _, mid := range c.order {
		m := c.mappings[mid]
		if m.Group == id {
			fn(m)
		}
	}
}
