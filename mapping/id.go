package mapping

import (
	"fmt"

	"github.com/google/uuid"
)

// MappingID is the stable identifier of a mapping. IDs are random and never
// reused within a session, so a stale ID from an in-flight task can at worst
// miss, never alias.
type MappingID uuid.UUID

// NewMappingID returns a fresh random mapping ID.
func NewMappingID() MappingID {
	return MappingID(uuid.New())
}

// ParseMappingID parses the canonical string form of a mapping ID.
func ParseMappingID(s string) (MappingID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MappingID{}, fmt.Errorf("parse mapping id: %w", err)
	}
	return MappingID(id), nil
}

// String returns the canonical UUID form.
func (id MappingID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the ID is the zero value.
func (id MappingID) IsZero() bool {
	return id == MappingID{}
}

// CompartmentKind names one of the two compartments of a session.
type CompartmentKind uint8

const (
	// CompartmentController holds controller-level mappings, typically
	// translating device events into virtual control elements.
	CompartmentController CompartmentKind = iota
	// CompartmentMain holds main (project-level) mappings.
	CompartmentMain
	compartmentCount
)

// String returns the compartment name.
func (k CompartmentKind) String() string {
	switch k {
	case CompartmentController:
		return "controller"
	case CompartmentMain:
		return "main"
	default:
		return "unknown"
	}
}

// Kinds lists the compartments in iteration order.
func Kinds() [2]CompartmentKind {
	return [2]CompartmentKind{CompartmentController, CompartmentMain}
}

// QualifiedMappingID identifies a mapping together with the compartment it
// lives in. Cheap to copy; safe to send across threads.
type QualifiedMappingID struct {
	Compartment CompartmentKind
	ID          MappingID
}

// Qualified returns the qualified form of id within compartment k.
func Qualified(k CompartmentKind, id MappingID) QualifiedMappingID {
	return QualifiedMappingID{Compartment: k, ID: id}
}

// String returns "compartment/uuid".
func (q QualifiedMappingID) String() string {
	return q.Compartment.String() + "/" + q.ID.String()
}
