package realtime

import (
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

// CompiledSource is one row of the source table: the precompiled pattern of
// a control-enabled mapping. Plain values only; the audio thread must never
// see a live graph object.
type CompiledSource struct {
	ID     mapping.QualifiedMappingID
	Source mapping.Source
}

// SourceTable is the immutable snapshot the processor matches against.
// Replacement happens via TaskReplaceSourceTable; the table itself is never
// mutated after construction.
type SourceTable struct {
	entries []CompiledSource
}

// NewSourceTable builds a table from the given rows. The slice is copied so
// the caller cannot mutate the snapshot afterwards.
func NewSourceTable(entries []CompiledSource) *SourceTable {
	copied := make([]CompiledSource, len(entries))
	copy(copied, entries)
	return &SourceTable{entries: copied}
}

// EmptySourceTable returns a table matching nothing.
func EmptySourceTable() *SourceTable {
	return &SourceTable{}
}

// Len returns the number of rows.
func (t *SourceTable) Len() int {
	return len(t.entries)
}

// Entries exposes the rows for iteration. Callers must treat the slice as
// read-only.
func (t *SourceTable) Entries() []CompiledSource {
	return t.entries
}

// MatchMidi returns the value and id of the first row matching msg. The
// processor iterates Entries directly to report every match without a
// callback; this helper exists for tests and tooling.
func (t *SourceTable) MatchMidi(msg midi.ShortMessage) (mapping.QualifiedMappingID, float64, bool) {
	for i := range t.entries {
		if v, ok := t.entries[i].Source.MatchesMidi(msg); ok {
			return t.entries[i].ID, v, true
		}
	}
	return mapping.QualifiedMappingID{}, 0, false
}
