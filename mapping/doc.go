// Package mapping defines the mapping graph: compartments containing
// mappings, each composed of a source descriptor, a mode and a target
// descriptor, plus the change-notification types emitted after every
// accepted mutation.
//
// # Ownership
//
// The graph is plain data with single-thread affinity. It is owned and
// mutated exclusively by the session on the main thread. The real-time
// processor never sees these types; it works against immutable source-match
// snapshots compiled from them (see the realtime package).
//
// # Identity
//
// A MappingID is unique for the lifetime of a session and is never reused
// after deletion. QualifiedMappingID adds the compartment and is the join
// key between UI edits, real-time matches and feedback.
package mapping
