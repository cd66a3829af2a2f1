// Package realtime implements the processor that runs inside the host's
// audio/MIDI callback.
//
// # Real-time discipline
//
// Every exported method is total: it returns without blocking, panicking or
// allocating regardless of input. Matching runs against an immutable source
// table that is only ever replaced wholesale via a task, never mutated in
// place, so no lock exists between the audio thread and the main thread.
// Failures are recorded in atomic counters which the metric layer reads from
// the main thread.
//
// The processor is safely callable from exactly one thread: the host
// serializes calls into the plugin's audio path.
package realtime
