// Package surfacemap is a control-surface to DAW mapping engine: it turns
// events from hardware controllers into parameter changes in a plugin host,
// and host state back into controller feedback.
//
// # Architecture
//
// The engine is built around one mapping concept and two timing domains:
//
// A mapping is a Source -> Mode -> Target chain. The source recognizes
// inbound controller events, the mode shapes the value (absolute, relative,
// toggle), and the target names a piece of host state (track volume, an FX
// parameter, a transport action). Mappings live in two compartments:
// controller mappings translate device events into virtual control elements,
// main mappings bind those (or raw MIDI) to host state. See the mapping
// package.
//
// The audio thread runs the realtime.Processor: it matches incoming MIDI
// against an immutable compiled source table, forwards control events and
// handles feedback and clock output, all without locks or allocation. The
// main thread runs the session.Session, which owns all mapping state,
// resolves and invokes targets and recompiles the source table after every
// change. The two sides communicate exclusively through bounded non-blocking
// task channels (package event); the table is replaced by message, never
// mutated in place.
//
// The host package binds both sides into a plugin shim. Because a host may
// not be able to answer identity queries at construction time, the session
// is created lazily via the bootstrap package: scheduled at init, built on
// the first main-thread idle tick where the host cooperates, retried until
// it does. Audio processing works from construction on, session or not.
//
// Remote UIs talk to the engine over NATS through the service package;
// metrics are exported via the metric package. The cmd/surfacemap runner
// wires everything to a simulated host and real MIDI ports.
package surfacemap
