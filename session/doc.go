// Package session implements the single-threaded owner of the mapping
// graph: the main-thread dispatch loop that consumes tasks, resolves
// targets, runs modes, talks to the host API and computes feedback.
//
// # Threading
//
// Everything in this package runs on the host's main thread at idle
// cadence. The session is never sent across threads; other components reach
// it only through the bootstrap cell. Work per idle tick is capped so a
// backlog cannot starve host UI responsiveness.
//
// # Failure policy
//
// Target resolution failures are expected: the affected mapping behaves as
// disabled for that event and self-heals once the host object reappears.
// Host call failures are logged and count as applied with no effect.
// Unknown mapping ids are silent no-ops, because cross-thread latency makes
// existence unverifiable at send time. Nothing in the dispatch loop
// panics or stops the loop.
package session
