// Package service exposes a session to remote UIs over NATS.
//
// Commands arrive as JSON on "<prefix>.cmd.<name>" subjects and are marshaled
// onto the main thread as run tasks, so the session never needs locks. Every
// command produces a result event; mapping changes, feedback values and
// audio-thread diagnostics are published as they happen. Occasional events
// (mapping changes, command results) are expected to be delivered; continuous
// events (feedback values) are fire-and-forget, a UI that misses one catches
// up on the next.
package service
