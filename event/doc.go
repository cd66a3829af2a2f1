// Package event provides the task types and the non-blocking channels that
// connect the real-time processor and the session.
//
// # Contract
//
// Exactly two unidirectional channels exist per plugin instance: one carries
// tasks from the main thread into the real-time processor, the other carries
// control events and diagnostics from the real-time processor (and the
// service) to the session. Each channel has a single consumer and delivers
// in send order; there is no ordering guarantee across the two channels.
//
// Sends never block: on a full or closed channel the task is dropped and a
// counter is incremented. Draining is always capped so neither thread can be
// starved by a backlog. Both channels are bounded; overflow drops the newest
// task (the session resynchronizes state via feedback-all, so dropped tasks
// are recoverable, while unbounded growth under a stalled host would not be).
package event
