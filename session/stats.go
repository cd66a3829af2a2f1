package session

import "sync/atomic"

// Stats are the session's dispatch counters. Written on the main thread,
// read by the metric layer from its scrape goroutine, hence atomics.
type Stats struct {
	controlEvents      atomic.Uint64
	resolutionFailures atomic.Uint64
	hostCallFailures   atomic.Uint64
	unknownMappings    atomic.Uint64
	feedbackSent       atomic.Uint64
	changesApplied     atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	ControlEvents      uint64
	ResolutionFailures uint64
	HostCallFailures   uint64
	UnknownMappings    uint64
	FeedbackSent       uint64
	ChangesApplied     uint64
}

// Snapshot returns a copy of all counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		ControlEvents:      s.controlEvents.Load(),
		ResolutionFailures: s.resolutionFailures.Load(),
		HostCallFailures:   s.hostCallFailures.Load(),
		UnknownMappings:    s.unknownMappings.Load(),
		FeedbackSent:       s.feedbackSent.Load(),
		ChangesApplied:     s.changesApplied.Load(),
	}
}
