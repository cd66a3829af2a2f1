package main

import (
	"log/slog"
	"sync"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/host"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

// simHost is an in-memory stand-in for a DAW: a handful of tracks with
// volume, pan and mute, an FX parameter bank and a clip matrix. Target
// values live in maps keyed by the target description, which doubles as the
// resolution handle.
//
// The mutex covers concurrent access from the main loop and the MIDI
// listener goroutine; a real host serializes these itself.
type simHost struct {
	logger *slog.Logger

	mu     sync.Mutex
	values map[string]float64

	playing bool
	tempo   float64

	// sendMidi forwards feedback to the MIDI output port; nil when no
	// output was opened.
	sendMidi func(midi.ShortMessage)
}

func newSimHost(logger *slog.Logger) *simHost {
	return &simHost{
		logger: logger.With("component", "simhost"),
		values: make(map[string]float64),
		tempo:  120,
	}
}

// Identity implements host.API. The simulated host always knows who we are;
// the delayed-identity path is covered by tests, not by the runner.
func (h *simHost) Identity() (host.Identity, error) {
	return host.Identity{TrackGUID: "{simulated-track}", FxIndex: 0}, nil
}

// ResolveTarget implements host.API.
func (h *simHost) ResolveTarget(target mapping.Target) (host.ResolvedTarget, error) {
	if target.Type == mapping.TargetVirtual {
		return host.ResolvedTarget{}, errors.WrapInvalid(errors.ErrTargetUnresolved,
			"simHost", "ResolveTarget", "virtual targets never resolve")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	key := target.Describe()
	rt := host.ResolvedTarget{
		Target:       target,
		CurrentValue: h.values[key],
		Handle:       key,
	}
	if target.Type == mapping.TargetTrackMute || target.Type == mapping.TargetClipSlot {
		rt.Discrete = true
		rt.StepCount = 2
	}
	return rt, nil
}

// InvokeTarget implements host.API.
func (h *simHost) InvokeTarget(target host.ResolvedTarget, value float64) error {
	h.mu.Lock()
	h.values[target.Handle] = value
	if target.Target.Type == mapping.TargetTransportAction {
		switch target.Target.Action {
		case "play":
			h.playing = true
		case "stop":
			h.playing = false
		}
	}
	h.mu.Unlock()
	h.logger.Debug("target invoked", "target", target.Handle, "value", value)
	return nil
}

// Transport implements host.API.
func (h *simHost) Transport() host.TransportState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return host.TransportState{Playing: h.playing, Tempo: h.tempo}
}

// SendMidi implements host.API.
func (h *simHost) SendMidi(msg midi.ShortMessage) {
	if h.sendMidi != nil {
		h.sendMidi(msg)
	}
}
