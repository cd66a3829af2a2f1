package mapping

import (
	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/midi"
)

// SourceKind distinguishes the event family a source matches.
type SourceKind uint8

const (
	// SourceMidi matches raw MIDI short messages.
	SourceMidi SourceKind = iota
	// SourceVirtual matches virtual control elements emitted by
	// controller-compartment mappings.
	SourceVirtual
)

// AnyChannel and AnyNumber are wildcard values in a MIDI source pattern.
const (
	AnyChannel int16 = -1
	AnyNumber  int16 = -1
)

// Source is the pattern a mapping uses to recognize inbound control events
// and, for feedback, to render outbound messages. It is a pure value type:
// matching performs no allocation and no mutation, which is what allows the
// compiled source table to be shared with the audio thread as an immutable
// snapshot.
type Source struct {
	Kind SourceKind

	// MIDI pattern; only meaningful when Kind == SourceMidi.
	MessageKind midi.MessageKind
	Channel     int16 // 0-15, or AnyChannel
	Number      int16 // note/controller number 0-127, or AnyNumber

	// Virtual element id; only meaningful when Kind == SourceVirtual.
	Element string
}

// Validate checks the pattern for internal consistency.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceMidi:
		if s.MessageKind == midi.KindInvalid || s.MessageKind == midi.KindSystem {
			return errors.WrapInvalid(errors.ErrInvalidSource, "Source", "Validate", "unmatched message kind")
		}
		if s.Channel != AnyChannel && (s.Channel < 0 || s.Channel > 15) {
			return errors.WrapInvalid(errors.ErrInvalidSource, "Source", "Validate", "channel out of range")
		}
		if s.Number != AnyNumber && (s.Number < 0 || s.Number > 127) {
			return errors.WrapInvalid(errors.ErrInvalidSource, "Source", "Validate", "number out of range")
		}
		return nil
	case SourceVirtual:
		if s.Element == "" {
			return errors.WrapInvalid(errors.ErrInvalidSource, "Source", "Validate", "empty virtual element")
		}
		return nil
	default:
		return errors.WrapInvalid(errors.ErrInvalidSource, "Source", "Validate", "unknown source kind")
	}
}

// MatchesMidi reports whether msg matches this source pattern and, if so,
// returns the normalized control value in [0, 1]. Total and allocation-free;
// called from the audio thread through the compiled source table.
func (s Source) MatchesMidi(msg midi.ShortMessage) (float64, bool) {
	if s.Kind != SourceMidi {
		return 0, false
	}
	kind := msg.Kind()
	// A note-off (or note-on with velocity zero) releases a note-on source.
	if kind != s.MessageKind && !(kind == midi.KindNoteOff && s.MessageKind == midi.KindNoteOn) {
		return 0, false
	}
	if s.Channel != AnyChannel && msg.Channel() != byte(s.Channel) {
		return 0, false
	}
	if s.Number != AnyNumber {
		num, ok := msg.KeyNumber()
		if !ok || num != byte(s.Number) {
			return 0, false
		}
	}
	if kind == midi.KindNoteOn && msg.Data2() == 0 {
		return 0, true
	}
	return msg.ControlValue()
}

// MatchesVirtual reports whether the given virtual element matches.
func (s Source) MatchesVirtual(element string) bool {
	return s.Kind == SourceVirtual && s.Element == element
}

// RenderFeedback renders a feedback value in [0, 1] into an outbound MIDI
// message. Rendering requires a fully concrete pattern; wildcard channels or
// numbers cannot be rendered and report false.
func (s Source) RenderFeedback(value float64) (midi.ShortMessage, bool) {
	if s.Kind != SourceMidi || s.Channel == AnyChannel {
		return midi.ShortMessage{}, false
	}
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	ch := byte(s.Channel)
	switch s.MessageKind {
	case midi.KindControlChange:
		if s.Number == AnyNumber {
			return midi.ShortMessage{}, false
		}
		return midi.ControlChange(ch, byte(s.Number), byte(value*127+0.5)), true
	case midi.KindNoteOn:
		if s.Number == AnyNumber {
			return midi.ShortMessage{}, false
		}
		v := byte(value*127 + 0.5)
		if v == 0 {
			return midi.NoteOff(ch, byte(s.Number)), true
		}
		return midi.NoteOn(ch, byte(s.Number), v), true
	case midi.KindPitchBend:
		return midi.PitchBend(ch, uint16(value*16383+0.5)), true
	default:
		return midi.ShortMessage{}, false
	}
}

// CaptureFromMidi derives a concrete source pattern from an observed
// message, used while learning. The second result is false for messages
// that cannot act as a control source (system, malformed).
func CaptureFromMidi(msg midi.ShortMessage) (Source, bool) {
	kind := msg.Kind()
	switch kind {
	case midi.KindInvalid, midi.KindSystem:
		return Source{}, false
	case midi.KindNoteOff:
		kind = midi.KindNoteOn
	}
	s := Source{
		Kind:        SourceMidi,
		MessageKind: kind,
		Channel:     int16(msg.Channel()),
		Number:      AnyNumber,
	}
	if num, ok := msg.KeyNumber(); ok {
		s.Number = int16(num)
	}
	return s, true
}
