package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// FromGomidi converts a gomidi message into a ShortMessage. Messages longer
// than three bytes (sysex) and meta messages are rejected.
func FromGomidi(msg gomidi.Message) (ShortMessage, bool) {
	raw := []byte(msg)
	switch len(raw) {
	case 1:
		return NewShortMessage(raw[0], 0, 0), true
	case 2:
		return NewShortMessage(raw[0], raw[1], 0), true
	case 3:
		return NewShortMessage(raw[0], raw[1], raw[2]), true
	default:
		return ShortMessage{}, false
	}
}

// ToGomidi converts a ShortMessage into a gomidi message. This allocates and
// must not be called from the audio thread; it exists for feedback rendering,
// device output and tests on the main thread.
func (m ShortMessage) ToGomidi() gomidi.Message {
	switch m.Kind() {
	case KindNoteOn:
		return gomidi.NoteOn(m.Channel(), m.data1, m.data2)
	case KindNoteOff:
		return gomidi.NoteOff(m.Channel(), m.data1)
	case KindControlChange:
		return gomidi.ControlChange(m.Channel(), m.data1, m.data2)
	case KindPitchBend:
		abs := uint16(m.data1) | uint16(m.data2)<<7
		return gomidi.Pitchbend(m.Channel(), int16(int(abs)-8192))
	default:
		return gomidi.Message([]byte{m.status, m.data1, m.data2})
	}
}
