// Package midi provides the raw short-message value type used on the
// real-time path plus conversion helpers toward gomidi for everything that
// runs on the main thread.
//
// ShortMessage is a plain 3-byte value with no heap footprint. All methods
// on it are total: malformed input yields KindInvalid, never a panic. The
// audio callback only ever touches this type; gomidi message construction
// (which allocates) is reserved for feedback rendering and tooling.
package midi

// MessageKind classifies a short message by its status nibble.
type MessageKind uint8

const (
	// KindInvalid marks a message that is not a well-formed short message.
	KindInvalid MessageKind = iota
	// KindNoteOff is a channel note-off message (0x8n).
	KindNoteOff
	// KindNoteOn is a channel note-on message (0x9n).
	KindNoteOn
	// KindPolyAftertouch is polyphonic key pressure (0xAn).
	KindPolyAftertouch
	// KindControlChange is a control change message (0xBn).
	KindControlChange
	// KindProgramChange is a program change message (0xCn).
	KindProgramChange
	// KindChannelAftertouch is channel pressure (0xDn).
	KindChannelAftertouch
	// KindPitchBend is a pitch bend message (0xEn).
	KindPitchBend
	// KindSystem covers all 0xFn system messages (clock, start, stop, ...).
	KindSystem
)

// String returns a short human-readable name for the kind.
func (k MessageKind) String() string {
	switch k {
	case KindNoteOff:
		return "note-off"
	case KindNoteOn:
		return "note-on"
	case KindPolyAftertouch:
		return "poly-aftertouch"
	case KindControlChange:
		return "control-change"
	case KindProgramChange:
		return "program-change"
	case KindChannelAftertouch:
		return "channel-aftertouch"
	case KindPitchBend:
		return "pitch-bend"
	case KindSystem:
		return "system"
	default:
		return "invalid"
	}
}

// System real-time status bytes the real-time processor cares about.
const (
	StatusTimingClock byte = 0xF8
	StatusStart       byte = 0xFA
	StatusContinue    byte = 0xFB
	StatusStop        byte = 0xFC
	StatusActiveSense byte = 0xFE
	StatusSystemReset byte = 0xFF
)

// ShortMessage is an immutable 1-3 byte MIDI message. The zero value is not
// well formed and matches nothing.
type ShortMessage struct {
	status byte
	data1  byte
	data2  byte
}

// NewShortMessage builds a ShortMessage from raw bytes. It never fails;
// validity is checked lazily via Kind and IsWellFormed.
func NewShortMessage(status, data1, data2 byte) ShortMessage {
	return ShortMessage{status: status, data1: data1, data2: data2}
}

// NoteOn builds a note-on short message.
func NoteOn(channel, key, velocity byte) ShortMessage {
	return ShortMessage{status: 0x90 | channel&0x0F, data1: key & 0x7F, data2: velocity & 0x7F}
}

// NoteOff builds a note-off short message.
func NoteOff(channel, key byte) ShortMessage {
	return ShortMessage{status: 0x80 | channel&0x0F, data1: key & 0x7F}
}

// ControlChange builds a control-change short message.
func ControlChange(channel, controller, value byte) ShortMessage {
	return ShortMessage{status: 0xB0 | channel&0x0F, data1: controller & 0x7F, data2: value & 0x7F}
}

// PitchBend builds a pitch-bend short message from a 14-bit value.
func PitchBend(channel byte, value uint16) ShortMessage {
	return ShortMessage{
		status: 0xE0 | channel&0x0F,
		data1:  byte(value) & 0x7F,
		data2:  byte(value>>7) & 0x7F,
	}
}

// Status returns the raw status byte.
func (m ShortMessage) Status() byte { return m.status }

// Data1 returns the first data byte.
func (m ShortMessage) Data1() byte { return m.data1 }

// Data2 returns the second data byte.
func (m ShortMessage) Data2() byte { return m.data2 }

// Kind classifies the message. Total: malformed input yields KindInvalid.
func (m ShortMessage) Kind() MessageKind {
	if m.status < 0x80 {
		return KindInvalid
	}
	if m.status >= 0xF0 {
		return KindSystem
	}
	if m.data1 > 0x7F || m.data2 > 0x7F {
		return KindInvalid
	}
	switch m.status & 0xF0 {
	case 0x80:
		return KindNoteOff
	case 0x90:
		return KindNoteOn
	case 0xA0:
		return KindPolyAftertouch
	case 0xB0:
		return KindControlChange
	case 0xC0:
		return KindProgramChange
	case 0xD0:
		return KindChannelAftertouch
	case 0xE0:
		return KindPitchBend
	default:
		return KindInvalid
	}
}

// IsWellFormed reports whether the message is a valid channel or system
// short message.
func (m ShortMessage) IsWellFormed() bool {
	return m.Kind() != KindInvalid
}

// Channel returns the channel nibble for channel messages. For system
// messages the result is meaningless; callers check Kind first.
func (m ShortMessage) Channel() byte {
	return m.status & 0x0F
}

// ControlValue extracts the normalized control value in [0, 1] carried by
// this message, along with whether the message carries one at all.
//
// Note-on velocity 0 is reported as 0 (the conventional note-off meaning),
// pitch bend uses the full 14-bit range, program change reports the program
// number normalized.
func (m ShortMessage) ControlValue() (float64, bool) {
	switch m.Kind() {
	case KindNoteOn, KindPolyAftertouch, KindControlChange:
		return float64(m.data2) / 127, true
	case KindNoteOff:
		return 0, true
	case KindChannelAftertouch, KindProgramChange:
		return float64(m.data1) / 127, true
	case KindPitchBend:
		v := uint16(m.data1) | uint16(m.data2)<<7
		return float64(v) / 16383, true
	default:
		return 0, false
	}
}

// KeyNumber returns the note/controller number for message kinds that have
// one (note on/off, poly aftertouch, control change, program change).
func (m ShortMessage) KeyNumber() (byte, bool) {
	switch m.Kind() {
	case KindNoteOff, KindNoteOn, KindPolyAftertouch, KindControlChange, KindProgramChange:
		return m.data1, true
	default:
		return 0, false
	}
}
