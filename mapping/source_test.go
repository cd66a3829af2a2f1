package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/midi"
)

func ccSource(channel, number int16) Source {
	return Source{Kind: SourceMidi, MessageKind: midi.KindControlChange, Channel: channel, Number: number}
}

func noteSource(channel, number int16) Source {
	return Source{Kind: SourceMidi, MessageKind: midi.KindNoteOn, Channel: channel, Number: number}
}

func TestSource_MatchesMidi(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		msg     midi.ShortMessage
		value   float64
		matches bool
	}{
		{"exact cc match", ccSource(0, 7), midi.ControlChange(0, 7, 127), 1, true},
		{"cc wrong controller", ccSource(0, 7), midi.ControlChange(0, 8, 127), 0, false},
		{"cc wrong channel", ccSource(0, 7), midi.ControlChange(1, 7, 127), 0, false},
		{"cc any channel", ccSource(AnyChannel, 7), midi.ControlChange(9, 7, 64), 64.0 / 127, true},
		{"cc any number", ccSource(2, AnyNumber), midi.ControlChange(2, 99, 0), 0, true},
		{"note on", noteSource(0, 60), midi.NoteOn(0, 60, 100), 100.0 / 127, true},
		{"note off releases note source", noteSource(0, 60), midi.NoteOff(0, 60), 0, true},
		{"note on velocity zero is release", noteSource(0, 60), midi.NoteOn(0, 60, 0), 0, true},
		{"note source ignores cc", noteSource(0, 60), midi.ControlChange(0, 60, 100), 0, false},
		{"pitch bend source", Source{Kind: SourceMidi, MessageKind: midi.KindPitchBend, Channel: 0, Number: AnyNumber}, midi.PitchBend(0, 16383), 1, true},
		{"program change pinned", Source{Kind: SourceMidi, MessageKind: midi.KindProgramChange, Channel: 0, Number: 5}, midi.NewShortMessage(0xC0, 5, 0), 5.0 / 127, true},
		{"program change wildcard", Source{Kind: SourceMidi, MessageKind: midi.KindProgramChange, Channel: 0, Number: AnyNumber}, midi.NewShortMessage(0xC0, 42, 0), 42.0 / 127, true},
		{"program change wrong program", Source{Kind: SourceMidi, MessageKind: midi.KindProgramChange, Channel: 0, Number: 5}, midi.NewShortMessage(0xC0, 6, 0), 0, false},
		{"system message never matches", ccSource(AnyChannel, AnyNumber), midi.NewShortMessage(midi.StatusTimingClock, 0, 0), 0, false},
		{"malformed message never matches", ccSource(AnyChannel, AnyNumber), midi.ShortMessage{}, 0, false},
		{"virtual source never matches midi", Source{Kind: SourceVirtual, Element: "fader1"}, midi.ControlChange(0, 7, 1), 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			value, matches := test.source.MatchesMidi(test.msg)
			assert.Equal(t, test.matches, matches)
			if test.matches {
				assert.InDelta(t, test.value, value, 1e-9)
			}
		})
	}
}

func TestSource_MatchesVirtual(t *testing.T) {
	s := Source{Kind: SourceVirtual, Element: "fader1"}
	assert.True(t, s.MatchesVirtual("fader1"))
	assert.False(t, s.MatchesVirtual("fader2"))
	assert.False(t, ccSource(0, 7).MatchesVirtual("fader1"))
}

func TestSource_RenderFeedback(t *testing.T) {
	msg, ok := ccSource(3, 16).RenderFeedback(0.5)
	require.True(t, ok)
	assert.Equal(t, midi.KindControlChange, msg.Kind())
	assert.Equal(t, byte(3), msg.Channel())
	assert.Equal(t, byte(16), msg.Data1())
	assert.Equal(t, byte(64), msg.Data2())

	msg, ok = noteSource(0, 60).RenderFeedback(1)
	require.True(t, ok)
	assert.Equal(t, midi.KindNoteOn, msg.Kind())
	assert.Equal(t, byte(127), msg.Data2())

	msg, ok = noteSource(0, 60).RenderFeedback(0)
	require.True(t, ok)
	assert.Equal(t, midi.KindNoteOff, msg.Kind(), "zero feedback on a note source is a note-off")

	// Out-of-range values are clamped, not rejected.
	msg, ok = ccSource(0, 7).RenderFeedback(2.5)
	require.True(t, ok)
	assert.Equal(t, byte(127), msg.Data2())

	_, ok = ccSource(AnyChannel, 7).RenderFeedback(0.5)
	assert.False(t, ok, "wildcard channel cannot render feedback")

	_, ok = ccSource(0, AnyNumber).RenderFeedback(0.5)
	assert.False(t, ok, "wildcard number cannot render feedback")

	_, ok = (Source{Kind: SourceVirtual, Element: "x"}).RenderFeedback(0.5)
	assert.False(t, ok)
}

func TestCaptureFromMidi(t *testing.T) {
	s, ok := CaptureFromMidi(midi.ControlChange(4, 21, 90))
	require.True(t, ok)
	assert.Equal(t, ccSource(4, 21), s)

	s, ok = CaptureFromMidi(midi.NoteOff(1, 36))
	require.True(t, ok)
	assert.Equal(t, midi.KindNoteOn, s.MessageKind, "note-off learns a note-on source")
	assert.Equal(t, int16(36), s.Number)

	_, ok = CaptureFromMidi(midi.NewShortMessage(midi.StatusTimingClock, 0, 0))
	assert.False(t, ok, "system messages cannot be learned")

	_, ok = CaptureFromMidi(midi.ShortMessage{})
	assert.False(t, ok)
}

func TestSource_Validate(t *testing.T) {
	assert.NoError(t, ccSource(0, 7).Validate())
	assert.NoError(t, ccSource(AnyChannel, AnyNumber).Validate())
	assert.NoError(t, (Source{Kind: SourceVirtual, Element: "fader1"}).Validate())

	err := ccSource(16, 7).Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.Error(t, ccSource(0, 128).Validate())
	assert.Error(t, (Source{Kind: SourceVirtual}).Validate())
	assert.Error(t, (Source{Kind: SourceMidi, MessageKind: midi.KindSystem}).Validate())
}
