package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteMode_Transform(t *testing.T) {
	tests := []struct {
		name    string
		mode    AbsoluteMode
		raw     float64
		value   float64
		applied bool
	}{
		{"identity", *NewAbsoluteMode(), 0.5, 0.5, true},
		{"identity max", *NewAbsoluteMode(), 1, 1, true},
		{"reverse", AbsoluteMode{SourceInterval: FullInterval(), TargetInterval: FullInterval(), Reverse: true}, 0.25, 0.75, true},
		{
			"source window",
			AbsoluteMode{SourceInterval: Interval{Min: 0.5, Max: 1}, TargetInterval: FullInterval()},
			0.75, 0.5, true,
		},
		{
			"below source window clamps",
			AbsoluteMode{SourceInterval: Interval{Min: 0.5, Max: 1}, TargetInterval: FullInterval()},
			0.1, 0, true,
		},
		{
			"target window",
			AbsoluteMode{SourceInterval: FullInterval(), TargetInterval: Interval{Min: 0.2, Max: 0.4}},
			0.5, 0.3, true,
		},
		{"degenerate source interval", AbsoluteMode{SourceInterval: Interval{Min: 0.5, Max: 0.5}, TargetInterval: FullInterval()}, 0.5, 0, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			value, applied := test.mode.Transform(test.raw, TargetCharacteristics{})
			require.Equal(t, test.applied, applied)
			if applied {
				assert.InDelta(t, test.value, value, 1e-9)
			}
		})
	}
}

func TestAbsoluteMode_FeedbackRoundTrip(t *testing.T) {
	mode := AbsoluteMode{
		SourceInterval: Interval{Min: 0.1, Max: 0.9},
		TargetInterval: Interval{Min: 0.25, Max: 0.75},
		Reverse:        true,
	}
	for _, raw := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		value, applied := mode.Transform(raw, TargetCharacteristics{})
		require.True(t, applied)
		assert.InDelta(t, raw, mode.FeedbackValue(value), 1e-9, "raw %v", raw)
	}
}

func TestRelativeMode_Transform(t *testing.T) {
	mode := RelativeMode{StepSize: 0.1, TargetInterval: FullInterval()}

	value, applied := mode.Transform(1, TargetCharacteristics{CurrentValue: 0.5})
	require.True(t, applied)
	assert.InDelta(t, 0.6, value, 1e-9)

	value, applied = mode.Transform(0, TargetCharacteristics{CurrentValue: 0.5})
	require.True(t, applied)
	assert.InDelta(t, 0.4, value, 1e-9)

	_, applied = mode.Transform(0.5, TargetCharacteristics{CurrentValue: 0.5})
	assert.False(t, applied, "encoder rest position is absorbed")

	// Clamping at the bounds.
	value, _ = mode.Transform(1, TargetCharacteristics{CurrentValue: 0.95})
	assert.InDelta(t, 1, value, 1e-9)
	value, _ = mode.Transform(0, TargetCharacteristics{CurrentValue: 0.05})
	assert.InDelta(t, 0, value, 1e-9)

	reversed := RelativeMode{StepSize: 0.1, TargetInterval: FullInterval(), Reverse: true}
	value, _ = reversed.Transform(1, TargetCharacteristics{CurrentValue: 0.5})
	assert.InDelta(t, 0.4, value, 1e-9)
}

func TestToggleMode_Transform(t *testing.T) {
	mode := NewToggleMode()

	value, applied := mode.Transform(1, TargetCharacteristics{CurrentValue: 0})
	require.True(t, applied)
	assert.InDelta(t, 1, value, 1e-9)

	value, applied = mode.Transform(1, TargetCharacteristics{CurrentValue: 1})
	require.True(t, applied)
	assert.InDelta(t, 0, value, 1e-9)

	_, applied = mode.Transform(0, TargetCharacteristics{CurrentValue: 1})
	assert.False(t, applied, "button release is absorbed")

	assert.InDelta(t, 1, mode.FeedbackValue(0.9), 1e-9)
	assert.InDelta(t, 0, mode.FeedbackValue(0.1), 1e-9)
}
