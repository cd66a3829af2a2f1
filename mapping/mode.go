package mapping

import "math"

// TargetCharacteristics carries everything a mode needs to know about a
// resolved target in order to transform a control value: the target's
// current value and whether it is discrete.
type TargetCharacteristics struct {
	CurrentValue float64
	Discrete     bool
	StepCount    int
}

// Mode is the pure transformation between a matched raw control value in
// [0, 1] and a target-appropriate value. The dispatcher invokes modes but
// never interprets them; the concrete scaling and timing algorithms are
// interchangeable behind this interface.
//
// Transform returns the value to apply and whether to apply it at all
// (a mode may absorb an event, e.g. a button release on a trigger mode).
type Mode interface {
	Transform(raw float64, target TargetCharacteristics) (float64, bool)
	// FeedbackValue maps a current target value back into source value
	// space for feedback rendering.
	FeedbackValue(targetValue float64) float64
}

// Interval is a closed sub-interval of [0, 1].
type Interval struct {
	Min float64
	Max float64
}

// FullInterval covers the whole unit range.
func FullInterval() Interval { return Interval{Min: 0, Max: 1} }

func (iv Interval) span() float64 {
	return iv.Max - iv.Min
}

func (iv Interval) clamp(v float64) float64 {
	return math.Min(iv.Max, math.Max(iv.Min, v))
}

// AbsoluteMode scales an absolute source value through a source interval
// into a target interval, optionally reversed.
type AbsoluteMode struct {
	SourceInterval Interval
	TargetInterval Interval
	Reverse        bool
}

// NewAbsoluteMode returns an absolute mode covering the full unit interval
// on both sides.
func NewAbsoluteMode() *AbsoluteMode {
	return &AbsoluteMode{SourceInterval: FullInterval(), TargetInterval: FullInterval()}
}

// Transform implements Mode.
func (m *AbsoluteMode) Transform(raw float64, _ TargetCharacteristics) (float64, bool) {
	src := m.SourceInterval
	if src.span() <= 0 {
		return 0, false
	}
	unit := (src.clamp(raw) - src.Min) / src.span()
	if m.Reverse {
		unit = 1 - unit
	}
	return m.TargetInterval.Min + unit*m.TargetInterval.span(), true
}

// FeedbackValue implements Mode.
func (m *AbsoluteMode) FeedbackValue(targetValue float64) float64 {
	tgt := m.TargetInterval
	if tgt.span() <= 0 {
		return 0
	}
	unit := (tgt.clamp(targetValue) - tgt.Min) / tgt.span()
	if m.Reverse {
		unit = 1 - unit
	}
	return m.SourceInterval.Min + unit*m.SourceInterval.span()
}

// RelativeMode interprets encoder-style values: raw values above center move
// the target up by StepSize, values below move it down. The result is
// clamped to the target interval.
type RelativeMode struct {
	StepSize       float64
	TargetInterval Interval
	Reverse        bool
}

// NewRelativeMode returns a relative mode with a 1% step over the full
// target range.
func NewRelativeMode() *RelativeMode {
	return &RelativeMode{StepSize: 0.01, TargetInterval: FullInterval()}
}

// Transform implements Mode. Raw value 0.5 is the encoder rest position and
// is absorbed.
func (m *RelativeMode) Transform(raw float64, target TargetCharacteristics) (float64, bool) {
	var direction float64
	switch {
	case raw > 0.5:
		direction = 1
	case raw < 0.5:
		direction = -1
	default:
		return 0, false
	}
	if m.Reverse {
		direction = -direction
	}
	return m.TargetInterval.clamp(target.CurrentValue + direction*m.StepSize), true
}

// FeedbackValue implements Mode.
func (m *RelativeMode) FeedbackValue(targetValue float64) float64 {
	return m.TargetInterval.clamp(targetValue)
}

// ToggleMode flips the target between the interval bounds on every button
// press; releases (raw value 0) are absorbed.
type ToggleMode struct {
	TargetInterval Interval
}

// NewToggleMode returns a toggle mode over the full target range.
func NewToggleMode() *ToggleMode {
	return &ToggleMode{TargetInterval: FullInterval()}
}

// Transform implements Mode.
func (m *ToggleMode) Transform(raw float64, target TargetCharacteristics) (float64, bool) {
	if raw == 0 {
		return 0, false
	}
	center := m.TargetInterval.Min + m.TargetInterval.span()/2
	if target.CurrentValue > center {
		return m.TargetInterval.Min, true
	}
	return m.TargetInterval.Max, true
}

// FeedbackValue implements Mode.
func (m *ToggleMode) FeedbackValue(targetValue float64) float64 {
	center := m.TargetInterval.Min + m.TargetInterval.span()/2
	if targetValue > center {
		return 1
	}
	return 0
}
