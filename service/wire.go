package service

import (
	"fmt"
	"strings"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/midi"
)

// SourceWire is the JSON form of a source pattern. Channel and Number use -1
// as the wildcard, matching the in-memory representation.
type SourceWire struct {
	Kind        string `json:"kind"` // "midi" or "virtual"
	MessageKind string `json:"message_kind,omitempty"`
	Channel     int16  `json:"channel,omitempty"`
	Number      int16  `json:"number,omitempty"`
	Element     string `json:"element,omitempty"`
}

// ModeWire is the JSON form of a mode.
type ModeWire struct {
	Type           string  `json:"type"` // "absolute", "relative", "toggle"
	SourceMin      float64 `json:"source_min"`
	SourceMax      float64 `json:"source_max"`
	TargetMin      float64 `json:"target_min"`
	TargetMax      float64 `json:"target_max"`
	StepSize       float64 `json:"step_size,omitempty"`
	Reverse        bool    `json:"reverse,omitempty"`
}

// TargetWire is the JSON form of a target descriptor.
type TargetWire struct {
	Type       string `json:"type"`
	TrackGUID  string `json:"track_guid,omitempty"`
	FxIndex    int    `json:"fx_index,omitempty"`
	ParamIndex int    `json:"param_index,omitempty"`
	Action     string `json:"action,omitempty"`
	Row        int    `json:"row,omitempty"`
	Column     int    `json:"column,omitempty"`
	Element    string `json:"element,omitempty"`
}

// MappingWire is the JSON form of a full mapping.
type MappingWire struct {
	ID              string     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Group           string     `json:"group,omitempty"`
	Source          SourceWire `json:"source"`
	Mode            ModeWire   `json:"mode"`
	Target          TargetWire `json:"target"`
	ControlEnabled  bool       `json:"control_enabled"`
	FeedbackEnabled bool       `json:"feedback_enabled"`
	Tags            []string   `json:"tags,omitempty"`
}

func messageKindFromWire(s string) (midi.MessageKind, error) {
	for k := midi.KindNoteOff; k <= midi.KindPitchBend; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return midi.KindInvalid, errors.WrapInvalid(errors.ErrInvalidSource, "service", "decode",
		fmt.Sprintf("unknown message kind %q", s))
}

func sourceFromWire(w SourceWire) (mapping.Source, error) {
	switch w.Kind {
	case "midi":
		mk, err := messageKindFromWire(w.MessageKind)
		if err != nil {
			return mapping.Source{}, err
		}
		s := mapping.Source{
			Kind:        mapping.SourceMidi,
			MessageKind: mk,
			Channel:     w.Channel,
			Number:      w.Number,
		}
		return s, s.Validate()
	case "virtual":
		s := mapping.Source{Kind: mapping.SourceVirtual, Element: w.Element}
		return s, s.Validate()
	default:
		return mapping.Source{}, errors.WrapInvalid(errors.ErrInvalidSource, "service", "decode",
			fmt.Sprintf("unknown source kind %q", w.Kind))
	}
}

func sourceToWire(s mapping.Source) SourceWire {
	if s.Kind == mapping.SourceVirtual {
		return SourceWire{Kind: "virtual", Element: s.Element}
	}
	return SourceWire{
		Kind:        "midi",
		MessageKind: s.MessageKind.String(),
		Channel:     s.Channel,
		Number:      s.Number,
	}
}

func modeFromWire(w ModeWire) (mapping.Mode, error) {
	switch w.Type {
	case "absolute":
		return &mapping.AbsoluteMode{
			SourceInterval: mapping.Interval{Min: w.SourceMin, Max: w.SourceMax},
			TargetInterval: mapping.Interval{Min: w.TargetMin, Max: w.TargetMax},
			Reverse:        w.Reverse,
		}, nil
	case "relative":
		return &mapping.RelativeMode{
			StepSize:       w.StepSize,
			TargetInterval: mapping.Interval{Min: w.TargetMin, Max: w.TargetMax},
			Reverse:        w.Reverse,
		}, nil
	case "toggle":
		return &mapping.ToggleMode{
			TargetInterval: mapping.Interval{Min: w.TargetMin, Max: w.TargetMax},
		}, nil
	default:
		return nil, errors.WrapInvalid(errors.ErrInvalidMode, "service", "decode",
			fmt.Sprintf("unknown mode type %q", w.Type))
	}
}

func modeToWire(m mapping.Mode) ModeWire {
	switch mode := m.(type) {
	case *mapping.AbsoluteMode:
		return ModeWire{
			Type:      "absolute",
			SourceMin: mode.SourceInterval.Min, SourceMax: mode.SourceInterval.Max,
			TargetMin: mode.TargetInterval.Min, TargetMax: mode.TargetInterval.Max,
			Reverse: mode.Reverse,
		}
	case *mapping.RelativeMode:
		return ModeWire{
			Type:      "relative",
			StepSize:  mode.StepSize,
			TargetMin: mode.TargetInterval.Min, TargetMax: mode.TargetInterval.Max,
			Reverse: mode.Reverse,
		}
	case *mapping.ToggleMode:
		return ModeWire{
			Type:      "toggle",
			TargetMin: mode.TargetInterval.Min, TargetMax: mode.TargetInterval.Max,
		}
	default:
		return ModeWire{Type: "absolute", SourceMax: 1, TargetMax: 1}
	}
}

func targetFromWire(w TargetWire) (mapping.Target, error) {
	var tt mapping.TargetType
	found := false
	for t := mapping.TargetTrackVolume; t <= mapping.TargetVirtual; t++ {
		if t.String() == w.Type {
			tt = t
			found = true
			break
		}
	}
	if !found {
		return mapping.Target{}, errors.WrapInvalid(errors.ErrInvalidTarget, "service", "decode",
			fmt.Sprintf("unknown target type %q", w.Type))
	}
	return mapping.Target{
		Type:       tt,
		TrackGUID:  w.TrackGUID,
		FxIndex:    w.FxIndex,
		ParamIndex: w.ParamIndex,
		Action:     w.Action,
		Row:        w.Row,
		Column:     w.Column,
		Element:    w.Element,
	}, nil
}

func targetToWire(t mapping.Target) TargetWire {
	return TargetWire{
		Type:       t.Type.String(),
		TrackGUID:  t.TrackGUID,
		FxIndex:    t.FxIndex,
		ParamIndex: t.ParamIndex,
		Action:     t.Action,
		Row:        t.Row,
		Column:     t.Column,
		Element:    t.Element,
	}
}

func mappingFromWire(w MappingWire) (*mapping.Mapping, error) {
	src, err := sourceFromWire(w.Source)
	if err != nil {
		return nil, err
	}
	mode, err := modeFromWire(w.Mode)
	if err != nil {
		return nil, err
	}
	tgt, err := targetFromWire(w.Target)
	if err != nil {
		return nil, err
	}
	m := mapping.New(w.Name)
	if w.ID != "" {
		id, err := mapping.ParseMappingID(w.ID)
		if err != nil {
			return nil, errors.WrapInvalid(err, "service", "decode", "parse mapping id")
		}
		m.ID = id
	}
	m.Group = mapping.GroupID(w.Group)
	m.Source = src
	m.Mode = mode
	m.Target = tgt
	m.ControlEnabled = w.ControlEnabled
	m.FeedbackEnabled = w.FeedbackEnabled
	m.Tags = w.Tags
	return m, nil
}

func mappingToWire(m *mapping.Mapping) MappingWire {
	return MappingWire{
		ID:              m.ID.String(),
		Name:            m.Name,
		Group:           string(m.Group),
		Source:          sourceToWire(m.Source),
		Mode:            modeToWire(m.Mode),
		Target:          targetToWire(m.Target),
		ControlEnabled:  m.ControlEnabled,
		FeedbackEnabled: m.FeedbackEnabled,
		Tags:            m.Tags,
	}
}

func compartmentFromWire(s string) (mapping.CompartmentKind, error) {
	for _, k := range mapping.Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, errors.WrapInvalid(errors.ErrInvalidCompartment, "service", "decode",
		fmt.Sprintf("unknown compartment %q", s))
}

func qualifiedIDFromWire(s string) (mapping.QualifiedMappingID, error) {
	comp, raw, ok := strings.Cut(s, "/")
	if !ok {
		return mapping.QualifiedMappingID{}, errors.WrapInvalid(errors.ErrMappingNotFound,
			"service", "decode", fmt.Sprintf("malformed qualified id %q", s))
	}
	kind, err := compartmentFromWire(comp)
	if err != nil {
		return mapping.QualifiedMappingID{}, err
	}
	id, err := mapping.ParseMappingID(raw)
	if err != nil {
		return mapping.QualifiedMappingID{}, errors.WrapInvalid(err, "service", "decode", "parse mapping id")
	}
	return mapping.Qualified(kind, id), nil
}
