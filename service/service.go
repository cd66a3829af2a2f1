package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/session"
)

// Conn is the slice of the NATS connection the service needs. *nats.Conn
// satisfies it; tests substitute a fake.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler nats.MsgHandler) (*nats.Subscription, error)
}

// Command names accepted on "<prefix>.cmd.<name>".
const (
	CmdAddMapping    = "add_mapping"
	CmdRemoveMapping = "remove_mapping"
	CmdChangeMapping = "change_mapping"
	CmdStartLearning = "start_learning"
	CmdStopLearning  = "stop_learning"
	CmdFeedbackAll   = "feedback_all"
	CmdListMappings  = "list_mappings"
)

// AddMappingCmd adds a mapping to a compartment.
type AddMappingCmd struct {
	Compartment string      `json:"compartment"`
	Mapping     MappingWire `json:"mapping"`
}

// RemoveMappingCmd removes a mapping by qualified id ("compartment/uuid").
type RemoveMappingCmd struct {
	ID string `json:"id"`
}

// ChangeMappingCmd applies single-property changes to one mapping. Only the
// non-nil fields are applied; Initiator is echoed in the resulting change
// notifications so the originating control can skip its own re-render.
type ChangeMappingCmd struct {
	ID        string `json:"id"`
	Initiator string `json:"initiator,omitempty"`

	Name            *string     `json:"name,omitempty"`
	Source          *SourceWire `json:"source,omitempty"`
	Mode            *ModeWire   `json:"mode,omitempty"`
	Target          *TargetWire `json:"target,omitempty"`
	ControlEnabled  *bool       `json:"control_enabled,omitempty"`
	FeedbackEnabled *bool       `json:"feedback_enabled,omitempty"`
	Tags            *[]string   `json:"tags,omitempty"`
}

// StartLearningCmd arms learning for one mapping.
type StartLearningCmd struct {
	ID string `json:"id"`
}

// ResultEvent acknowledges a command on "<prefix>.event.result".
type ResultEvent struct {
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	ID      string `json:"id,omitempty"`
}

// MappingEvent reports a mapping mutation on "<prefix>.event.mapping".
type MappingEvent struct {
	ID        string   `json:"id"`
	Removed   bool     `json:"removed,omitempty"`
	Props     []string `json:"props,omitempty"` // empty means all
	Initiator string   `json:"initiator,omitempty"`
}

// FeedbackEvent reports one computed feedback value on
// "<prefix>.event.feedback".
type FeedbackEvent struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// DiagnosticEvent forwards an audio-thread diagnostic on
// "<prefix>.event.diagnostic".
type DiagnosticEvent struct {
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// SnapshotEvent answers list_mappings on "<prefix>.event.snapshot".
type SnapshotEvent struct {
	Compartments map[string][]MappingWire `json:"compartments"`
}

// Service bridges a session and a NATS connection. All session access goes
// through posted run tasks, so command handling is safe regardless of which
// goroutine NATS delivers messages on.
type Service struct {
	conn    Conn
	session *session.Session
	prefix  string
	logger  *slog.Logger

	sub *nats.Subscription

	published atomic.Uint64
	rejected  atomic.Uint64
}

// New builds a service for the given session. Call Start to subscribe.
func New(conn Conn, sess *session.Session, prefix string, logger *slog.Logger) *Service {
	return &Service{
		conn:    conn,
		session: sess,
		prefix:  prefix,
		logger:  logger.With("component", "service"),
	}
}

// Start subscribes to the command subject and hooks the session's listeners.
func (s *Service) Start() error {
	sub, err := s.conn.Subscribe(s.prefix+".cmd.>", s.handleCommand)
	if err != nil {
		return errors.WrapTransient(err, "Service", "Start", "subscribe commands")
	}
	s.sub = sub

	s.session.AddChangeListener(mapping.ChangeListenerFunc(s.onMappingChanged))
	s.session.AddFeedbackListener(s.onFeedback)
	s.session.AddDiagnosticListener(s.onDiagnostic)

	s.logger.Info("service started", "subject", s.prefix+".cmd.>")
	return nil
}

// Stop unsubscribes from the command subject. Listener registrations stay;
// publishing to a closed connection is a counted no-op.
func (s *Service) Stop() {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			s.logger.Warn("unsubscribe failed", "error", err)
		}
		s.sub = nil
	}
}

// Published returns the number of events published so far.
func (s *Service) Published() uint64 { return s.published.Load() }

// Rejected returns the number of commands rejected before reaching the
// session.
func (s *Service) Rejected() uint64 { return s.rejected.Load() }

func (s *Service) handleCommand(msg *nats.Msg) {
	name := msg.Subject[strings.LastIndexByte(msg.Subject, '.')+1:]
	if err := s.dispatchCommand(name, msg.Data); err != nil {
		s.rejected.Add(1)
		s.logger.Warn("command rejected",
			"command", name,
			"class", errors.Classify(err).String(),
			"error", err)
		s.publishResult(ResultEvent{Command: name, OK: false, Error: err.Error()})
	}
}

// dispatchCommand decodes on the delivery goroutine and hands a closure to
// the main thread. Decode errors are reported synchronously; execution
// results are published from the run task.
func (s *Service) dispatchCommand(name string, data []byte) error {
	switch name {
	case CmdAddMapping:
		var cmd AddMappingCmd
		if err := json.Unmarshal(data, &cmd); err != nil {
			return errors.WrapInvalid(err, "Service", "dispatchCommand", "decode add_mapping")
		}
		kind, err := compartmentFromWire(cmd.Compartment)
		if err != nil {
			return err
		}
		m, err := mappingFromWire(cmd.Mapping)
		if err != nil {
			return err
		}
		s.post(name, func() error {
			if err := s.session.AddMapping(kind, m); err != nil {
				return err
			}
			s.publishResult(ResultEvent{
				Command: name, OK: true,
				ID: mapping.Qualified(kind, m.ID).String(),
			})
			return nil
		})
		return nil

	case CmdRemoveMapping:
		var cmd RemoveMappingCmd
		if err := json.Unmarshal(data, &cmd); err != nil {
			return errors.WrapInvalid(err, "Service", "dispatchCommand", "decode remove_mapping")
		}
		id, err := qualifiedIDFromWire(cmd.ID)
		if err != nil {
			return err
		}
		s.post(name, func() error {
			if !s.session.RemoveMapping(id) {
				return errors.WrapInvalid(errors.ErrMappingNotFound, "Service", "remove", cmd.ID)
			}
			s.publishResult(ResultEvent{Command: name, OK: true, ID: cmd.ID})
			return nil
		})
		return nil

	case CmdChangeMapping:
		var cmd ChangeMappingCmd
		if err := json.Unmarshal(data, &cmd); err != nil {
			return errors.WrapInvalid(err, "Service", "dispatchCommand", "decode change_mapping")
		}
		id, err := qualifiedIDFromWire(cmd.ID)
		if err != nil {
			return err
		}
		changes, err := decodeChanges(cmd)
		if err != nil {
			return err
		}
		s.post(name, func() error {
			for _, ch := range changes {
				if err := s.session.ChangeMapping(id, ch, cmd.Initiator); err != nil {
					return err
				}
			}
			s.publishResult(ResultEvent{Command: name, OK: true, ID: cmd.ID})
			return nil
		})
		return nil

	case CmdStartLearning:
		var cmd StartLearningCmd
		if err := json.Unmarshal(data, &cmd); err != nil {
			return errors.WrapInvalid(err, "Service", "dispatchCommand", "decode start_learning")
		}
		id, err := qualifiedIDFromWire(cmd.ID)
		if err != nil {
			return err
		}
		s.post(name, func() error {
			if err := s.session.StartLearning(id); err != nil {
				return err
			}
			s.publishResult(ResultEvent{Command: name, OK: true, ID: cmd.ID})
			return nil
		})
		return nil

	case CmdStopLearning:
		s.post(name, func() error {
			s.session.StopLearning()
			s.publishResult(ResultEvent{Command: name, OK: true})
			return nil
		})
		return nil

	case CmdFeedbackAll:
		s.post(name, func() error {
			s.session.HandleFeedbackAll()
			s.publishResult(ResultEvent{Command: name, OK: true})
			return nil
		})
		return nil

	case CmdListMappings:
		s.post(name, func() error {
			snap := SnapshotEvent{Compartments: make(map[string][]MappingWire, 2)}
			for _, kind := range mapping.Kinds() {
				var out []MappingWire
				s.session.Compartment(kind).Each(func(m *mapping.Mapping) {
					out = append(out, mappingToWire(m))
				})
				snap.Compartments[kind.String()] = out
			}
			s.publish("snapshot", snap)
			s.publishResult(ResultEvent{Command: name, OK: true})
			return nil
		})
		return nil

	default:
		return errors.WrapInvalid(errors.New("unknown command"), "Service", "dispatchCommand", name)
	}
}

// post schedules fn on the main thread; a failure inside fn becomes a
// negative result event.
func (s *Service) post(name string, fn func() error) {
	ok := s.session.Post(event.RunTask(func() {
		if err := fn(); err != nil {
			s.logger.Warn("command failed",
				"command", name,
				"class", errors.Classify(err).String(),
				"error", err)
			s.publishResult(ResultEvent{Command: name, OK: false, Error: err.Error()})
		}
	}))
	if !ok {
		s.rejected.Add(1)
		s.publishResult(ResultEvent{Command: name, OK: false, Error: errors.ErrChannelFull.Error()})
	}
}

func decodeChanges(cmd ChangeMappingCmd) ([]session.MappingChange, error) {
	var changes []session.MappingChange
	if cmd.Name != nil {
		changes = append(changes, session.SetName{Name: *cmd.Name})
	}
	if cmd.Source != nil {
		src, err := sourceFromWire(*cmd.Source)
		if err != nil {
			return nil, err
		}
		changes = append(changes, session.SetSource{Source: src})
	}
	if cmd.Mode != nil {
		mode, err := modeFromWire(*cmd.Mode)
		if err != nil {
			return nil, err
		}
		changes = append(changes, session.SetMode{Mode: mode})
	}
	if cmd.Target != nil {
		tgt, err := targetFromWire(*cmd.Target)
		if err != nil {
			return nil, err
		}
		changes = append(changes, session.SetTarget{Target: tgt})
	}
	if cmd.ControlEnabled != nil {
		changes = append(changes, session.SetControlEnabled{Enabled: *cmd.ControlEnabled})
	}
	if cmd.FeedbackEnabled != nil {
		changes = append(changes, session.SetFeedbackEnabled{Enabled: *cmd.FeedbackEnabled})
	}
	if cmd.Tags != nil {
		changes = append(changes, session.SetTags{Tags: *cmd.Tags})
	}
	if len(changes) == 0 {
		return nil, errors.WrapInvalid(errors.New("empty change set"), "Service", "decodeChanges", cmd.ID)
	}
	return changes, nil
}

func (s *Service) onMappingChanged(c mapping.Change) {
	ev := MappingEvent{ID: c.Mapping.String(), Initiator: c.Initiator}
	if prop, one := c.Affected.One(); one {
		ev.Props = []string{prop.String()}
	}
	s.publish("mapping", ev)
}

func (s *Service) onFeedback(id mapping.QualifiedMappingID, value float64) {
	s.publish("feedback", FeedbackEvent{ID: id.String(), Value: value})
}

func (s *Service) onDiagnostic(d event.Diagnostic) {
	s.publish("diagnostic", DiagnosticEvent{
		Level:     d.Level.String(),
		Component: d.Component,
		Message:   d.Message,
	})
}

func (s *Service) publishResult(ev ResultEvent) {
	s.publish("result", ev)
}

func (s *Service) publish(kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal event failed", "kind", kind, "error", err)
		return
	}
	subject := fmt.Sprintf("%s.event.%s", s.prefix, kind)
	if err := s.conn.Publish(subject, data); err != nil {
		// Continuous events tolerate loss; just count and log at debug.
		s.logger.Debug("publish failed", "subject", subject, "error", err)
		return
	}
	s.published.Add(1)
}
