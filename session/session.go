package session

import (
	"context"
	"log/slog"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/host"
	"github.com/sonicbind/surfacemap/mapping"
	"github.com/sonicbind/surfacemap/realtime"
)

// maxMainTasksPerIdle caps the drain per idle tick so a burst of control
// input cannot starve host UI responsiveness.
const maxMainTasksPerIdle = 64

// FeedbackListener receives every computed feedback value; the service uses
// it to publish continuous updates to remote UIs.
type FeedbackListener func(id mapping.QualifiedMappingID, value float64)

// DiagnosticListener receives diagnostics forwarded from the audio thread.
type DiagnosticListener func(d event.Diagnostic)

type learnState struct {
	id mapping.QualifiedMappingID
}

// Session owns the two compartments and everything host-facing on the main
// thread. Created once per plugin instance via the bootstrap coordinator
// and alive for the instance's lifetime.
type Session struct {
	logger    *slog.Logger
	api       host.API
	rtTasks   *realtime.Channel
	mainTasks *event.MainChannel

	compartments [2]*mapping.Compartment

	changeListeners   []mapping.ChangeListener
	feedbackListeners []FeedbackListener
	diagListeners     []DiagnosticListener

	learning *learnState
	stats    Stats
}

// New creates a session bound to the host API and the two task channels the
// plugin shim owns. The caller activates it afterwards.
func New(api host.API, rtTasks *realtime.Channel, mainTasks *event.MainChannel, logger *slog.Logger) *Session {
	s := &Session{
		logger:    logger,
		api:       api,
		rtTasks:   rtTasks,
		mainTasks: mainTasks,
	}
	for _, kind := range mapping.Kinds() {
		s.compartments[kind] = mapping.NewCompartment(kind)
	}
	return s
}

// Compartment returns the compartment of the given kind.
func (s *Session) Compartment(kind mapping.CompartmentKind) *mapping.Compartment {
	return s.compartments[kind]
}

// Stats returns the dispatch counters.
func (s *Session) Stats() *Stats {
	return &s.stats
}

// Post enqueues a task for the next idle tick. Used by the service to
// marshal decoded commands into the session's thread; safe from any thread.
func (s *Session) Post(task event.MainTask) bool {
	return s.mainTasks.TrySend(task)
}

// AddChangeListener registers a change-notification listener. Main thread.
func (s *Session) AddChangeListener(l mapping.ChangeListener) {
	s.changeListeners = append(s.changeListeners, l)
}

// AddFeedbackListener registers a feedback-value listener. Main thread.
func (s *Session) AddFeedbackListener(l FeedbackListener) {
	s.feedbackListeners = append(s.feedbackListeners, l)
}

// AddDiagnosticListener registers a diagnostics listener. Main thread.
func (s *Session) AddDiagnosticListener(l DiagnosticListener) {
	s.diagListeners = append(s.diagListeners, l)
}

// Activate pushes the initial source table to the real-time processor and
// performs a full feedback pass. Called once after construction, and again
// implicitly via full-resync tasks.
func (s *Session) Activate() {
	s.pushSourceTable()
	s.HandleFeedbackAll()
}

// OnIdle drains pending main tasks with a fixed cap. Implements
// host.Session.
func (s *Session) OnIdle() {
	for i := 0; i < maxMainTasksPerIdle; i++ {
		task, ok := s.mainTasks.Poll()
		if !ok {
			return
		}
		s.handleTask(task)
	}
}

func (s *Session) handleTask(task event.MainTask) {
	switch task.Kind {
	case event.MainControl:
		s.handleControlEvent(task.Control)
	case event.MainFeedbackAll:
		s.HandleFeedbackAll()
	case event.MainFullResync:
		s.logger.Debug("full resync requested by real-time processor")
		s.Activate()
	case event.MainDiagnostic:
		s.handleDiagnostic(task.Diagnostic)
	case event.MainCaptured:
		s.handleCaptured(task.Captured.Source)
	case event.MainRun:
		if task.Run != nil {
			task.Run()
		}
	}
}

// AddMapping adds a mapping to the given compartment and syncs the
// real-time source table.
func (s *Session) AddMapping(kind mapping.CompartmentKind, m *mapping.Mapping) error {
	if err := s.compartments[kind].Add(m); err != nil {
		return err
	}
	s.pushSourceTable()
	s.notify(mapping.Change{
		Mapping:  mapping.Qualified(kind, m.ID),
		Affected: mapping.AffectedMultiple(),
	})
	return nil
}

// RemoveMapping deletes a mapping. The id is never reused; in-flight events
// for it become silent no-ops.
func (s *Session) RemoveMapping(id mapping.QualifiedMappingID) bool {
	if !s.compartments[id.Compartment].Remove(id.ID) {
		return false
	}
	if s.learning != nil && s.learning.id == id {
		s.StopLearning()
	}
	s.pushSourceTable()
	s.notify(mapping.Change{Mapping: id, Affected: mapping.AffectedMultiple()})
	return true
}

// ChangeMapping applies one UI-originated mutation to exactly one mapping
// and emits a change notification tagged with the initiator hint.
func (s *Session) ChangeMapping(id mapping.QualifiedMappingID, change MappingChange, initiator string) error {
	m := s.compartments[id.Compartment].Get(id.ID)
	if m == nil {
		return errors.WrapInvalid(errors.ErrMappingNotFound, "Session", "ChangeMapping", "lookup mapping")
	}
	change.Apply(m)
	s.stats.changesApplied.Add(1)
	s.pushSourceTable()
	s.notify(mapping.Change{Mapping: id, Affected: change.Affected(), Initiator: initiator})
	return nil
}

// StartLearning arms learning for the given mapping: the next matching
// input event's shape is captured into its source descriptor instead of
// being dispatched.
func (s *Session) StartLearning(id mapping.QualifiedMappingID) error {
	if s.compartments[id.Compartment].Get(id.ID) == nil {
		return errors.WrapInvalid(errors.ErrMappingNotFound, "Session", "StartLearning", "lookup mapping")
	}
	s.learning = &learnState{id: id}
	s.rtTasks.TrySend(realtime.StartLearningTask())
	return nil
}

// StopLearning cancels learning. Safe to call when nothing is being
// learned.
func (s *Session) StopLearning() {
	s.learning = nil
	s.rtTasks.TrySend(realtime.StopLearningTask())
}

// IsLearning reports whether a capture is pending.
func (s *Session) IsLearning() bool {
	return s.learning != nil
}

// HandleFeedbackAll re-renders feedback for every feedback-enabled mapping.
// Resolution failures skip the mapping and keep going.
func (s *Session) HandleFeedbackAll() {
	for _, kind := range mapping.Kinds() {
		comp := s.compartments[kind]
		comp.Each(func(m *mapping.Mapping) {
			if !m.FeedbackEnabled || m.Target.Type == mapping.TargetVirtual {
				return
			}
			resolved, err := s.api.ResolveTarget(m.Target)
			if err != nil {
				s.stats.resolutionFailures.Add(1)
				return
			}
			s.emitFeedback(mapping.Qualified(kind, m.ID), m, m.Mode.FeedbackValue(resolved.CurrentValue))
		})
	}
}

func (s *Session) handleControlEvent(ev event.ControlEvent) {
	s.stats.controlEvents.Add(1)
	m := s.compartments[ev.ID.Compartment].Get(ev.ID.ID)
	if m == nil {
		// Deleted mid-flight; expected due to cross-thread latency.
		s.stats.unknownMappings.Add(1)
		s.logger.Debug("control event for unknown mapping", "id", ev.ID.String())
		return
	}
	s.dispatch(ev.ID, m, ev.Value)
}

func (s *Session) dispatch(id mapping.QualifiedMappingID, m *mapping.Mapping, raw float64) {
	if m.Target.Type == mapping.TargetVirtual {
		value, apply := m.Mode.Transform(raw, mapping.TargetCharacteristics{})
		if apply {
			s.dispatchVirtual(m.Target.Element, value)
		}
		return
	}

	resolved, err := s.api.ResolveTarget(m.Target)
	if err != nil {
		// Expected: host object missing or renamed. The mapping stays
		// present and inert, self-healing when the object reappears.
		s.stats.resolutionFailures.Add(1)
		s.logger.Debug("target resolution failed",
			"mapping", id.String(), "target", m.Target.Describe(), "error", err)
		return
	}

	value, apply := m.Mode.Transform(raw, resolved.Characteristics())
	if !apply {
		return
	}

	if m.ControlEnabled {
		if err := s.api.InvokeTarget(resolved, value); err != nil {
			// Applied with no effect; the session keeps going.
			s.stats.hostCallFailures.Add(1)
			s.logger.Warn("host call failed",
				"mapping", id.String(),
				"error", errors.WrapHost(err, "Session", "dispatch", "invoke target"))
		}
	}

	if m.FeedbackEnabled {
		s.emitFeedback(id, m, m.Mode.FeedbackValue(value))
	}
	s.applyGroupExclusivity(id, m)
}

// dispatchVirtual routes a virtual control element produced by a controller
// mapping to every main mapping whose source matches it.
func (s *Session) dispatchVirtual(element string, value float64) {
	main := s.compartments[mapping.CompartmentMain]
	main.Each(func(m *mapping.Mapping) {
		if m.Source.MatchesVirtual(element) {
			s.dispatch(mapping.Qualified(mapping.CompartmentMain, m.ID), m, value)
		}
	})
}

// applyGroupExclusivity turns feedback off for the other members of an
// exclusive group after one member was controlled.
func (s *Session) applyGroupExclusivity(id mapping.QualifiedMappingID, m *mapping.Mapping) {
	comp := s.compartments[id.Compartment]
	group := comp.GroupOf(m)
	if !group.Exclusive {
		return
	}
	comp.GroupMembers(group.ID, func(other *mapping.Mapping) {
		if other.ID != m.ID && other.FeedbackEnabled {
			s.emitFeedback(mapping.Qualified(id.Compartment, other.ID), other, 0)
		}
	})
}

func (s *Session) emitFeedback(id mapping.QualifiedMappingID, m *mapping.Mapping, value float64) {
	if msg, ok := m.Source.RenderFeedback(value); ok {
		s.rtTasks.TrySend(realtime.EmitFeedbackTask(msg))
		s.stats.feedbackSent.Add(1)
	}
	for _, l := range s.feedbackListeners {
		l(id, value)
	}
}

func (s *Session) handleCaptured(src mapping.Source) {
	if s.learning == nil {
		s.logger.Debug("captured source arrived with no learning in progress")
		return
	}
	id := s.learning.id
	s.learning = nil
	m := s.compartments[id.Compartment].Get(id.ID)
	if m == nil {
		s.stats.unknownMappings.Add(1)
		return
	}
	m.Source = src
	s.pushSourceTable()
	s.notify(mapping.Change{Mapping: id, Affected: mapping.AffectedOne(mapping.PropSource)})
	s.logger.Info("learned source", "mapping", id.String())
}

func (s *Session) handleDiagnostic(d event.Diagnostic) {
	s.logger.Log(context.Background(), d.Level, d.Message, "component", d.Component, "value", d.Value)
	for _, l := range s.diagListeners {
		l(d)
	}
}

// pushSourceTable compiles the control-enabled MIDI sources of both
// compartments into an immutable snapshot and ships it to the real-time
// processor. Replacement is a message, never a mutation of shared memory.
func (s *Session) pushSourceTable() {
	var entries []realtime.CompiledSource
	for _, kind := range mapping.Kinds() {
		comp := s.compartments[kind]
		comp.Each(func(m *mapping.Mapping) {
			if !m.ControlEnabled || m.Source.Kind != mapping.SourceMidi {
				return
			}
			if err := m.Source.Validate(); err != nil {
				s.logger.Warn("skipping mapping with invalid source",
					"mapping", m.ID.String(), "error", err)
				return
			}
			entries = append(entries, realtime.CompiledSource{
				ID:     mapping.Qualified(kind, m.ID),
				Source: m.Source,
			})
		})
	}
	s.rtTasks.TrySend(realtime.ReplaceSourceTableTask(realtime.NewSourceTable(entries)))
}

func (s *Session) notify(change mapping.Change) {
	for _, l := range s.changeListeners {
		l.MappingChanged(change)
	}
}
