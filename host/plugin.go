package host

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/sonicbind/surfacemap/bootstrap"
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/midi"
	"github.com/sonicbind/surfacemap/realtime"
)

// Named config parameter keys served by GetNamedConfigParam.
const (
	// ConfigWaitingForSession reports "true" until the bootstrap fills.
	ConfigWaitingForSession = "waiting-for-session"
	// ConfigInstanceID reports the plugin instance id.
	ConfigInstanceID = "instance-id"
)

// Session is the main-thread face of the session as seen by the shim.
// Everything else the shim needs travels through the task channels.
type Session interface {
	// OnIdle drains pending main tasks with a cap. Main thread only.
	OnIdle()
}

// SessionFactory creates the session once host identity is resolvable. It
// receives the channels the plugin already owns so the session can consume
// main tasks and push real-time tasks.
type SessionFactory func(api API, rtTasks *realtime.Channel, mainTasks *event.MainChannel) (Session, error)

// MidiEvent is one host-delivered event within an audio block.
type MidiEvent struct {
	Offset  int32
	Message midi.ShortMessage
}

// Plugin is the behavioral contract of the ABI shim: one object serving two
// timing domains. The real-time processor is constructed eagerly as a
// complete value; the session is reachable only through the write-once cell
// and may legitimately not exist yet at any point where the host calls in.
type Plugin struct {
	instanceID uuid.UUID
	logger     *slog.Logger
	api        API
	factory    SessionFactory

	rt        *realtime.Processor
	rtTasks   *realtime.Channel
	mainTasks *event.MainChannel

	cell  *bootstrap.Cell[Session]
	coord *bootstrap.Coordinator[Session]

	// deferred callbacks for the next main idle tick. Main thread only.
	deferred   []func()
	initCalled bool
	sampleRate float64
	wasPlaying bool
	tornDown   bool
}

// PluginOption configures plugin construction.
type PluginOption func(*pluginOptions)

type pluginOptions struct {
	rtCapacity   int
	mainCapacity int
}

// WithChannelCapacities overrides the task channel capacities. Values at or
// below zero keep the defaults.
func WithChannelCapacities(rtCapacity, mainCapacity int) PluginOption {
	return func(o *pluginOptions) {
		o.rtCapacity = rtCapacity
		o.mainCapacity = mainCapacity
	}
}

// NewPlugin constructs the shim. Cheap and infallible, as required by the
// host's construction path; everything that can fail is deferred.
func NewPlugin(api API, factory SessionFactory, logger *slog.Logger, opts ...PluginOption) *Plugin {
	o := pluginOptions{
		rtCapacity:   event.DefaultRealTimeCapacity,
		mainCapacity: event.DefaultMainCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rtCapacity <= 0 {
		o.rtCapacity = event.DefaultRealTimeCapacity
	}
	if o.mainCapacity <= 0 {
		o.mainCapacity = event.DefaultMainCapacity
	}
	rtTasks := realtime.NewChannelWithCapacity(o.rtCapacity)
	mainTasks := event.NewMainChannelWithCapacity(o.mainCapacity)
	cell := bootstrap.NewCell[Session]()
	return &Plugin{
		instanceID: uuid.New(),
		logger:     logger,
		api:        api,
		factory:    factory,
		rt:         realtime.New(rtTasks, mainTasks, api),
		rtTasks:    rtTasks,
		mainTasks:  mainTasks,
		cell:       cell,
		coord:      bootstrap.NewCoordinator(cell, logger),
	}
}

// InstanceID returns the plugin instance id.
func (p *Plugin) InstanceID() uuid.UUID {
	return p.instanceID
}

// RealTimeProcessor exposes the processor for the wiring layer (metrics).
func (p *Plugin) RealTimeProcessor() *realtime.Processor {
	return p.rt
}

// Channels exposes the two task channels for the wiring layer.
func (p *Plugin) Channels() (*realtime.Channel, *event.MainChannel) {
	return p.rtTasks, p.mainTasks
}

// SessionCell exposes the session cell for collaborators (UI root,
// parameter object) that tolerate "not yet available".
func (p *Plugin) SessionCell() *bootstrap.Cell[Session] {
	return p.cell
}

// RunOnNextIdle implements bootstrap.Scheduler. Main thread only.
func (p *Plugin) RunOnNextIdle(fn func()) {
	p.deferred = append(p.deferred, fn)
}

// Init is the host's init lifecycle call. Host identity is not reliably
// queryable here, so session creation is only scheduled, never performed.
func (p *Plugin) Init() {
	p.initCalled = true
	p.ensureSessionScheduled()
	p.logger.Debug("plugin init, session creation deferred", "instance", p.instanceID.String())
}

func (p *Plugin) ensureSessionScheduled() {
	if !p.initCalled || p.coord.State() != bootstrap.Uninitialized {
		return
	}
	p.coord.ScheduleSessionCreation(p, func() (Session, error) {
		if _, err := p.api.Identity(); err != nil {
			return nil, err
		}
		return p.factory(p.api, p.rtTasks, p.mainTasks)
	})
}

// ProcessEvents is called per audio block on the audio thread with the
// block's MIDI events. Works from construction on, session or not.
func (p *Plugin) ProcessEvents(events []MidiEvent) {
	for i := range events {
		p.rt.ProcessIncomingMidi(events[i].Offset, events[i].Message)
	}
}

// ProcessBlock is called per audio block on the audio thread for timing and
// idle work.
func (p *Plugin) ProcessBlock(numSamples int) {
	p.rt.Idle(numSamples)
}

// OnMainIdle is the host's main-thread idle hook: runs deferred callbacks
// (which is where the bootstrap fires), retries scheduling after a failed
// bootstrap, then lets the session drain its tasks.
func (p *Plugin) OnMainIdle() {
	if p.tornDown {
		return
	}
	deferred := p.deferred
	p.deferred = nil
	for _, fn := range deferred {
		fn()
	}
	p.ensureSessionScheduled()

	transport := p.api.Transport()
	if transport.Playing && !p.wasPlaying {
		// Transport resumed: feedback may have drifted while suspended.
		p.mainTasks.TrySend(event.FeedbackAllTask())
	}
	p.wasPlaying = transport.Playing

	if session, ok := p.cell.Get(); ok {
		session.OnIdle()
	}
}

// SetSampleRate is the host's sample-rate notification, delivered on the
// main thread and applied on the audio thread before further timing work.
func (p *Plugin) SetSampleRate(rate float64) {
	p.sampleRate = rate
	p.rtTasks.TrySend(realtime.UpdateSampleRateTask(rate))
}

// Resume signals that the host resumed processing. Feedback state may have
// drifted while suspended, so a full feedback pass is requested. The task
// is buffered by the channel if the session does not exist yet.
func (p *Plugin) Resume() {
	p.mainTasks.TrySend(event.FeedbackAllTask())
}

// GetNamedConfigParam serves the vendor-specific named-config query
// protocol. Unknown keys report false.
func (p *Plugin) GetNamedConfigParam(name string) (string, bool) {
	switch name {
	case ConfigWaitingForSession:
		if p.cell.Filled() {
			return "false", true
		}
		return "true", true
	case ConfigInstanceID:
		return p.instanceID.String(), true
	default:
		return "", false
	}
}

// Teardown begins host-initiated destruction: channel senders degrade to
// no-ops and the session stops being ticked. Idempotent.
func (p *Plugin) Teardown() {
	if p.tornDown {
		return
	}
	p.tornDown = true
	p.rtTasks.Close()
	p.mainTasks.Close()
	p.logger.Debug("plugin teardown", "instance", p.instanceID.String())
}
