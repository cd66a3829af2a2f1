// Package metric provides the Prometheus registry for SurfaceMap and the
// collectors that surface the real-time and session counters.
//
// The audio thread never touches Prometheus. The real-time processor keeps
// plain atomic counters; the collectors here read them lazily at scrape
// time from the scrape goroutine, which is the only cross-thread access and
// is tolerant of torn reads between counters.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sonicbind/surfacemap/errors"
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/realtime"
	"github.com/sonicbind/surfacemap/session"
)

// Registry wraps a dedicated Prometheus registry with the platform
// collectors pre-registered.
type Registry struct {
	prometheusRegistry *prometheus.Registry
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{prometheusRegistry: reg}
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler returns the scrape endpoint handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{})
}

func (r *Registry) register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.prometheusRegistry.Register(c); err != nil {
			return errors.WrapInvalid(err, "Registry", "register", "register collector")
		}
	}
	return nil
}

func counterFunc(name, help string, fn func() float64) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "surfacemap",
		Name:      name,
		Help:      help,
	}, fn)
}

func gaugeFunc(name, help string, fn func() float64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "surfacemap",
		Name:      name,
		Help:      help,
	}, fn)
}

// RegisterRealTime exposes the real-time processor's counters.
func (r *Registry) RegisterRealTime(p *realtime.Processor) error {
	return r.register(
		counterFunc("rt_events_matched_total",
			"Control events matched against the source table",
			func() float64 { return float64(p.Counters().Matched) }),
		counterFunc("rt_events_dropped_total",
			"Control events dropped because the session channel was full",
			func() float64 { return float64(p.Counters().Dropped) }),
		counterFunc("rt_malformed_messages_total",
			"Malformed MIDI short messages ignored by the audio path",
			func() float64 { return float64(p.Counters().Malformed) }),
		counterFunc("rt_tasks_applied_total",
			"Configuration tasks applied by the real-time processor",
			func() float64 { return float64(p.Counters().TasksApplied) }),
		counterFunc("rt_feedback_sent_total",
			"Feedback MIDI messages emitted by the real-time processor",
			func() float64 { return float64(p.Counters().FeedbackSent) }),
		counterFunc("rt_clock_ticks_total",
			"MIDI clock pulses generated",
			func() float64 { return float64(p.Counters().ClockTicks) }),
	)
}

// RegisterSession exposes the session's dispatch counters.
func (r *Registry) RegisterSession(stats *session.Stats) error {
	return r.register(
		counterFunc("session_control_events_total",
			"Control events consumed by the session dispatch loop",
			func() float64 { return float64(stats.Snapshot().ControlEvents) }),
		counterFunc("session_resolution_failures_total",
			"Target resolution failures (expected, recoverable)",
			func() float64 { return float64(stats.Snapshot().ResolutionFailures) }),
		counterFunc("session_host_call_failures_total",
			"Host API calls that returned an error",
			func() float64 { return float64(stats.Snapshot().HostCallFailures) }),
		counterFunc("session_unknown_mappings_total",
			"Control events for mappings deleted mid-flight",
			func() float64 { return float64(stats.Snapshot().UnknownMappings) }),
		counterFunc("session_feedback_sent_total",
			"Feedback messages pushed toward the real-time processor",
			func() float64 { return float64(stats.Snapshot().FeedbackSent) }),
		counterFunc("session_changes_applied_total",
			"Mapping mutations accepted by the session",
			func() float64 { return float64(stats.Snapshot().ChangesApplied) }),
	)
}

// RegisterChannels exposes backlog and drop counters of the two task
// channels.
func (r *Registry) RegisterChannels(rtTasks *realtime.Channel, mainTasks *event.MainChannel) error {
	return r.register(
		gaugeFunc("channel_rt_backlog",
			"Tasks waiting for the real-time processor",
			func() float64 { return float64(rtTasks.Len()) }),
		counterFunc("channel_rt_dropped_total",
			"Tasks dropped on the main-to-audio channel",
			func() float64 { return float64(rtTasks.Dropped()) }),
		gaugeFunc("channel_main_backlog",
			"Tasks waiting for the session",
			func() float64 { return float64(mainTasks.Len()) }),
		counterFunc("channel_main_dropped_total",
			"Tasks dropped on the audio-to-main channel",
			func() float64 { return float64(mainTasks.Dropped()) }),
	)
}
