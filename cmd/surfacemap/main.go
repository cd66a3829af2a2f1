// Package main implements the standalone SurfaceMap runner: the mapping
// engine wired to a simulated host, a real MIDI input port and the NATS
// command/event service. The audio thread of a real plugin host is simulated
// by a block-rate ticker, the main-thread idle hook by a second ticker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/sonicbind/surfacemap/config"
	"github.com/sonicbind/surfacemap/event"
	"github.com/sonicbind/surfacemap/host"
	"github.com/sonicbind/surfacemap/metric"
	"github.com/sonicbind/surfacemap/midi"
	"github.com/sonicbind/surfacemap/natsclient"
	"github.com/sonicbind/surfacemap/realtime"
	"github.com/sonicbind/surfacemap/service"
	"github.com/sonicbind/surfacemap/session"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "surfacemap"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	logger := cfg.Logger()
	slog.SetDefault(logger)
	logger.Info("starting surfacemap",
		"version", Version,
		"config_path", cliCfg.ConfigPath,
		"sample_rate", cliCfg.SampleRate,
		"block_size", cliCfg.BlockSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// NATS first: the session factory captures the connection.
	var nc *natsclient.Client
	if cfg.NATS.Enabled {
		nc, err = natsclient.Connect(cfg.NATS.URL, logger, natsclient.WithName(appName))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer nc.Close()
	}

	registry := metric.NewRegistry()
	simhost := newSimHost(logger)

	var svc *service.Service
	factory := func(api host.API, rtTasks *realtime.Channel, mainTasks *event.MainChannel) (host.Session, error) {
		sess := session.New(api, rtTasks, mainTasks, logger)
		if err := registry.RegisterSession(sess.Stats()); err != nil {
			return nil, fmt.Errorf("register session metrics: %w", err)
		}
		if nc != nil {
			svc = service.New(nc, sess, cfg.NATS.SubjectPrefix, logger)
			if err := svc.Start(); err != nil {
				return nil, fmt.Errorf("start service: %w", err)
			}
		}
		sess.Activate()
		return sess, nil
	}

	plugin := host.NewPlugin(simhost, factory, logger,
		host.WithChannelCapacities(cfg.Channels.RealTimeCapacity, cfg.Channels.MainCapacity))
	if err := registry.RegisterRealTime(plugin.RealTimeProcessor()); err != nil {
		return fmt.Errorf("register realtime metrics: %w", err)
	}
	rtTasks, mainTasks := plugin.Channels()
	if err := registry.RegisterChannels(rtTasks, mainTasks); err != nil {
		return fmt.Errorf("register channel metrics: %w", err)
	}

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg.Metrics.Address, registry, logger)
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("open MIDI driver: %w", err)
	}
	defer drv.Close()

	intake := newMidiIntake()
	stopListen, err := openMidiInput(drv, cliCfg.MidiIn, intake, logger)
	if err != nil {
		return err
	}
	defer stopListen()

	if err := openMidiOutput(drv, cliCfg.MidiOut, simhost, logger); err != nil {
		return err
	}

	plugin.SetSampleRate(cliCfg.SampleRate)
	plugin.Init()
	defer plugin.Teardown()

	runLoops(ctx, plugin, intake, cliCfg, logger)

	if svc != nil {
		svc.Stop()
	}
	logger.Info("surfacemap stopped")
	return nil
}

// runLoops drives the two timing domains until the context is canceled.
func runLoops(ctx context.Context, plugin *host.Plugin, intake *midiIntake, cliCfg *CLIConfig, logger *slog.Logger) {
	blockInterval := time.Duration(float64(cliCfg.BlockSize) / cliCfg.SampleRate * float64(time.Second))
	audioTicker := time.NewTicker(blockInterval)
	defer audioTicker.Stop()

	// The audio callback simulation lives on its own goroutine, like a real
	// host's audio thread. The intake queue keeps the MIDI driver's
	// goroutine out of the processor; events enter it here, like a host
	// delivering the block's events ahead of process().
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-audioTicker.C:
				intake.Forward(plugin)
				plugin.ProcessBlock(cliCfg.BlockSize)
			}
		}
	}()

	idleTicker := time.NewTicker(30 * time.Millisecond)
	defer idleTicker.Stop()

	logger.Info("engine running")
	for {
		select {
		case <-ctx.Done():
			return
		case <-idleTicker.C:
			plugin.OnMainIdle()
		}
	}
}

// openMidiInput opens the requested (or first) input port and feeds its
// events into the intake queue for the next audio tick.
func openMidiInput(drv *rtmididrv.Driver, name string, intake *midiIntake, logger *slog.Logger) (func(), error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		logger.Warn("no MIDI input ports; running with service input only")
		return func() {}, nil
	}

	var in drivers.In
	for _, candidate := range ins {
		if name == "" || candidate.String() == name {
			in = candidate
			break
		}
	}
	if in == nil {
		return nil, fmt.Errorf("MIDI input %q not found", name)
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open MIDI input %q: %w", in.String(), err)
	}

	stopFn, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		short, ok := midi.FromGomidi(msg)
		if !ok {
			return
		}
		intake.Push(short)
	}, gomidi.HandleError(func(listenErr error) {
		logger.Warn("MIDI listener error", "port", in.String(), "error", listenErr)
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen on MIDI input %q: %w", in.String(), err)
	}

	logger.Info("MIDI input open", "port", in.String())
	return func() {
		stopFn()
		_ = in.Close()
	}, nil
}

// openMidiOutput wires host feedback to a MIDI output port, if requested.
func openMidiOutput(drv *rtmididrv.Driver, name string, simhost *simHost, logger *slog.Logger) error {
	if name == "" {
		return nil
	}
	outs, err := drv.Outs()
	if err != nil {
		return fmt.Errorf("list MIDI outputs: %w", err)
	}
	var out drivers.Out
	for _, candidate := range outs {
		if candidate.String() == name {
			out = candidate
			break
		}
	}
	if out == nil {
		return fmt.Errorf("MIDI output %q not found", name)
	}
	if err := out.Open(); err != nil {
		return fmt.Errorf("open MIDI output %q: %w", name, err)
	}
	sender, err := gomidi.SendTo(out)
	if err != nil {
		return fmt.Errorf("create sender for %q: %w", name, err)
	}
	simhost.sendMidi = func(msg midi.ShortMessage) {
		if err := sender(msg.ToGomidi()); err != nil {
			logger.Debug("MIDI send failed", "error", err)
		}
	}
	logger.Info("MIDI output open", "port", name)
	return nil
}

// startMetricsServer serves the Prometheus scrape endpoint.
func startMetricsServer(ctx context.Context, addr string, registry *metric.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
