package main

import (
	"flag"
	"fmt"
)

// CLIConfig holds the parsed command-line flags.
type CLIConfig struct {
	ConfigPath  string
	MidiIn      string
	MidiOut     string
	SampleRate  float64
	BlockSize   int
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cliCfg := &CLIConfig{}

	flag.StringVar(&cliCfg.ConfigPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&cliCfg.MidiIn, "midi-in", "", "MIDI input port name (first available if empty)")
	flag.StringVar(&cliCfg.MidiOut, "midi-out", "", "MIDI output port name for feedback (disabled if empty)")
	flag.Float64Var(&cliCfg.SampleRate, "sample-rate", 48000, "Simulated audio sample rate")
	flag.IntVar(&cliCfg.BlockSize, "block-size", 512, "Simulated audio block size in samples")
	flag.BoolVar(&cliCfg.ShowVersion, "version", false, "Show version and exit")
	flag.BoolVar(&cliCfg.ShowHelp, "help", false, "Show help and exit")
	flag.BoolVar(&cliCfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Parse()
	return cliCfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %v", cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", cfg.BlockSize)
	}
	return nil
}

func printHelp() {
	fmt.Printf("%s - control surface to DAW mapping engine\n\n", appName)
	fmt.Println("Runs the mapping engine standalone against a simulated host,")
	fmt.Println("reading from a MIDI input port and serving remote UIs over NATS.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", appName)
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  SURFACEMAP_* variables override file configuration,")
	fmt.Println("  e.g. SURFACEMAP_NATS_URL, SURFACEMAP_LOG_LEVEL.")
}
