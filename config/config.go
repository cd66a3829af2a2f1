// Package config loads SurfaceMap configuration with layered precedence:
// struct defaults, then an optional YAML file, then SURFACEMAP_* environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/sonicbind/surfacemap/errors"
)

// envPrefix is stripped from environment variables; the remainder maps to a
// config key with "_" as the level separator (SURFACEMAP_NATS_URL → nats.url).
const envPrefix = "SURFACEMAP_"

// Config is the full runtime configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	NATS     NATSConfig     `koanf:"nats"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Channels ChannelsConfig `koanf:"channels"`
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text or json
}

// NATSConfig controls the command/event service connection.
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Address string `koanf:"address"`
}

// ChannelsConfig overrides the task channel capacities.
type ChannelsConfig struct {
	MainCapacity     int `koanf:"main_capacity"`
	RealTimeCapacity int `koanf:"realtime_capacity"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		NATS: NATSConfig{
			Enabled:       true,
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "surfacemap",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Address: ":9823",
		},
		Channels: ChannelsConfig{
			MainCapacity:     2048,
			RealTimeCapacity: 512,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path (missing file is fine when path is empty) and the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load", "load defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, errors.WrapInvalid(err, "config", "Load", "stat config file")
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, errors.WrapInvalid(err, "config", "Load", "parse config file")
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load", "load environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.WrapInvalid(err, "config", "Load", "unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate", "nats url")
	}
	if c.NATS.SubjectPrefix == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate", "nats subject prefix")
	}
	if c.Channels.MainCapacity <= 0 || c.Channels.RealTimeCapacity <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
			"channel capacities must be positive")
	}
	return nil
}

// Logger builds a slog logger per the log configuration.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
