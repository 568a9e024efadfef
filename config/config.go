package config

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/adamwoolhether/pacer/clock"
	"github.com/adamwoolhether/pacer/limiter"
	"github.com/adamwoolhether/pacer/meter"
)

// Config is the root of a pacer configuration file.
type Config struct {
	Logging  LoggingConfig             `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig             `yaml:"metrics" json:"metrics"`
	Clocks   map[string]ClockConfig    `yaml:"clocks" json:"clocks" validate:"dive"`
	Limiters map[string]limiter.Config `yaml:"limiters" json:"limiters" validate:"dive"`
	Meters   map[string]MeterConfig    `yaml:"meters" json:"meters" validate:"dive"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address" validate:"required_if=Enabled true"`
	Path    string `yaml:"path" json:"path" validate:"startswith=/"`
}

// ClockConfig describes a named interval clock. A zero interval builds
// a clock that needs an interval on every call.
type ClockConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval" validate:"gte=0"`
}

// MeterConfig describes a named rate meter.
type MeterConfig struct {
	Window time.Duration `yaml:"window" json:"window" validate:"gt=0"`
}

// Default returns a configuration with defaults applied and nothing
// named.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)

	return &cfg
}

// Logger builds a logger writing to w in the configured format and
// level.
func (l LoggingConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(l.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &opts))
	}

	return slog.New(slog.NewTextHandler(w, &opts))
}

// BuildClocks builds every configured clock. opts apply to all of them.
func (c *Config) BuildClocks(opts ...clock.Option) (map[string]*clock.Clock, error) {
	clocks := make(map[string]*clock.Clock, len(c.Clocks))
	for _, name := range sortedKeys(c.Clocks) {
		clk, err := clock.New(c.Clocks[name].Interval, opts...)
		if err != nil {
			return nil, fmt.Errorf("clock %q: %w", name, err)
		}
		clocks[name] = clk
	}

	return clocks, nil
}

// BuildMeters builds every configured meter. opts apply to all of them.
func (c *Config) BuildMeters(opts ...meter.Option) (map[string]*meter.Meter, error) {
	meters := make(map[string]*meter.Meter, len(c.Meters))
	for _, name := range sortedKeys(c.Meters) {
		m, err := meter.New(c.Meters[name].Window, opts...)
		if err != nil {
			return nil, fmt.Errorf("meter %q: %w", name, err)
		}
		meters[name] = m
	}

	return meters, nil
}

// BuildLimiters builds every limiter configured in c, each named after its
// key and sharing onFail and opts.
func BuildLimiters[T any](c *Config, onFail limiter.Fallback[T], opts ...limiter.Option) (map[string]*limiter.Limiter[T], error) {
	limiters := make(map[string]*limiter.Limiter[T], len(c.Limiters))
	for _, name := range sortedKeys(c.Limiters) {
		l, err := limiter.New(c.Limiters[name], onFail, append(slices.Clip(opts), limiter.WithName(name))...)
		if err != nil {
			return nil, fmt.Errorf("limiter %q: %w", name, err)
		}
		limiters[name] = l
	}

	return limiters, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
