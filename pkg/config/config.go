// Package config loads plughost settings.
//
// Precedence, highest first:
//  1. Overrides passed by the caller (command-line flags)
//  2. Environment variables prefixed with PLUGHOST_
//  3. Embedded defaults (defaults.yaml)
package config

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/justyntemme/plughost/pkg/framework/debug"
)

// EnvPrefix is stripped from environment variable names before mapping.
const EnvPrefix = "PLUGHOST_"

// MaxBlockSize bounds every block size setting.
const MaxBlockSize = 1 << 16

//go:embed defaults.yaml
var defaults []byte

// Backends lists the accepted engine.backend values.
var Backends = []string{"offline", "miniaudio", "portaudio"}

// Config is the full set of settings.
type Config struct {
	Engine EngineConfig `koanf:"engine"`
	Host   HostConfig   `koanf:"host"`
	Log    LogConfig    `koanf:"log"`
}

// EngineConfig selects and configures the audio engine.
type EngineConfig struct {
	Backend    string  `koanf:"backend"`
	ClientName string  `koanf:"client_name"`
	SampleRate float64 `koanf:"sample_rate"`
	BlockSize  uint32  `koanf:"block_size"`
	Blocks     uint64  `koanf:"blocks"`
	Realtime   bool    `koanf:"realtime"`
}

// HostConfig configures the bridge between engine and plugin.
type HostConfig struct {
	MinBlockSize  uint32  `koanf:"min_block_size"`
	MaxBlockSize  uint32  `koanf:"max_block_size"`
	EventCapacity int     `koanf:"event_capacity"`
	WarnRate      float64 `koanf:"warn_rate"`
}

// LogConfig configures the process-wide logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// envKey maps PLUGHOST_ENGINE_CLIENT_NAME to engine.client_name: the first
// segment after the prefix is the section, the rest is the field name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// Load reads the defaults, then the environment, then overrides. Override
// keys use the dotted form, e.g. "engine.block_size".
func Load(overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, val := range overrides {
		if !k.Exists(key) {
			return nil, fmt.Errorf("unknown setting %q", key)
		}
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if !validBackend(c.Engine.Backend) {
		return fmt.Errorf("engine.backend %q must be one of %s", c.Engine.Backend, strings.Join(Backends, ", "))
	}
	if c.Engine.ClientName == "" {
		return fmt.Errorf("engine.client_name is required")
	}
	if !(c.Engine.SampleRate > 0) || math.IsInf(c.Engine.SampleRate, 0) {
		return fmt.Errorf("engine.sample_rate must be positive, got %v", c.Engine.SampleRate)
	}
	if c.Engine.BlockSize == 0 || c.Engine.BlockSize > MaxBlockSize {
		return fmt.Errorf("engine.block_size must be in 1..%d, got %d", MaxBlockSize, c.Engine.BlockSize)
	}

	lo, hi := c.BlockSizeRange()
	if lo == 0 || hi > MaxBlockSize || lo > hi {
		return fmt.Errorf("host block size range %d..%d is invalid", lo, hi)
	}
	if c.Engine.BlockSize < lo || c.Engine.BlockSize > hi {
		return fmt.Errorf("engine.block_size %d outside host range %d..%d", c.Engine.BlockSize, lo, hi)
	}
	if c.Host.EventCapacity <= 0 {
		return fmt.Errorf("host.event_capacity must be positive, got %d", c.Host.EventCapacity)
	}
	if c.Host.WarnRate < 0 || math.IsNaN(c.Host.WarnRate) {
		return fmt.Errorf("host.warn_rate must not be negative, got %v", c.Host.WarnRate)
	}

	if _, err := debug.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != debug.FormatConsole && c.Log.Format != debug.FormatJSON {
		return fmt.Errorf("log.format %q must be %s or %s", c.Log.Format, debug.FormatConsole, debug.FormatJSON)
	}
	return nil
}

// BlockSizeRange returns the block sizes the plugin is activated for. Unset
// bounds fall back to engine.block_size.
func (c *Config) BlockSizeRange() (lo, hi uint32) {
	lo, hi = c.Host.MinBlockSize, c.Host.MaxBlockSize
	if lo == 0 {
		lo = c.Engine.BlockSize
	}
	if hi == 0 {
		hi = c.Engine.BlockSize
	}
	return lo, hi
}

func validBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}
