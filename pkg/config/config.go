// Package config loads the TOML configuration shared by the wire tools.
package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ZentaChain/zentalk-bus/pkg/bus"
	"github.com/ZentaChain/zentalk-bus/pkg/logging"
)

type Config struct {
	Board BoardConfig `toml:"board"`
	Codec CodecConfig `toml:"codec"`
	Poll  PollConfig  `toml:"poll"`
	Log   LogConfig   `toml:"log"`
}

type BoardConfig struct {
	CopyOnDelivery bool `toml:"copy_on_delivery"`
}

type CodecConfig struct {
	ByteOrder string `toml:"byte_order"` // "big" or "little"
}

type PollConfig struct {
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	Multiplier   float64 `toml:"multiplier"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	backoff := bus.DefaultBackoff()
	log := logging.DefaultOptions()
	return Config{
		Board: BoardConfig{CopyOnDelivery: true},
		Codec: CodecConfig{ByteOrder: "big"},
		Poll: PollConfig{
			InitialDelay: backoff.InitialDelay.String(),
			MaxDelay:     backoff.MaxDelay.String(),
			Multiplier:   backoff.Multiplier,
		},
		Log: LogConfig{Level: log.Level, Format: log.Format},
	}
}

// Load reads path over Default, so omitted keys keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func Validate(cfg Config) error {
	if _, err := cfg.Codec.Order(); err != nil {
		return err
	}
	if _, err := cfg.Poll.Backoff(); err != nil {
		return err
	}
	if _, _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	if _, err := logging.NewFormatter(cfg.Log.Format); err != nil {
		return err
	}
	return nil
}

// Order returns the configured byte order.
func (c CodecConfig) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(c.ByteOrder)) {
	case "", "big", "big-endian", "network":
		return binary.BigEndian, nil
	case "little", "little-endian":
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("codec byte_order %q: want big or little", c.ByteOrder)
	}
}

// Backoff returns the poll backoff. Empty fields fall back to
// bus.DefaultBackoff.
func (p PollConfig) Backoff() (bus.Backoff, error) {
	b := bus.DefaultBackoff()
	if p.InitialDelay != "" {
		d, err := time.ParseDuration(p.InitialDelay)
		if err != nil {
			return bus.Backoff{}, fmt.Errorf("poll initial_delay: %w", err)
		}
		b.InitialDelay = d
	}
	if p.MaxDelay != "" {
		d, err := time.ParseDuration(p.MaxDelay)
		if err != nil {
			return bus.Backoff{}, fmt.Errorf("poll max_delay: %w", err)
		}
		b.MaxDelay = d
	}
	if p.Multiplier != 0 {
		b.Multiplier = p.Multiplier
	}
	if b.InitialDelay <= 0 {
		return bus.Backoff{}, fmt.Errorf("poll initial_delay must be positive")
	}
	if b.MaxDelay < b.InitialDelay {
		return bus.Backoff{}, fmt.Errorf("poll max_delay %s below initial_delay %s", b.MaxDelay, b.InitialDelay)
	}
	if b.Multiplier < 1 {
		return bus.Backoff{}, fmt.Errorf("poll multiplier %v below 1", b.Multiplier)
	}
	return b, nil
}

// Logging returns the logger options.
func (l LogConfig) Logging() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format}
}
