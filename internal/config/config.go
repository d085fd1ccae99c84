// Package config handles configuration file loading and parsing.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pling-project/pling/internal/model"
)

// Duration is a time.Duration that can be unmarshaled from human-readable
// strings. Supports formats like "5s", "1m", "1h30m", or integer
// milliseconds for compatibility with notification timeout conventions.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Bare integers are milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the daemon configuration.
// Loaded from $XDG_CONFIG_HOME/pling/pling.toml by default.
type Config struct {
	Popup PopupConfig `toml:"popup"`
	Sound SoundConfig `toml:"sound"`
	Log   LogConfig   `toml:"log"`
}

// PopupConfig contains popup lifecycle settings.
type PopupConfig struct {
	Timeout Duration `toml:"timeout"` // auto-dismiss delay, e.g. "3s" or 3000
}

// SoundConfig contains notification sound settings.
type SoundConfig struct {
	Enabled  bool    `toml:"enabled"`
	Volume   float64 `toml:"volume"` // 0.0-1.0
	Low      string  `toml:"low"`
	Normal   string  `toml:"normal"`
	Critical string  `toml:"critical"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Popup: PopupConfig{
			Timeout: Duration(3000 * time.Millisecond),
		},
		Sound: SoundConfig{
			Enabled: false,
			Volume:  0.8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads the configuration from the given path. A missing file yields
// pure defaults; unknown keys and invalid values are errors so typos
// surface at startup instead of being silently ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Popup.Timeout.Duration() <= 0 {
		return fmt.Errorf("popup timeout must be positive, got %s", c.Popup.Timeout.Duration())
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		return fmt.Errorf("sound volume must be between 0 and 1, got %g", c.Sound.Volume)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}

// SoundFor returns the configured sound file path for the given urgency,
// with ~ expanded. Empty when no sound is configured for that urgency.
func (c *Config) SoundFor(urgency model.Urgency) string {
	var path string
	switch urgency {
	case model.UrgencyLow:
		path = c.Sound.Low
	case model.UrgencyCritical:
		path = c.Sound.Critical
	default:
		path = c.Sound.Normal
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
