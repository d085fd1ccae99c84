package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pling-project/pling/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3000*time.Millisecond, cfg.Popup.Timeout.Duration())
	assert.False(t, cfg.Sound.Enabled)
	assert.Equal(t, 0.8, cfg.Sound.Volume)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/pling.toml")
	require.NoError(t, err)
	assert.Equal(t, Default().Popup.Timeout, cfg.Popup.Timeout)
}

func TestLoad_ParsesTOML(t *testing.T) {
	path := writeConfig(t, `
[popup]
timeout = "5s"

[sound]
enabled = true
volume = 0.5
normal = "/usr/share/sounds/ping.ogg"
critical = "/usr/share/sounds/alarm.wav"

[log]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Popup.Timeout.Duration())
	assert.True(t, cfg.Sound.Enabled)
	assert.Equal(t, 0.5, cfg.Sound.Volume)
	assert.Equal(t, "/usr/share/sounds/ping.ogg", cfg.Sound.Normal)
	assert.Equal(t, "/usr/share/sounds/alarm.wav", cfg.Sound.Critical)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_IntegerMillisecondTimeout(t *testing.T) {
	// An unquoted TOML integer must reach Duration's text unmarshaler and
	// be read as milliseconds.
	path := writeConfig(t, `
[popup]
timeout = 3000
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Popup.Timeout.Duration())
}

func TestLoad_PartialConfig(t *testing.T) {
	path := writeConfig(t, `
[popup]
timeout = "10s"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Changed field
	assert.Equal(t, 10*time.Second, cfg.Popup.Timeout.Duration())

	// Unchanged fields keep defaults
	assert.Equal(t, 0.8, cfg.Sound.Volume)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeConfig(t, `this is not valid toml [`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[popup]
timeout = "3s"
timeuot = "5s"
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "zero timeout",
			content: `
[popup]
timeout = "0s"
`,
		},
		{
			name: "volume out of range",
			content: `
[sound]
volume = 1.5
`,
		},
		{
			name: "bad log level",
			content: `
[log]
level = "loud"
`,
		},
		{
			name: "unparseable duration",
			content: `
[popup]
timeout = "three seconds"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestDurationForms(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"3000", 3 * time.Second},
		{"250", 250 * time.Millisecond},
		{"5s", 5 * time.Second},
		{"1m", time.Minute},
		{"1h30m", 90 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d Duration
			require.NoError(t, d.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.expected, d.Duration())
		})
	}
}

func TestDurationMarshalText(t *testing.T) {
	d := Duration(5 * time.Second)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "5s", string(text))
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Default()
			cfg.Log.Level = tt.level

			level, err := cfg.LogLevel()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestSoundFor(t *testing.T) {
	cfg := Default()
	cfg.Sound.Low = "/sounds/low.wav"
	cfg.Sound.Normal = "/sounds/normal.wav"
	cfg.Sound.Critical = "/sounds/critical.wav"

	assert.Equal(t, "/sounds/low.wav", cfg.SoundFor(model.UrgencyLow))
	assert.Equal(t, "/sounds/normal.wav", cfg.SoundFor(model.UrgencyNormal))
	assert.Equal(t, "/sounds/critical.wav", cfg.SoundFor(model.UrgencyCritical))
}

func TestSoundForExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.Sound.Normal = "~/sounds/ping.ogg"

	assert.Equal(t, filepath.Join(home, "sounds", "ping.ogg"), cfg.SoundFor(model.UrgencyNormal))
}

// writeConfig writes content to a fresh temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pling.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
