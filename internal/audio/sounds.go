package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/pling-project/pling/internal/config"
	"github.com/pling-project/pling/internal/event"
	"github.com/pling-project/pling/internal/model"
)

// Lookup resolves a notification id to its current record. Satisfied by
// the registry.
type Lookup interface {
	Get(id uint32) (model.Notification, bool)
}

// SoundPlayer abstracts the beep-backed Player for testing.
type SoundPlayer interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// Sounds plays the configured per-urgency sound when a notification is
// posted. Notifications recorded without a popup, such as under
// do-not-disturb, stay silent.
type Sounds struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player SoundPlayer
	lookup Lookup

	enabled bool
	paths   map[model.Urgency]string
}

// NewSounds creates the sound dispatcher. Call Configure before Attach.
func NewSounds(player SoundPlayer, lookup Lookup, logger *slog.Logger) *Sounds {
	if logger == nil {
		logger = slog.Default()
	}

	return &Sounds{
		logger: logger,
		player: player,
		lookup: lookup,
		paths:  make(map[model.Urgency]string),
	}
}

// Configure applies the sound section of the configuration: volume,
// enablement, and the per-urgency sound files. Paths that do not exist
// are skipped with a warning. The decode cache is cleared so a reload
// picks up edited files, and the remaining sounds are preloaded.
func (s *Sounds) Configure(cfg *config.Config) {
	paths := make(map[model.Urgency]string, 3)
	for _, urgency := range []model.Urgency{model.UrgencyLow, model.UrgencyNormal, model.UrgencyCritical} {
		path := cfg.SoundFor(urgency)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			s.logger.Warn("sound file not found", "urgency", urgency, "path", path)
			continue
		}
		paths[urgency] = path
	}

	s.mu.Lock()
	s.enabled = cfg.Sound.Enabled
	s.paths = paths
	s.mu.Unlock()

	s.player.SetVolume(cfg.Sound.Volume)
	s.player.ClearCache()

	if !cfg.Sound.Enabled {
		return
	}
	for _, path := range paths {
		if err := s.player.Preload(path); err != nil {
			s.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
	}
}

// Attach subscribes to posted-notification events on the bus and returns
// the cancel function.
func (s *Sounds) Attach(bus *event.Bus) func() {
	return bus.Subscribe(event.Notified, s.handleNotified)
}

func (s *Sounds) handleNotified(id uint32) {
	s.mu.RLock()
	enabled := s.enabled
	s.mu.RUnlock()
	if !enabled {
		return
	}

	n, ok := s.lookup.Get(id)
	if !ok || !n.Popup {
		return
	}

	s.mu.RLock()
	path, ok := s.paths[n.Urgency]
	s.mu.RUnlock()
	if !ok {
		s.logger.Debug("no sound configured for urgency", "urgency", n.Urgency)
		return
	}

	// The first play of an uncached file decodes it from disk; keep
	// that off the notification path.
	go func() {
		if err := s.player.Play(path); err != nil {
			s.logger.Warn("failed to play notification sound", "id", id, "path", path, "error", err)
		}
	}()
}

// Close releases the underlying player.
func (s *Sounds) Close() {
	s.player.Close()
}
