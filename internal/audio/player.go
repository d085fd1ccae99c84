package audio

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player decodes and plays sound files through the system speaker.
// Decoded sounds are cached so repeated notifications replay without
// touching the disk.
type Player struct {
	mu     sync.Mutex
	logger *slog.Logger

	// Linear volume, 0.0 to 1.0.
	volume float64

	initialized bool
	sampleRate  beep.SampleRate

	cacheMu sync.RWMutex
	cache   map[string]*beep.Buffer
}

// NewPlayer creates an idle player. The speaker is opened lazily on the
// first decode, so machines without audio are only touched when a sound
// is actually played.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}

	return &Player{
		logger:     logger,
		volume:     1.0,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// SetVolume sets the playback volume, clamped to 0.0..1.0.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	p.volume = volume
}

// Volume returns the current playback volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Play decodes the file if it is not cached yet and starts playback.
// WAV, OGG and MP3 are supported, chosen by file extension. Playback is
// asynchronous; Play returns once the sound is queued on the speaker.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}

	p.cacheMu.RLock()
	buffer, ok := p.cache[path]
	p.cacheMu.RUnlock()

	if !ok {
		var err error
		buffer, err = p.load(path)
		if err != nil {
			return err
		}
	}

	p.playBuffer(buffer)
	return nil
}

// Preload decodes a sound file into the cache ahead of playback.
func (p *Player) Preload(path string) error {
	if path == "" {
		return nil
	}

	p.cacheMu.RLock()
	_, ok := p.cache[path]
	p.cacheMu.RUnlock()
	if ok {
		return nil
	}

	_, err := p.load(path)
	return err
}

// load decodes a sound file, opens the speaker on first use, and caches
// the decoded buffer.
func (p *Player) load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer func() { _ = streamer.Close() }()

	if err := p.ensureInitialized(format.SampleRate); err != nil {
		return nil, err
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	p.cacheMu.Lock()
	p.cache[path] = buffer
	p.cacheMu.Unlock()

	p.logger.Debug("sound loaded", "path", path, "duration", format.SampleRate.D(buffer.Len()))
	return buffer, nil
}

// ensureInitialized opens the speaker once, at the sample rate of the
// first decoded sound. Sounds at other rates are resampled on playback.
func (p *Player) ensureInitialized(sampleRate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	bufferSize := sampleRate.N(100 * time.Millisecond)
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	p.sampleRate = sampleRate
	p.initialized = true
	p.logger.Debug("speaker initialized", "sample_rate", sampleRate)
	return nil
}

func (p *Player) playBuffer(buffer *beep.Buffer) {
	p.mu.Lock()
	volume := p.volume
	sampleRate := p.sampleRate
	p.mu.Unlock()

	var streamer beep.Streamer = buffer.Streamer(0, buffer.Len())

	if buffer.Format().SampleRate != sampleRate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, sampleRate, streamer)
	}

	// effects.Volume scales samples by Base**Volume, so a linear gain v
	// needs the exponent log2(v) with Base 2.
	if volume <= 0 {
		streamer = &effects.Volume{Streamer: streamer, Base: 2, Silent: true}
	} else if volume < 1 {
		streamer = &effects.Volume{Streamer: streamer, Base: 2, Volume: math.Log2(volume)}
	}

	speaker.Play(streamer)
}

// ClearCache drops all decoded sounds so replaced files are decoded
// fresh on the next play.
func (p *Player) ClearCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]*beep.Buffer)
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.mu.Unlock()

	p.ClearCache()
}
