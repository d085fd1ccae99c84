package daemon

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// FileWatcher watches a single file and invokes a callback when it changes.
// The parent directory is watched rather than the file itself, which keeps
// the watch alive across atomic temp-file renames. Bursts of events are
// debounced into one callback.
type FileWatcher struct {
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	filePath string
	debounce time.Duration

	mu       sync.Mutex
	onChange func()
	running  bool
	done     chan struct{}
}

// NewFileWatcher creates a watcher for the given file path.
func NewFileWatcher(filePath string, logger *slog.Logger) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &FileWatcher{
		logger:   logger,
		watcher:  watcher,
		filePath: filePath,
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked after the file changes.
func (w *FileWatcher) SetChangeCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start begins watching. The parent directory must exist.
func (w *FileWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.filePath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.watch()

	w.logger.Debug("file watcher started", "path", w.filePath)
	return nil
}

// watch is the main watch loop.
func (w *FileWatcher) watch() {
	filename := filepath.Base(w.filePath)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer == nil {
					timer = time.NewTimer(w.debounce)
					timerC = timer.C
				} else {
					timer.Reset(w.debounce)
				}
			}

		case <-timerC:
			timer = nil
			timerC = nil

			w.logger.Debug("file changed", "path", w.filePath)

			w.mu.Lock()
			callback := w.onChange
			w.mu.Unlock()
			if callback != nil {
				callback()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop stops the watcher.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)

	w.logger.Debug("file watcher stopped", "path", w.filePath)
	return w.watcher.Close()
}
