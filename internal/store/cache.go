package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pling-project/pling/internal/model"
)

// Cache reads and writes the notification snapshot file. Every save dumps
// the full current state as a JSON array; every load returns it. Records
// are stored with actions omitted and the popup flag forced false, so a
// restart never resurrects popups or stale action handlers.
type Cache struct {
	mu   sync.Mutex
	path string
}

// NewCache creates a cache backed by the given file path. The file and
// its directory are created lazily on first save.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the snapshot. A missing file is empty state, not an error.
// Malformed JSON is returned as an error; callers decide whether to fail
// or degrade to empty state.
func (c *Cache) Load() ([]model.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache %s: %w", c.path, err)
	}

	var notifications []model.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("parse cache %s: %w", c.path, err)
	}

	for i := range notifications {
		notifications[i].Popup = false
	}

	return notifications, nil
}

// Save writes the full snapshot atomically (temp file + rename). Actions
// are stripped and the popup flag forced false on the way out.
func (c *Cache) Save(notifications []model.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]model.Notification, len(notifications))
	for i, n := range notifications {
		records[i] = n
		records[i].Actions = nil
		records[i].Popup = false
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create cache directory %s: %w", dir, err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}

	return os.Rename(tmpPath, c.path)
}
