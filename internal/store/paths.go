// Package store persists daemon state: the notification cache snapshot
// and the shared runtime state file.
package store

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// appDir is the per-app directory name under the XDG base directories.
const appDir = "pling"

// DefaultCacheFile returns the default notification cache path,
// $XDG_CACHE_HOME/pling/notifications.json.
func DefaultCacheFile() string {
	return filepath.Join(xdg.CacheHome, appDir, "notifications.json")
}

// DefaultImageDir returns the default directory for decoded notification
// images, $XDG_CACHE_HOME/pling/images.
func DefaultImageDir() string {
	return filepath.Join(xdg.CacheHome, appDir, "images")
}

// DefaultStateFile returns the default shared state path,
// $XDG_STATE_HOME/pling/state.json.
func DefaultStateFile() string {
	return filepath.Join(xdg.StateHome, appDir, "state.json")
}

// DefaultConfigFile returns the default config path,
// $XDG_CONFIG_HOME/pling/pling.toml.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appDir, "pling.toml")
}
