package daemon

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	w, changes := startWatcher(t, path)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte(`{"doNotDisturb":true}`), 0600))

	assert.Eventually(t, func() bool {
		return changes.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_DetectsAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	w, changes := startWatcher(t, path)
	defer func() { _ = w.Stop() }()

	// Mimic the store's atomic write: temp file then rename over the target.
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"doNotDisturb":true}`), 0600))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool {
		return changes.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0600))

	w, changes := startWatcher(t, path)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0600))

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int64(0), changes.Load())
}

func TestFileWatcher_WatchesNotYetExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	w, changes := startWatcher(t, path)
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("[popup]\n"), 0600))

	assert.Eventually(t, func() bool {
		return changes.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	w, err := NewFileWatcher(path, testLogger())
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestFileWatcher_StartFailsForMissingDir(t *testing.T) {
	w, err := NewFileWatcher("/nonexistent-dir-for-sure/state.json", testLogger())
	require.NoError(t, err)

	assert.Error(t, w.Start())
}

// startWatcher builds and starts a watcher whose callback counts invocations.
func startWatcher(t *testing.T, path string) (*FileWatcher, *atomic.Int64) {
	t.Helper()

	w, err := NewFileWatcher(path, testLogger())
	require.NoError(t, err)

	var changes atomic.Int64
	w.SetChangeCallback(func() { changes.Add(1) })
	require.NoError(t, w.Start())
	return w, &changes
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
