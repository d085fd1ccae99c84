package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pling-project/pling/internal/model"
)

func TestCache_LoadMissingFile(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "notifications.json"))

	notifications, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCache_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "notifications.json"))

	err := c.Save([]model.Notification{
		cacheTestNotification(1),
		cacheTestNotification(2),
	})
	require.NoError(t, err)

	notifications, err := c.Load()
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, uint32(1), notifications[0].ID)
	assert.Equal(t, uint32(2), notifications[1].ID)
	assert.Equal(t, "Download Complete", notifications[0].Summary)
}

func TestCache_SaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "notifications.json")
	c := NewCache(path)

	err := c.Save([]model.Notification{cacheTestNotification(1)})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCache_SaveStripsActionsAndPopup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.json")
	c := NewCache(path)

	n := cacheTestNotification(5)
	n.Popup = true
	n.Actions = []model.Action{{Key: "default", Label: "Open"}}

	require.NoError(t, c.Save([]model.Notification{n}))

	// The on-disk document must not carry actions or a true popup flag.
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.NotContains(t, raw[0], "actions")
	assert.Equal(t, false, raw[0]["popup"])

	// The in-memory record passed to Save stays untouched.
	assert.True(t, n.Popup)
	assert.Len(t, n.Actions, 1)
}

func TestCache_LoadForcesPopupFalse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.json")

	// Hand-written cache content with popup:true sneaked in.
	content := `[{"id":3,"appName":"firefox","summary":"Hi","urgency":"normal","createdAt":1703577600,"popup":true}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	c := NewCache(path)
	notifications, err := c.Load()
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Popup)
}

func TestCache_LoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	c := NewCache(path)
	_, err := c.Load()
	assert.Error(t, err)
}

func TestCache_SaveEmpty(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "notifications.json"))

	require.NoError(t, c.Save(nil))

	notifications, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestCache_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifications.json")
	c := NewCache(path)

	require.NoError(t, c.Save([]model.Notification{cacheTestNotification(1)}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestCache_RoundTripMatchesFields(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "notifications.json"))

	n := cacheTestNotification(9)
	n.AppIconRef = "/usr/share/icons/firefox.png"
	n.AppEntry = "firefox"
	n.ImageRef = "/tmp/images/DownloadComplete9.png"
	n.Urgency = model.UrgencyCritical
	n.Popup = true
	n.Actions = []model.Action{{Key: "default", Label: "Open"}}

	require.NoError(t, c.Save([]model.Notification{n}))

	loaded, err := c.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.AppName, got.AppName)
	assert.Equal(t, n.AppIconRef, got.AppIconRef)
	assert.Equal(t, n.AppEntry, got.AppEntry)
	assert.Equal(t, n.Summary, got.Summary)
	assert.Equal(t, n.Body, got.Body)
	assert.Equal(t, n.Urgency, got.Urgency)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)
	assert.Equal(t, n.ImageRef, got.ImageRef)
	assert.Nil(t, got.Actions)
	assert.False(t, got.Popup)
}

// cacheTestNotification builds a minimal record for cache tests.
func cacheTestNotification(id uint32) model.Notification {
	return model.Notification{
		ID:        id,
		AppName:   "firefox",
		Summary:   "Download Complete",
		Body:      "myfile.zip has finished downloading",
		Urgency:   model.UrgencyNormal,
		CreatedAt: time.Now().Unix(),
	}
}
