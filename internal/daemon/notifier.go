package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pling-project/pling/internal/registry"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// Poster is the notification sink for internal notifications.
// The registry satisfies it.
type Poster interface {
	Notify(req registry.Request) uint32
}

// InternalNotifier posts notifications about daemon events (DnD changes,
// config reloads) through the same registry path external callers use.
// Rate limiting prevents notification floods.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	poster Poster

	// Rate limiting: key -> last notification time
	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier posting to the given sink.
func NewInternalNotifier(poster Poster, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		poster:         poster,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second, // Don't repeat the same notification within 5 seconds
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify posts an internal notification unless rate-limited. The key is
// the rate-limit bucket: the same key won't notify again within the
// minimum interval.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	if lastTime, ok := n.lastNotifyTime[key]; ok {
		if time.Since(lastTime) < n.minInterval {
			n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
			return
		}
	}
	n.lastNotifyTime[key] = time.Now()

	urgency := urgencyForLevel(level)

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)

	n.poster.Notify(registry.Request{
		AppName: "plingd",
		AppIcon: iconForLevel(level),
		Summary: summary,
		Body:    body,
		Urgency: &urgency,
	})
}

// NotifyConfigReloaded posts a notification about config being reloaded.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"plingd configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError posts a notification about a config reload failure.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyDnDChanged posts a notification about a do-not-disturb transition.
func (n *InternalNotifier) NotifyDnDChanged(enabled bool, source string) {
	var summary, body string
	if enabled {
		summary = "Do Not Disturb Enabled"
		body = "New notifications will be recorded silently."
	} else {
		summary = "Do Not Disturb Disabled"
		body = "Notifications will now be displayed."
	}
	if source != "" {
		body += " (" + source + ")"
	}
	n.Notify("dnd-change", summary, body, NotificationLevelInfo)
}

// urgencyForLevel maps an internal level to the wire urgency byte.
func urgencyForLevel(level NotificationLevel) uint8 {
	switch level {
	case NotificationLevelInfo:
		return 0
	case NotificationLevelError:
		return 2
	default:
		return 1
	}
}

// iconForLevel maps an internal level to a standard icon name.
func iconForLevel(level NotificationLevel) string {
	switch level {
	case NotificationLevelWarning:
		return "dialog-warning"
	case NotificationLevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}
