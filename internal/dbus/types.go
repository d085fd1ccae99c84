package dbus

import (
	"github.com/godbus/dbus/v5"

	"github.com/pling-project/pling/internal/imaging"
	"github.com/pling-project/pling/internal/registry"
)

// CloseReason is the reason code carried by the NotificationClosed signal.
// The values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is the protocol's reserved/undefined reason.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Hints wraps the a{sv} map of a Notify call. Only the hints the daemon
// consumes have accessors; everything else is carried but ignored.
type Hints map[string]dbus.Variant

// Urgency extracts the urgency hint as its raw byte.
// Returns nil when the hint is absent or has the wrong type; the registry
// maps nil to normal urgency.
func (h Hints) Urgency() *uint8 {
	if v, ok := h["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return &b
		}
	}
	return nil
}

// DesktopEntry extracts the desktop-entry hint.
// Returns empty string if not specified.
func (h Hints) DesktopEntry() string {
	if v, ok := h["desktop-entry"]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// ImageData decodes the image-data hint, a (iiibiiay) struct of width,
// height, rowstride, has_alpha, bits_per_sample, channels and raw pixels.
// godbus surfaces struct variants as []interface{}. Returns nil when the
// hint is absent or malformed. image_data is the pre-1.2 spelling.
func (h Hints) ImageData() *imaging.Data {
	v, ok := h["image-data"]
	if !ok {
		v, ok = h["image_data"]
	}
	if !ok {
		return nil
	}

	fields, ok := v.Value().([]interface{})
	if !ok || len(fields) != 7 {
		return nil
	}

	width, okW := fields[0].(int32)
	height, okH := fields[1].(int32)
	rowStride, okR := fields[2].(int32)
	hasAlpha, okA := fields[3].(bool)
	bits, okB := fields[4].(int32)
	channels, okC := fields[5].(int32)
	pixels, okP := fields[6].([]byte)
	if !okW || !okH || !okR || !okA || !okB || !okC || !okP {
		return nil
	}

	return &imaging.Data{
		Width:         int(width),
		Height:        int(height),
		RowStride:     int(rowStride),
		HasAlpha:      hasAlpha,
		BitsPerSample: int(bits),
		Channels:      int(channels),
		Pixels:        pixels,
	}
}

// requestFromWire translates the raw Notify arguments into a registry
// request. The expire timeout argument is accepted for wire compatibility
// but plays no part in expiry, so it is not carried.
func requestFromWire(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints Hints,
) registry.Request {
	return registry.Request{
		AppName:      appName,
		ReplacesID:   replacesID,
		AppIcon:      appIcon,
		Summary:      summary,
		Body:         body,
		Actions:      actions,
		Urgency:      hints.Urgency(),
		DesktopEntry: hints.DesktopEntry(),
		Image:        hints.ImageData(),
	}
}

// ServerCapabilities lists the capabilities advertised by plingd.
var ServerCapabilities = []string{
	"actions",     // Support notification actions
	"body",        // Support body text
	"icon-static", // Support static icons
	"persistence", // Persist notifications across restarts
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "pling"
	Vendor      string // "pling-project"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "pling",
		Vendor:      "pling-project",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
