// Package dbus implements the org.freedesktop.Notifications D-Bus interface.
// Server exposes the registry as the notification service (GetCapabilities,
// Notify, CloseNotification, GetServerInformation plus the NotificationClosed
// and ActionInvoked signals); Client is the caller side of the same surface,
// used by the pling CLI.
package dbus
