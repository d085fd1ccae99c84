package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/pling-project/pling/internal/registry"
)

const (
	// BusInterface is the notification interface name.
	BusInterface = "org.freedesktop.Notifications"
	// BusPath is the notification object path.
	BusPath = "/org/freedesktop/Notifications"
	// BusName is the well-known bus name to claim.
	BusName = "org.freedesktop.Notifications"
)

// ErrBusNameTaken is returned by Start when another notification daemon
// already owns the well-known bus name. The caller may keep running with
// the registry as a library; signal emission becomes a no-op.
var ErrBusNameTaken = errors.New("notification bus name already owned")

// Handler receives the inbound method calls the server cannot answer by
// itself. The registry satisfies it.
type Handler interface {
	Notify(req registry.Request) uint32
	Close(id uint32)
}

// Server exposes a Handler as the org.freedesktop.Notifications service on
// the session bus and implements registry.Signaler for the outbound
// direction.
type Server struct {
	logger *slog.Logger

	mu       sync.Mutex
	conn     *dbus.Conn
	handler  Handler
	info     ServerInfo
	exported bool
}

// NewServer creates a new Server. SetHandler must be called before Start.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		info:   DefaultServerInfo(),
	}
}

// SetHandler sets the handler receiving Notify and CloseNotification calls.
func (s *Server) SetHandler(handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// SetServerInfo sets the information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
}

// Start connects to the session bus, exports the notification object and
// claims the well-known name. Returns ErrBusNameTaken when the name is
// owned by another daemon; any other error means the export itself failed.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.exported {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, BusPath, BusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: BusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    BusInterface,
				Methods: notificationMethods(),
				Signals: notificationSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), BusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.unexport(conn)
		return fmt.Errorf("%w: %s", ErrBusNameTaken, BusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.exported = true
	s.mu.Unlock()

	s.logger.Info("notification service started", "interface", BusInterface, "path", BusPath)
	return nil
}

// Stop releases the bus name and unexports the object. The session bus
// connection is shared and stays open.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exported {
		return nil
	}
	s.exported = false

	if _, err := s.conn.ReleaseName(BusName); err != nil {
		s.logger.Warn("failed to release bus name", "error", err)
	}
	s.unexport(s.conn)
	s.conn = nil

	s.logger.Info("notification service stopped")
	return nil
}

// unexport removes the previously exported objects.
func (s *Server) unexport(conn *dbus.Conn) {
	_ = conn.Export(nil, BusPath, BusInterface)
	_ = conn.Export(nil, BusPath, "org.freedesktop.DBus.Introspectable")
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	s.logger.Debug("GetCapabilities called")
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the notification server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.Lock()
	info := s.info
	s.mu.Unlock()

	s.logger.Debug("GetServerInformation called")
	return info.Name, info.Vendor, info.Version, info.SpecVersion, nil
}

// Notify handles incoming notification requests.
// D-Bus method: Notify(susssasa{sv}i) -> u
//
// The expire_timeout argument is accepted for wire compatibility and
// ignored; expiry always uses the daemon's configured delay.
func (s *Server) Notify(
	appName string,
	replacesID uint32,
	appIcon string,
	summary string,
	body string,
	actions []string,
	hints map[string]dbus.Variant,
	expireTimeout int32,
) (uint32, *dbus.Error) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return 0, dbus.MakeFailedError(errors.New("no notification handler registered"))
	}

	s.logger.Debug("Notify called",
		"app_name", appName,
		"replaces_id", replacesID,
		"summary", summary,
		"expire_timeout", expireTimeout,
	)

	id := handler.Notify(requestFromWire(appName, replacesID, appIcon, summary, body, actions, hints))
	return id, nil
}

// CloseNotification closes a notification by ID. Unknown ids are a silent
// no-op per the registry contract.
// D-Bus method: CloseNotification(u) -> nothing
func (s *Server) CloseNotification(id uint32) *dbus.Error {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	s.logger.Debug("CloseNotification called", "id", id)

	if handler != nil {
		handler.Close(id)
	}
	return nil
}

// notificationMethods returns the D-Bus method introspection data.
func notificationMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "spec_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Notify",
			Args: []introspect.Arg{
				{Name: "app_name", Type: "s", Direction: "in"},
				{Name: "replaces_id", Type: "u", Direction: "in"},
				{Name: "app_icon", Type: "s", Direction: "in"},
				{Name: "summary", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "expire_timeout", Type: "i", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "CloseNotification",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
	}
}

// notificationSignals returns the D-Bus signal introspection data.
func notificationSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "NotificationClosed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "u"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
