package dbus

import (
	"github.com/godbus/dbus/v5"
)

// NotificationClosed emits the NotificationClosed signal. It satisfies
// registry.Signaler; emission failures are logged, not returned, because
// the registry mutation has already happened. A no-op while unexported.
func (s *Server) NotificationClosed(id uint32, reason uint32) {
	conn := s.connection()
	if conn == nil {
		return
	}

	if err := conn.Emit(BusPath, BusInterface+".NotificationClosed", id, reason); err != nil {
		s.logger.Warn("failed to emit NotificationClosed signal", "id", id, "error", err)
		return
	}

	s.logger.Debug("emitted NotificationClosed signal", "id", id, "reason", CloseReason(reason).String())
}

// ActionInvoked emits the ActionInvoked signal. Same contract as
// NotificationClosed.
func (s *Server) ActionInvoked(id uint32, actionKey string) {
	conn := s.connection()
	if conn == nil {
		return
	}

	if err := conn.Emit(BusPath, BusInterface+".ActionInvoked", id, actionKey); err != nil {
		s.logger.Warn("failed to emit ActionInvoked signal", "id", id, "action_key", actionKey, "error", err)
		return
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
}

// connection returns the live connection, or nil while unexported.
func (s *Server) connection() *dbus.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exported {
		return nil
	}
	return s.conn
}
