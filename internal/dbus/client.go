package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/pling-project/pling/internal/model"
)

const signalBufferSize = 16

// Notification describes an outbound Notify call made by the client.
type Notification struct {
	AppName    string
	ReplacesID uint32
	Icon       string
	Summary    string
	Body       string
	Actions    []string // alternating key, label pairs
	Hints      map[string]dbus.Variant
	Timeout    int32 // milliseconds; -1 server default, 0 never expire
}

// SetUrgency adds the urgency hint to the notification.
func (n *Notification) SetUrgency(level model.Urgency) {
	if n.Hints == nil {
		n.Hints = make(map[string]dbus.Variant)
	}
	n.Hints["urgency"] = dbus.MakeVariant(level.HintByte())
}

// SignalHandlers receives daemon lifecycle signals observed by Watch.
// Nil handlers are skipped.
type SignalHandlers struct {
	Closed func(id uint32, reason CloseReason)
	Action func(id uint32, actionKey string)
}

// Client is the caller side of the notification interface. It talks to
// whichever daemon currently owns the well-known name.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, BusPath),
	}, nil
}

// Notify sends a notification and returns the id the daemon assigned.
func (c *Client) Notify(n Notification) (uint32, error) {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	call := c.obj.Call(BusInterface+".Notify", 0,
		n.AppName,
		n.ReplacesID,
		n.Icon,
		n.Summary,
		n.Body,
		actions,
		hints,
		n.Timeout,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("Notify call failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to read Notify reply: %w", err)
	}
	return id, nil
}

// CloseNotification asks the daemon to close the given notification.
func (c *Client) CloseNotification(id uint32) error {
	call := c.obj.Call(BusInterface+".CloseNotification", 0, id)
	if call.Err != nil {
		return fmt.Errorf("CloseNotification call failed: %w", call.Err)
	}
	return nil
}

// ServerInformation queries the daemon's identity.
func (c *Client) ServerInformation() (ServerInfo, error) {
	call := c.obj.Call(BusInterface+".GetServerInformation", 0)
	if call.Err != nil {
		return ServerInfo{}, fmt.Errorf("GetServerInformation call failed: %w", call.Err)
	}

	var info ServerInfo
	if err := call.Store(&info.Name, &info.Vendor, &info.Version, &info.SpecVersion); err != nil {
		return ServerInfo{}, fmt.Errorf("failed to read GetServerInformation reply: %w", err)
	}
	return info, nil
}

// Capabilities queries the daemon's advertised capabilities.
func (c *Client) Capabilities() ([]string, error) {
	call := c.obj.Call(BusInterface+".GetCapabilities", 0)
	if call.Err != nil {
		return nil, fmt.Errorf("GetCapabilities call failed: %w", call.Err)
	}

	var caps []string
	if err := call.Store(&caps); err != nil {
		return nil, fmt.Errorf("failed to read GetCapabilities reply: %w", err)
	}
	return caps, nil
}

// Watch subscribes to NotificationClosed and ActionInvoked and dispatches
// them to the handlers until the context is cancelled. Signals from every
// sender on the notification path are delivered, matching bus semantics.
func (c *Client) Watch(ctx context.Context, handlers SignalHandlers) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(BusPath),
		dbus.WithMatchInterface(BusInterface),
	}
	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return fmt.Errorf("failed to add signal match: %w", err)
	}

	ch := make(chan *dbus.Signal, signalBufferSize)
	c.conn.Signal(ch)
	defer func() {
		c.conn.RemoveSignal(ch)
		_ = c.conn.RemoveMatchSignal(opts...)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			dispatchSignal(sig, handlers)
		}
	}
}

// dispatchSignal routes one bus signal to the matching handler.
func dispatchSignal(sig *dbus.Signal, handlers SignalHandlers) {
	if sig == nil || len(sig.Body) < 2 {
		return
	}

	switch sig.Name {
	case BusInterface + ".NotificationClosed":
		if handlers.Closed == nil {
			return
		}
		id, okID := sig.Body[0].(uint32)
		reason, okReason := sig.Body[1].(uint32)
		if okID && okReason {
			handlers.Closed(id, CloseReason(reason))
		}
	case BusInterface + ".ActionInvoked":
		if handlers.Action == nil {
			return
		}
		id, okID := sig.Body[0].(uint32)
		key, okKey := sig.Body[1].(string)
		if okID && okKey {
			handlers.Action(id, key)
		}
	}
}
