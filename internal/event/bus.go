// Package event provides the in-process observer bus collaborators use to
// react to notification lifecycle changes.
package event

import "sync"

// Lifecycle event names emitted by the registry.
const (
	Notified  = "notified"
	Dismissed = "dismissed"
	Closed    = "closed"
	Changed   = "changed"
)

// Handler receives the id of the notification the event concerns. The
// Changed event carries the id of the record that triggered it; handlers
// for Changed should treat the value as informational only.
type Handler func(id uint32)

type subscription struct {
	token uint64
	fn    Handler
}

// Bus is a named-event publisher. Handlers for an event run synchronously
// on the emitting goroutine, in registration order. Emission snapshots the
// handler list first, so handlers may subscribe, cancel, or emit again
// without corrupting delivery; such changes take effect from the next
// emission.
type Bus struct {
	mu       sync.Mutex
	next     uint64
	handlers map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]subscription)}
}

// Subscribe registers fn for the named event and returns a cancel
// function. Cancel is idempotent.
func (b *Bus) Subscribe(name string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	token := b.next
	b.handlers[name] = append(b.handlers[name], subscription{token: token, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[name]
		for i, s := range subs {
			if s.token == token {
				b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit invokes every handler registered for the named event.
func (b *Bus) Emit(name string, id uint32) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.handlers[name]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(id)
	}
}

// Len reports how many handlers are registered for the named event.
func (b *Bus) Len(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}
