package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(Notified, func(uint32) { order = append(order, "first") })
	bus.Subscribe(Notified, func(uint32) { order = append(order, "second") })
	bus.Subscribe(Notified, func(uint32) { order = append(order, "third") })

	bus.Emit(Notified, 1)

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_EmitPassesID(t *testing.T) {
	bus := NewBus()

	var got uint32
	bus.Subscribe(Closed, func(id uint32) { got = id })

	bus.Emit(Closed, 42)
	assert.Equal(t, uint32(42), got)
}

func TestBus_EmitOnlyMatchingEvent(t *testing.T) {
	bus := NewBus()

	notified := 0
	dismissed := 0
	bus.Subscribe(Notified, func(uint32) { notified++ })
	bus.Subscribe(Dismissed, func(uint32) { dismissed++ })

	bus.Emit(Notified, 1)
	bus.Emit(Notified, 2)

	assert.Equal(t, 2, notified)
	assert.Equal(t, 0, dismissed)
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()

	calls := 0
	cancel := bus.Subscribe(Changed, func(uint32) { calls++ })

	bus.Emit(Changed, 0)
	cancel()
	bus.Emit(Changed, 0)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Len(Changed))

	// Cancel is idempotent.
	cancel()
	assert.Equal(t, 0, bus.Len(Changed))
}

func TestBus_SubscribeDuringEmit(t *testing.T) {
	bus := NewBus()

	lateCalls := 0
	bus.Subscribe(Notified, func(uint32) {
		bus.Subscribe(Notified, func(uint32) { lateCalls++ })
	})

	// The handler added mid-emission must not run for the emission that
	// added it.
	bus.Emit(Notified, 1)
	assert.Equal(t, 0, lateCalls)

	bus.Emit(Notified, 2)
	assert.Equal(t, 1, lateCalls)
}

func TestBus_CancelDuringEmit(t *testing.T) {
	bus := NewBus()

	var cancelSecond func()
	first := 0
	second := 0

	bus.Subscribe(Notified, func(uint32) {
		first++
		cancelSecond()
	})
	cancelSecond = bus.Subscribe(Notified, func(uint32) { second++ })

	// The snapshot taken at emission start still delivers to the handler
	// cancelled mid-flight; the cancellation holds afterwards.
	bus.Emit(Notified, 1)
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	bus.Emit(Notified, 2)
	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestBus_ReentrantEmit(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(Notified, func(uint32) {
		order = append(order, "notified")
		bus.Emit(Changed, 0)
	})
	bus.Subscribe(Changed, func(uint32) {
		order = append(order, "changed")
	})

	bus.Emit(Notified, 1)

	assert.Equal(t, []string{"notified", "changed"}, order)
}
