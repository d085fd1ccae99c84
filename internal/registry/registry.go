// Package registry owns the live notification set and its lifecycle:
// id allocation and replacement, popup visibility, auto-expiry, do-not-
// disturb, persistence after every mutation, and event/signal emission.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pling-project/pling/internal/event"
	"github.com/pling-project/pling/internal/imaging"
	"github.com/pling-project/pling/internal/model"
)

// DefaultPopupTimeout is the auto-dismiss delay when none is configured.
const DefaultPopupTimeout = 3000 * time.Millisecond

// closedReason is the reason code carried by every NotificationClosed
// signal this daemon emits, regardless of what triggered the close.
const closedReason uint32 = 3

// Store persists the full live set. Implemented by store.Cache.
type Store interface {
	Load() ([]model.Notification, error)
	Save([]model.Notification) error
}

// Images resolves image payloads and icon hints to file references.
// Implemented by imaging.Resolver.
type Images interface {
	FromPayload(key string, data *imaging.Data) string
	FromPath(path string) string
}

// Signaler emits the outbound bus signals for close and action-invoke.
type Signaler interface {
	NotificationClosed(id uint32, reason uint32)
	ActionInvoked(id uint32, actionKey string)
}

// NopSignaler discards signals. Used when the daemon runs without bus
// export and in tests.
type NopSignaler struct{}

func (NopSignaler) NotificationClosed(uint32, uint32) {}
func (NopSignaler) ActionInvoked(uint32, string)      {}

// Request is one inbound Notify call with its hints already decoded by
// the transport layer.
type Request struct {
	AppName      string
	ReplacesID   uint32
	AppIcon      string
	Summary      string
	Body         string
	Actions      []string // flat alternating key/label list
	Urgency      *uint8   // urgency hint byte, nil when absent
	DesktopEntry string
	Image        *imaging.Data // image-data hint payload, nil when absent
}

// Options tune registry behavior.
type Options struct {
	// PopupTimeout is the auto-dismiss delay. Zero means
	// DefaultPopupTimeout.
	PopupTimeout time.Duration
	// FirstID is the first allocated notification id. Zero means 1;
	// the wire protocol reserves id 0 for "no replace".
	FirstID uint32
}

// Deps are the registry's collaborators.
type Deps struct {
	Store   Store
	Images  Images
	Events  *event.Bus
	Signals Signaler
	Logger  *slog.Logger
}

// Registry is the single owner of live notification state. All mutation
// funnels through one mutex; events and bus signals are emitted after the
// mutation settles so handlers may call back in.
type Registry struct {
	logger  *slog.Logger
	store   Store
	images  Images
	events  *event.Bus
	signals Signaler

	mu       sync.Mutex
	items    map[uint32]*model.Notification
	nextID   uint32
	timeout  time.Duration
	dnd      bool
	timerGen map[uint32]uint64 // live expiry-timer generation per id
	genSeq   uint64
}

// New creates a registry. Deps.Store and Deps.Images must be set; nil
// Events, Signals and Logger fall back to an empty bus, a no-op signaler
// and slog.Default.
func New(opts Options, deps Deps) *Registry {
	if opts.PopupTimeout <= 0 {
		opts.PopupTimeout = DefaultPopupTimeout
	}
	if opts.FirstID == 0 {
		opts.FirstID = 1
	}
	if deps.Events == nil {
		deps.Events = event.NewBus()
	}
	if deps.Signals == nil {
		deps.Signals = NopSignaler{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &Registry{
		logger:   deps.Logger,
		store:    deps.Store,
		images:   deps.Images,
		events:   deps.Events,
		signals:  deps.Signals,
		items:    make(map[uint32]*model.Notification),
		nextID:   opts.FirstID,
		timeout:  opts.PopupTimeout,
		timerGen: make(map[uint32]uint64),
	}
}

// Events returns the bus collaborators subscribe on.
func (r *Registry) Events() *event.Bus {
	return r.events
}

// Restore loads the persisted snapshot and advances the id counter past
// the largest restored id. Restored records are never popup-visible.
func (r *Registry) Restore() error {
	notifications, err := r.store.Load()
	if err != nil {
		return err
	}

	r.mu.Lock()
	for i := range notifications {
		n := notifications[i]
		n.Popup = false
		r.items[n.ID] = &n
		if n.ID >= r.nextID {
			r.nextID = n.ID + 1
		}
	}
	count := len(r.items)
	r.mu.Unlock()

	if count > 0 {
		r.logger.Info("restored notifications", "count", count)
		r.events.Emit(event.Changed, 0)
	}
	return nil
}

// Notify stores a new notification (or overwrites the record named by a
// nonzero ReplacesID), schedules its expiry, persists, and returns the id.
func (r *Registry) Notify(req Request) uint32 {
	r.mu.Lock()

	id := req.ReplacesID
	if id == 0 {
		id = r.nextID
		r.nextID++
	}

	n := &model.Notification{
		ID:         id,
		AppName:    req.AppName,
		AppIconRef: req.AppIcon,
		AppEntry:   req.DesktopEntry,
		Summary:    req.Summary,
		Body:       req.Body,
		Actions:    model.ParseActions(req.Actions),
		Urgency:    model.UrgencyFromHint(req.Urgency),
		CreatedAt:  time.Now().Unix(),
		Popup:      !r.dnd,
	}

	if req.Image != nil {
		n.ImageRef = r.images.FromPayload(fmt.Sprintf("%s%d", req.Summary, id), req.Image)
	} else if req.AppIcon != "" {
		n.ImageRef = r.images.FromPath(req.AppIcon)
	}

	r.items[id] = n
	r.scheduleExpiryLocked(id)
	r.persistLocked()

	urgency := n.Urgency
	popup := n.Popup
	r.mu.Unlock()

	r.logger.Debug("notification stored",
		"id", id,
		"app", req.AppName,
		"urgency", urgency,
		"popup", popup,
		"replaces", req.ReplacesID,
	)

	r.events.Emit(event.Notified, id)
	r.events.Emit(event.Changed, id)
	return id
}

// Dismiss flips the popup flag off. The record stays in the registry and
// nothing is persisted; dismissal is a transient UI state change. Unknown
// ids are ignored.
func (r *Registry) Dismiss(id uint32) {
	r.mu.Lock()
	ok := r.dismissLocked(id)
	r.mu.Unlock()
	if !ok {
		return
	}

	r.events.Emit(event.Dismissed, id)
	r.events.Emit(event.Changed, id)
}

// dismissLocked flips the popup flag off and reports whether id was
// present. Callers hold r.mu and emit events after releasing it.
func (r *Registry) dismissLocked(id uint32) bool {
	n, ok := r.items[id]
	if !ok {
		return false
	}
	n.Popup = false
	return true
}

// Close removes the record, persists, and emits NotificationClosed with
// reason 3. Unknown ids are ignored, so stale timers and double closes
// are harmless.
func (r *Registry) Close(id uint32) {
	r.mu.Lock()
	ok := r.closeLocked(id)
	r.mu.Unlock()
	if !ok {
		return
	}

	r.signals.NotificationClosed(id, closedReason)
	r.events.Emit(event.Closed, id)
	r.events.Emit(event.Changed, id)
}

// closeLocked removes the record and its timer generation and persists.
// Callers hold r.mu and emit the close signal and events after releasing
// it.
func (r *Registry) closeLocked(id uint32) bool {
	if _, ok := r.items[id]; !ok {
		return false
	}
	delete(r.items, id)
	delete(r.timerGen, id)
	r.persistLocked()
	return true
}

// InvokeAction emits ActionInvoked for the id and then closes it with
// Close's full effects. Invoking any action always closes the
// notification. The lookup and the removal share one lock hold, so the
// signals always describe the record that was actually removed. Unknown
// ids are ignored.
func (r *Registry) InvokeAction(id uint32, actionKey string) {
	r.mu.Lock()
	ok := r.closeLocked(id)
	r.mu.Unlock()
	if !ok {
		return
	}

	r.signals.ActionInvoked(id, actionKey)
	r.signals.NotificationClosed(id, closedReason)
	r.events.Emit(event.Closed, id)
	r.events.Emit(event.Changed, id)
}

// Clear closes every live notification. The id set is snapshotted before
// iterating since Close mutates the map.
func (r *Registry) Clear() {
	r.mu.Lock()
	ids := make([]uint32, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		r.Close(id)
	}
}

// SetDoNotDisturb sets the process-wide flag. New notifications arriving
// while it is set are recorded but never popup-visible.
func (r *Registry) SetDoNotDisturb(enabled bool) {
	r.mu.Lock()
	changed := r.dnd != enabled
	r.dnd = enabled
	r.mu.Unlock()

	if changed {
		r.logger.Info("do not disturb", "enabled", enabled)
		r.events.Emit(event.Changed, 0)
	}
}

// DoNotDisturb reports the current flag.
func (r *Registry) DoNotDisturb() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dnd
}

// SetPopupTimeout changes the expiry delay for subsequently scheduled
// timers. Non-positive values are ignored.
func (r *Registry) SetPopupTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.timeout = d
	r.mu.Unlock()
}

// PopupTimeout returns the current expiry delay.
func (r *Registry) PopupTimeout() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timeout
}

// Get returns a copy of the record with the given id.
func (r *Registry) Get(id uint32) (model.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok {
		return model.Notification{}, false
	}
	return *n.Clone(), true
}

// All returns copies of every live record in ascending id order.
func (r *Registry) All() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Popups returns copies of the records that should currently be shown as
// transient popups, in ascending id order.
func (r *Registry) Popups() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := r.snapshotLocked()
	popups := all[:0]
	for _, n := range all {
		if n.Popup {
			popups = append(popups, n)
		}
	}
	return popups
}

// Len reports the number of live notifications.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// scheduleExpiryLocked arms a dismiss timer for id. Each call bumps the
// id's generation so a timer armed before a replacement fires inert.
func (r *Registry) scheduleExpiryLocked(id uint32) {
	r.genSeq++
	gen := r.genSeq
	r.timerGen[id] = gen
	time.AfterFunc(r.timeout, func() {
		r.expire(id, gen)
	})
}

// expire is the timer callback. It dismisses only when the generation it
// was armed with is still the id's live one; close deletes the entry and
// replacement overwrites it, so stale fires do nothing. The generation
// check and the dismissal share one lock hold, so a replacement that
// commits first always wins over its predecessor's timer.
func (r *Registry) expire(id uint32, gen uint64) {
	r.mu.Lock()
	current, ok := r.timerGen[id]
	if !ok || current != gen {
		r.mu.Unlock()
		return
	}
	r.dismissLocked(id)
	r.mu.Unlock()

	r.events.Emit(event.Dismissed, id)
	r.events.Emit(event.Changed, id)
}

// persistLocked dumps the full live set to the store. Write failures are
// logged and otherwise ignored; in-memory state stays authoritative and
// the next successful write catches up.
func (r *Registry) persistLocked() {
	if err := r.store.Save(r.snapshotLocked()); err != nil {
		r.logger.Error("persist notifications", "error", err)
	}
}

// snapshotLocked returns copies of every record in ascending id order.
func (r *Registry) snapshotLocked() []model.Notification {
	notifications := make([]model.Notification, 0, len(r.items))
	for _, n := range r.items {
		notifications = append(notifications, *n.Clone())
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].ID < notifications[j].ID
	})
	return notifications
}
