// Package model defines the notification record shared by the registry,
// the persistent store, and the CLI.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Urgency is the three-level priority attached to a notification.
// It serializes as its lowercase name.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// urgencyByIndex maps the wire hint byte (0, 1, 2) to an urgency level.
var urgencyByIndex = [...]Urgency{UrgencyLow, UrgencyNormal, UrgencyCritical}

// ErrUnknownUrgency is returned when parsing an urgency name that is not
// one of low, normal, critical.
var ErrUnknownUrgency = errors.New("unknown urgency")

// UrgencyFromHint decodes the wire urgency byte. Values outside 0..2 and
// absent hints (nil) map to UrgencyNormal.
func UrgencyFromHint(b *uint8) Urgency {
	if b == nil || int(*b) >= len(urgencyByIndex) {
		return UrgencyNormal
	}
	return urgencyByIndex[*b]
}

// ParseUrgency converts an urgency name to its level. Used by the CLI to
// turn --urgency flags back into wire hints.
func ParseUrgency(name string) (Urgency, error) {
	switch Urgency(strings.ToLower(name)) {
	case UrgencyLow:
		return UrgencyLow, nil
	case UrgencyNormal:
		return UrgencyNormal, nil
	case UrgencyCritical:
		return UrgencyCritical, nil
	default:
		return UrgencyNormal, fmt.Errorf("%w: %q", ErrUnknownUrgency, name)
	}
}

// HintByte returns the wire representation of the urgency level.
func (u Urgency) HintByte() uint8 {
	for i, v := range urgencyByIndex {
		if v == u {
			return uint8(i)
		}
	}
	return 1
}

// Action is one invocable action offered by a notification. The wire
// protocol carries actions as a flat list of alternating keys and labels.
type Action struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// ParseActions pairs consecutive elements of the flat wire list into
// actions. Pairs with an empty label are dropped, as is an odd trailing
// key with no label.
func ParseActions(flat []string) []Action {
	var actions []Action
	for i := 0; i+1 < len(flat); i += 2 {
		if flat[i+1] == "" {
			continue
		}
		actions = append(actions, Action{Key: flat[i], Label: flat[i+1]})
	}
	return actions
}

// Notification is the record for one notification request and its current
// lifecycle state. The JSON field names are the persisted cache contract;
// Actions are omitted from the cache and Popup is always persisted false.
type Notification struct {
	ID         uint32   `json:"id" yaml:"id"`
	AppName    string   `json:"appName" yaml:"appName"`
	AppIconRef string   `json:"appIconRef,omitempty" yaml:"appIconRef,omitempty"`
	AppEntry   string   `json:"appEntry,omitempty" yaml:"appEntry,omitempty"`
	Summary    string   `json:"summary" yaml:"summary"`
	Body       string   `json:"body,omitempty" yaml:"body,omitempty"`
	Actions    []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
	Urgency    Urgency  `json:"urgency" yaml:"urgency"`
	CreatedAt  int64    `json:"createdAt" yaml:"createdAt"`
	ImageRef   string   `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	Popup      bool     `json:"popup" yaml:"popup"`
}

// CreatedTime returns the creation timestamp as a time.Time.
func (n *Notification) CreatedTime() time.Time {
	return time.Unix(n.CreatedAt, 0)
}

// Action returns the action with the given key, if the notification
// offers it.
func (n *Notification) Action(key string) (Action, bool) {
	for _, a := range n.Actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

// Clone returns a deep copy. Registry views hand out clones so callers
// can never mutate live records.
func (n *Notification) Clone() *Notification {
	clone := *n
	if n.Actions != nil {
		clone.Actions = make([]Action, len(n.Actions))
		copy(clone.Actions, n.Actions)
	}
	return &clone
}

// BodyTruncated returns the body collapsed to a single line and truncated
// to at most maxLen bytes with "..." appended when it was longer. The cut
// never splits a multi-byte rune.
func (n *Notification) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	body := strings.Join(strings.Fields(n.Body), " ")

	if len(body) <= maxLen {
		return body
	}

	cut := maxLen
	tail := ""
	if maxLen > 3 {
		cut = maxLen - 3
		tail = "..."
	}
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + tail
}
