package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// maxTransitions bounds the DnD transition history kept in the state file.
const maxTransitions = 20

// DnDTransition records one do-not-disturb state change.
type DnDTransition struct {
	ID        string `json:"id"`               // ULID, sortable by time
	Enabled   bool   `json:"enabled"`          // State after the transition
	Source    string `json:"source,omitempty"` // e.g. "cli", "plingd"
	Timestamp int64  `json:"timestamp"`        // Unix seconds
}

// SharedState is the runtime state shared between pling and plingd via the
// state file. The CLI writes it; the daemon watches and re-reads it.
type SharedState struct {
	DoNotDisturb bool            `json:"doNotDisturb"`
	Transitions  []DnDTransition `json:"transitions,omitempty"`
}

// stateFileMutex serializes state file access within the process.
var stateFileMutex sync.Mutex

// DefaultSharedState returns the state used when no state file exists.
func DefaultSharedState() *SharedState {
	return &SharedState{}
}

// LoadSharedState loads the shared state from path. A missing or corrupt
// file yields the default state.
func LoadSharedState(path string) (*SharedState, error) {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSharedState(), nil
		}
		return nil, err
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSharedState(), nil
	}

	return &state, nil
}

// SaveSharedState writes the shared state atomically (temp file + rename).
func SaveSharedState(path string, state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// SetDoNotDisturb sets the flag and records a transition. Returns false
// when the flag already had the requested value (no transition recorded).
func (s *SharedState) SetDoNotDisturb(enabled bool, source string) bool {
	if s.DoNotDisturb == enabled {
		return false
	}

	s.DoNotDisturb = enabled
	s.Transitions = append(s.Transitions, DnDTransition{
		ID:        ulid.Make().String(),
		Enabled:   enabled,
		Source:    source,
		Timestamp: time.Now().Unix(),
	})
	if len(s.Transitions) > maxTransitions {
		s.Transitions = s.Transitions[len(s.Transitions)-maxTransitions:]
	}
	return true
}

// ToggleDoNotDisturb flips the flag and returns the new value.
func (s *SharedState) ToggleDoNotDisturb(source string) bool {
	s.SetDoNotDisturb(!s.DoNotDisturb, source)
	return s.DoNotDisturb
}

// LastTransition returns the most recent transition, or nil if none have
// been recorded.
func (s *SharedState) LastTransition() *DnDTransition {
	if len(s.Transitions) == 0 {
		return nil
	}
	return &s.Transitions[len(s.Transitions)-1]
}
