// Package progress tracks which command kinds have been exercised in a
// session. A Tracker observes an undo.Stack: a successful undo marks the
// kind done, a failed one marks it in progress.
package progress

import (
	"fmt"
	"sync"

	"github.com/roach88/recipeata/internal/undo"
)

// Status of one tracked entry.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Entry is one tracked item.
type Entry struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Status Status `json:"status"`
}

// Tracker holds entries in seed order. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns a tracker seeded with one not-started entry per command kind.
func New() *Tracker {
	kinds := undo.Kinds()
	entries := make([]Entry, len(kinds))
	for i, k := range kinds {
		entries[i] = Entry{Key: string(k), Label: k.Label(), Status: StatusNotStarted}
	}
	return NewWithEntries(entries)
}

// NewWithEntries returns a tracker seeded with entries.
func NewWithEntries(entries []Entry) *Tracker {
	seed := make([]Entry, len(entries))
	copy(seed, entries)
	return &Tracker{entries: seed}
}

// SetStatus updates the entry with key. Unknown keys are ignored.
func (t *Tracker) SetStatus(key string, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].Key == key {
			t.entries[i].Status = status
			return
		}
	}
}

// Status returns the status for key.
func (t *Tracker) Status(key string) (Status, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.Key == key {
			return e.Status, true
		}
	}
	return "", false
}

// Entries returns a copy of the entries in seed order.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Observe implements undo.Observer.
func (t *Tracker) Observe(ev undo.Event) {
	if ev.Op != undo.OpUndo {
		return
	}
	if ev.Err != nil {
		t.SetStatus(string(ev.Command.Kind), StatusInProgress)
		return
	}
	t.SetStatus(string(ev.Command.Kind), StatusDone)
}
