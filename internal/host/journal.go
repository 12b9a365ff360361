package host

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// defaultJournalCap bounds the in-memory activation history.
const defaultJournalCap = 128

// Entry is one recorded activation.
type Entry struct {
	ID      string
	Theme   string
	Restart bool
	At      time.Time
}

// Journal keeps a bounded, newest-last history of theme activations.
type Journal struct {
	mu      sync.Mutex
	cap     int
	entries []Entry
}

// NewJournal creates a journal holding at most capacity entries.
// A non-positive capacity uses the default.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = defaultJournalCap
	}
	return &Journal{cap: capacity}
}

// Record appends an activation and returns the new entry.
func (j *Journal) Record(themeName string, restart bool) Entry {
	entry := Entry{
		ID:      ulid.Make().String(),
		Theme:   themeName,
		Restart: restart,
		At:      time.Now(),
	}

	j.mu.Lock()
	j.entries = append(j.entries, entry)
	if len(j.entries) > j.cap {
		j.entries = j.entries[len(j.entries)-j.cap:]
	}
	j.mu.Unlock()

	return entry
}

// Entries returns a copy of the recorded activations, oldest first.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}
