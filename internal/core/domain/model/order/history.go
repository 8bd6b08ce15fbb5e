package order

import (
	"errors"
	"time"

	"pharmadelivery/internal/pkg/errs"
)

// HistoryEntry is one record of the status history ledger.
type HistoryEntry struct {
	status    Status
	timestamp time.Time
	reason    string
	note      string
	actor     Actor
}

// NewHistoryEntry validates a ledger record. Actor may be empty for entries
// restored from records written before roles were tracked.
func NewHistoryEntry(status Status, timestamp time.Time, actor Actor, reason, note string) (HistoryEntry, error) {
	var actorErr error
	if actor != "" {
		actorErr = actor.Validate()
	}

	var timestampErr error
	if timestamp.IsZero() {
		timestampErr = errs.NewValueIsRequiredError("timestamp")
	}

	if err := errors.Join(status.Validate(), timestampErr, actorErr); err != nil {
		return HistoryEntry{}, err
	}

	return HistoryEntry{
		status:    status,
		timestamp: timestamp.UTC(),
		reason:    reason,
		note:      note,
		actor:     actor,
	}, nil
}

func (e HistoryEntry) Status() Status {
	return e.status
}

func (e HistoryEntry) Timestamp() time.Time {
	return e.timestamp
}

func (e HistoryEntry) Reason() string {
	return e.reason
}

func (e HistoryEntry) Note() string {
	return e.note
}

func (e HistoryEntry) Actor() Actor {
	return e.actor
}

// History is the append-only status ledger embedded in an order. It is the
// source of truth for every timing derivation. Entries are never reordered
// or removed; only Order appends to it.
type History struct {
	entries []HistoryEntry
}

// NewHistory restores a ledger in stored order.
func NewHistory(entries ...HistoryEntry) History {
	copied := make([]HistoryEntry, len(entries))
	copy(copied, entries)
	return History{entries: copied}
}

// Entries returns a copy of the ledger.
func (h History) Entries() []HistoryEntry {
	copied := make([]HistoryEntry, len(h.entries))
	copy(copied, h.entries)
	return copied
}

func (h History) Len() int {
	return len(h.entries)
}

// Last returns the most recently appended entry.
func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// append keeps stored timestamps non-decreasing: an entry stamped before the
// previous one takes the previous timestamp.
func (h *History) append(e HistoryEntry) HistoryEntry {
	if last, ok := h.Last(); ok && e.timestamp.Before(last.timestamp) {
		e.timestamp = last.timestamp
	}
	h.entries = append(h.entries, e)
	return e
}
