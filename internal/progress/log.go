// Package progress keeps the append-only status history attached to a claim.
// Entries are never edited or removed. Any status may follow any other; the
// log exists for the audit trail, not to enforce a workflow.
package progress

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidEntry indicates an entry without a status or date.
	ErrInvalidEntry = errors.New("progress: entry requires status and date")
	// ErrDuplicateEntry indicates an entry whose ID is already in the log.
	ErrDuplicateEntry = errors.New("progress: entry already recorded")
)

// Entry is one immutable status change.
type Entry struct {
	ID     uuid.UUID `json:"id"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	Author string    `json:"author,omitempty"`
}

// NewEntry builds an entry with a fresh ID.
func NewEntry(date time.Time, status, note, author string) Entry {
	return Entry{
		ID:     uuid.New(),
		Date:   date,
		Status: strings.TrimSpace(status),
		Note:   strings.TrimSpace(note),
		Author: strings.TrimSpace(author),
	}
}

// Log is an ordered, append-only sequence of entries. The zero value is an
// empty log ready for use.
type Log struct {
	entries []Entry
}

// FromEntries rebuilds a log from stored entries in their stored order.
func FromEntries(entries []Entry) Log {
	return Log{entries: append([]Entry(nil), entries...)}
}

// Append adds e to the end of the log. An entry without an ID is given one.
func (l *Log) Append(e Entry) (Entry, error) {
	if strings.TrimSpace(e.Status) == "" || e.Date.IsZero() {
		return Entry{}, ErrInvalidEntry
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	for _, existing := range l.entries {
		if existing.ID == e.ID {
			return Entry{}, ErrDuplicateEntry
		}
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// Entries returns a copy of the entries in append order.
func (l Log) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l Log) Len() int {
	return len(l.entries)
}

// MostRecent returns the entry with the latest date. Contributors' clocks are
// not synchronised, so append order says nothing about recency; among entries
// sharing the latest date the one appended last wins.
func (l Log) MostRecent() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	latest := l.entries[0]
	for _, e := range l.entries[1:] {
		if !e.Date.Before(latest.Date) {
			latest = e
		}
	}
	return latest, true
}

// CurrentStatus returns the status of the most recent entry, or fallback.
func (l Log) CurrentStatus(fallback string) string {
	if e, ok := l.MostRecent(); ok {
		return e.Status
	}
	return fallback
}

// MarshalJSON encodes the log as a JSON array.
func (l Log) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON decodes a JSON array of entries.
func (l *Log) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = FromEntries(entries)
	return nil
}
