package ledger

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"time"
)

// Appender durably records a posted entry. Journal.Post calls it while
// holding the write lock, before the in-memory append.
type Appender interface {
	AppendEntry(ctx context.Context, entry JournalEntry) error
}

// Journal is the append-only log of posted entries. Post is serialized;
// readers take a prefix of the log and never block the writer for longer
// than it takes to copy a slice header.
type Journal struct {
	mu       sync.RWMutex
	entries  []JournalEntry
	appender Appender
}

// NewJournal creates an empty journal. appender may be nil.
func NewJournal(appender Appender) *Journal {
	return &Journal{appender: appender}
}

// Post assigns the next sequence id to an already-validated entry and
// appends it. It does not re-validate.
func (j *Journal) Post(ctx context.Context, entry JournalEntry) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry = entry.clone()
	entry.ID = int64(len(j.entries)) + 1

	if j.appender != nil {
		if err := j.appender.AppendEntry(ctx, entry); err != nil {
			return 0, fmt.Errorf("append entry %d: %w", entry.ID, err)
		}
	}
	j.entries = append(j.entries, entry)
	return entry.ID, nil
}

// restore appends entries read back from durable storage, keeping their ids.
func (j *Journal) restore(entries []JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range entries {
		if want := int64(len(j.entries)) + 1; e.ID != want {
			return fmt.Errorf("restore journal: entry id %d out of sequence (want %d)", e.ID, want)
		}
		j.entries = append(j.entries, e.clone())
	}
	return nil
}

// prefix returns the posted entries as of now. Entries are never modified
// in place, so the returned slice is safe to read without the lock.
func (j *Journal) prefix() []JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.entries[:len(j.entries):len(j.entries)]
}

func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Entry returns a posted entry by id.
func (j *Journal) Entry(id int64) (JournalEntry, error) {
	entries := j.prefix()
	if id < 1 || id > int64(len(entries)) {
		return JournalEntry{}, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	return entries[id-1].clone(), nil
}

// Entries yields all posted entries in posting order.
func (j *Journal) Entries() iter.Seq[JournalEntry] {
	return func(yield func(JournalEntry) bool) {
		for _, e := range j.prefix() {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

// EntriesFor yields, in posting order, every posted entry with a line on
// the account.
func (j *Journal) EntriesFor(code string) iter.Seq[JournalEntry] {
	return func(yield func(JournalEntry) bool) {
		for _, e := range j.prefix() {
			if e.Touches(code) && !yield(e.clone()) {
				return
			}
		}
	}
}

// BalanceOf returns the raw balance (debits minus credits) of an account
// over all posted entries. Unused accounts have a zero balance.
func (j *Journal) BalanceOf(code string) int64 {
	var balance int64
	for _, e := range j.prefix() {
		balance += e.AmountFor(code)
	}
	return balance
}

// BalanceAsOf is BalanceOf restricted to entries dated on or before asOf.
func (j *Journal) BalanceAsOf(code string, asOf time.Time) int64 {
	cutoff := Day(asOf)
	var balance int64
	for _, e := range j.prefix() {
		if !e.Date.After(cutoff) {
			balance += e.AmountFor(code)
		}
	}
	return balance
}
