package task

import (
	"context"
	"time"
)

// Repository defines data access for checkpoint ledgers. The store must
// give read-your-writes per (user, day) key.
type Repository interface {
	// CreateEntries inserts pending entries, silently skipping any
	// (user, date, slot) that already exists. This is what makes seeding
	// idempotent.
	CreateEntries(ctx context.Context, entries []Entry) error

	// GetEntry retrieves the entry for one user/day/slot.
	// Returns ErrEntryNotFound if it does not exist.
	GetEntry(ctx context.Context, userID, date, slot string) (Entry, error)

	// ListByUserAndDate retrieves one user's ledger, ordered by slot.
	ListByUserAndDate(ctx context.Context, userID, date string) ([]Entry, error)

	// ListByDate retrieves all entries for a day, optionally narrowed
	// to one slot, ordered by user then slot.
	ListByDate(ctx context.Context, date string, slot *string) ([]Entry, error)

	// ListOpenBySlot retrieves entries at date/slot still in a
	// non-terminal status the sweep may act on.
	ListOpenBySlot(ctx context.Context, date, slot string, statuses []EntryStatus) ([]Entry, error)

	// Transition is a compare-then-set: it moves the entry to the new
	// status only if its current persisted status is one of from.
	// committed is false when another writer got there first; the caller
	// re-reads to find out what won. Never blind-overwrites.
	Transition(ctx context.Context, id string, from []EntryStatus, to EntryStatus, at time.Time, description *string) (committed bool, err error)
}
