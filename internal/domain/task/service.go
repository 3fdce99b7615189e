package task

import (
	"context"
	"time"
)

// Service defines business logic for the checkpoint compliance ledger.
type Service interface {
	// SeedDay ensures a pending entry exists for every canonical slot
	// whose deadline is still ahead of now. Idempotent: re-invocation
	// never duplicates an already-seeded slot.
	SeedDay(ctx context.Context, userID string, date string, now time.Time) error

	// SubmitUpdate resolves the current checkpoint window and marks its
	// entry submitted, storing the description and timestamp.
	SubmitUpdate(ctx context.Context, userID string, req SubmitUpdateRequest) (EntryResponse, error)

	// Sweep applies overdue transitions to every open entry at the slot
	// on now's day: warning_sent past the warn threshold, escalated past
	// the escalate threshold. Idempotent and monotonic; failures on one
	// entry never abort the rest.
	Sweep(ctx context.Context, slot string, now time.Time) (SweepResult, error)

	// RemindSlot emits a "slot reminder due" event for every pending
	// entry at the slot on now's day. Fired when the slot's acceptance
	// window opens.
	RemindSlot(ctx context.Context, slot string, now time.Time) (int, error)

	// GetMyLedger retrieves one user's ledger for a day.
	GetMyLedger(ctx context.Context, userID string, date string) (LedgerResponse, error)

	// ListLedgers retrieves all entries for a day, optionally narrowed
	// to a slot (manager compliance view).
	ListLedgers(ctx context.Context, filter LedgerFilter) ([]LedgerResponse, error)

	// Table exposes the canonical slot table the ledger runs on.
	Table() *SlotTable
}
