package attendance

import (
	"context"
)

// Repository defines data access for attendance records. The record is
// the unit of contention, scoped per (user, day); the store must give
// read-your-writes per key.
type Repository interface {
	// Create creates a new attendance record with its first session.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByUserAndDate retrieves the record for one user on one day.
	// Returns ErrRecordNotFound if none exists.
	GetByUserAndDate(ctx context.Context, userID, date string) (Record, error)

	// Update persists the full record state (sessions, breaks, summary,
	// status) in one write.
	Update(ctx context.Context, record Record) error

	// ListByUser retrieves one user's history, newest day first.
	ListByUser(ctx context.Context, userID string, filter HistoryFilter) ([]Record, int64, error)

	// ListByDate retrieves every record for a day (manager view).
	ListByDate(ctx context.Context, date string) ([]Record, error)

	// ListStaleOpen retrieves unfrozen records from days strictly before
	// the given day that still hold an open session.
	ListStaleOpen(ctx context.Context, beforeDate string) ([]Record, error)
}
