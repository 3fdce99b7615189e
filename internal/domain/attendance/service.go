package attendance

import (
	"context"
)

// Service defines business logic for the session tracker.
type Service interface {
	// PunchIn opens a new session. On the day's first session it also
	// classifies the work location and seeds the checkpoint ledger.
	PunchIn(ctx context.Context, userID string, req PunchInRequest) (RecordResponse, error)

	// PunchOut closes the open session and recomputes the work summary.
	PunchOut(ctx context.Context, userID string, req PunchOutRequest) (RecordResponse, error)

	// BreakStart opens a break inside the open session.
	BreakStart(ctx context.Context, userID string, req BreakStartRequest) (RecordResponse, error)

	// BreakEnd closes the ongoing break and recomputes the work summary.
	BreakEnd(ctx context.Context, userID string) (RecordResponse, error)

	// GetToday retrieves the caller's record for the current day.
	GetToday(ctx context.Context, userID string) (RecordResponse, error)

	// GetMyHistory retrieves the caller's paged history.
	GetMyHistory(ctx context.Context, userID string, filter HistoryFilter) (ListRecordsResponse, error)

	// ListByDate retrieves every record for a day (manager view).
	ListByDate(ctx context.Context, date string) ([]RecordResponse, error)
}
