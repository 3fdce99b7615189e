package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrActiveSessionExists = errors.New("an open session already exists, punch out first")
	ErrNoActiveSession     = errors.New("no open session, punch in first")

	// Break errors
	ErrOngoingBreakExists = errors.New("a break is already ongoing")
	ErrNoActiveBreak      = errors.New("no ongoing break to end")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrRecordFrozen   = errors.New("attendance record is frozen, the day has ended")
)
