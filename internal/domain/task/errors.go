package task

import "errors"

// Task ledger domain errors
var (
	// Submit errors
	ErrOutOfWindow      = errors.New("no checkpoint window is open right now")
	ErrEntryNotFound    = errors.New("no checkpoint entry found for this slot")
	ErrAlreadySubmitted = errors.New("checkpoint update has already been submitted")
	ErrAlreadyEscalated = errors.New("checkpoint has already been escalated")

	// General errors
	ErrLedgerNotFound = errors.New("no checkpoint ledger found for this day")
)
