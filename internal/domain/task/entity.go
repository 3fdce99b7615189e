package task

import (
	"time"
)

// EntryStatus is the compliance state of one scheduled checkpoint entry.
type EntryStatus string

const (
	StatusPending     EntryStatus = "pending"
	StatusSubmitted   EntryStatus = "submitted"
	StatusWarningSent EntryStatus = "warning_sent"
	StatusEscalated   EntryStatus = "escalated"
)

// IsTerminal reports whether the status is absorbing: once stored, no
// writer may transition the entry away from it.
func (s EntryStatus) IsTerminal() bool {
	return s == StatusSubmitted || s == StatusEscalated
}

// Entry is one scheduled checkpoint for one user on one day.
// Transitions are monotonic: pending -> submitted, or
// pending -> warning_sent -> escalated.
type Entry struct {
	ID          string
	UserID      string
	Date        string // civil day, "2006-01-02"
	Slot        string // canonical "HH:MM"
	Status      EntryStatus
	Description string
	SubmittedAt *time.Time
	WarnedAt    *time.Time
	EscalatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
