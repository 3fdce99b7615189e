package attendance

import (
	"time"
)

const (
	StatusPresent = "present"
	StatusPartial = "partial"

	LocationOffice = "office"
	LocationHome   = "home"
)

// Record is one user's attendance for one calendar day. It owns the
// ordered session list, the break list, and the derived work summary.
// Created on the first punch-in of the day; frozen once the day ends.
type Record struct {
	ID           string
	UserID       string
	Date         string // civil day, "2006-01-02"
	WorkLocation string // fixed by the first session of the day
	Status       string
	Sessions     []Session
	Breaks       []Break
	Summary      WorkSummary
	Frozen       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one check-in/check-out pair. CheckOutAt nil means the
// session is still open; at most one open session exists per record.
type Session struct {
	ID           string
	CheckInAt    time.Time
	CheckInLat   float64
	CheckInLng   float64
	IsLate       bool
	LateMinutes  int
	CheckOutAt   *time.Time
	CheckOutLat  *float64
	CheckOutLng  *float64
	IsEarly      bool
	EarlyMinutes int
}

// Break is one break inside an open session. EndAt nil means ongoing;
// at most one ongoing break exists per record.
type Break struct {
	ID              string
	Type            string
	StartAt         time.Time
	EndAt           *time.Time
	DurationMinutes int
}

// WorkSummary is derived from the sessions and breaks, recomputed after
// every mutation. Hours are decimal.
type WorkSummary struct {
	TotalHours     float64
	BreakMinutes   int
	EffectiveHours float64
	OvertimeHours  float64
	UndertimeHours float64
}

// OpenSession returns a pointer to the record's open session, or nil.
func (r *Record) OpenSession() *Session {
	for i := range r.Sessions {
		if r.Sessions[i].CheckOutAt == nil {
			return &r.Sessions[i]
		}
	}
	return nil
}

// OpenBreak returns a pointer to the record's ongoing break, or nil.
func (r *Record) OpenBreak() *Break {
	for i := range r.Breaks {
		if r.Breaks[i].EndAt == nil {
			return &r.Breaks[i]
		}
	}
	return nil
}

// ComputeWorkSummary derives the work summary from closed sessions and
// closed breaks. Open sessions and ongoing breaks contribute nothing
// until they close. standardHours is the length of a full workday.
func ComputeWorkSummary(sessions []Session, breaks []Break, standardHours float64) WorkSummary {
	var worked time.Duration
	for _, s := range sessions {
		if s.CheckOutAt == nil {
			continue
		}
		worked += s.CheckOutAt.Sub(s.CheckInAt)
	}

	breakMinutes := 0
	for _, b := range breaks {
		if b.EndAt == nil {
			continue
		}
		breakMinutes += b.DurationMinutes
	}

	total := worked.Minutes() / 60.0
	effective := total - float64(breakMinutes)/60.0
	if effective < 0 {
		effective = 0
	}

	summary := WorkSummary{
		TotalHours:     total,
		BreakMinutes:   breakMinutes,
		EffectiveHours: effective,
	}
	if effective > standardHours {
		summary.OvertimeHours = effective - standardHours
	} else {
		summary.UndertimeHours = standardHours - effective
	}
	return summary
}
