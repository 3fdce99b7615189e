package attendance

import (
	"math"
	"testing"
	"time"
)

func ts(t *testing.T, hhmm string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func tsPtr(t *testing.T, hhmm string) *time.Time {
	v := ts(t, hhmm)
	return &v
}

func TestComputeWorkSummaryNoBreaksEffectiveEqualsTotal(t *testing.T) {
	sessionSets := [][]Session{
		{{CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "17:00")}},
		{
			{CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "12:00")},
			{CheckInAt: ts(t, "13:00"), CheckOutAt: tsPtr(t, "17:30")},
		},
		{
			{CheckInAt: ts(t, "08:45"), CheckOutAt: tsPtr(t, "10:15")},
			{CheckInAt: ts(t, "10:30"), CheckOutAt: tsPtr(t, "13:00")},
			{CheckInAt: ts(t, "14:00"), CheckOutAt: tsPtr(t, "18:05")},
		},
		nil,
	}
	for i, sessions := range sessionSets {
		s := ComputeWorkSummary(sessions, nil, 8.0)
		if s.EffectiveHours != s.TotalHours {
			t.Errorf("case %d: effective %v != total %v without breaks", i, s.EffectiveHours, s.TotalHours)
		}
		if s.BreakMinutes != 0 {
			t.Errorf("case %d: break minutes = %d, want 0", i, s.BreakMinutes)
		}
	}
}

// Punch-in 09:05, punch-out 17:40, one 30-minute break.
func TestComputeWorkSummaryFullDay(t *testing.T) {
	sessions := []Session{{CheckInAt: ts(t, "09:05"), CheckOutAt: tsPtr(t, "17:40")}}
	breaks := []Break{{Type: "lunch", StartAt: ts(t, "12:30"), EndAt: tsPtr(t, "13:00"), DurationMinutes: 30}}

	s := ComputeWorkSummary(sessions, breaks, 8.0)

	const eps = 0.001
	if math.Abs(s.TotalHours-8.5833) > eps {
		t.Errorf("total hours = %v, want ~8.583", s.TotalHours)
	}
	if s.BreakMinutes != 30 {
		t.Errorf("break minutes = %d, want 30", s.BreakMinutes)
	}
	if math.Abs(s.EffectiveHours-8.0833) > eps {
		t.Errorf("effective hours = %v, want ~8.083", s.EffectiveHours)
	}
	if math.Abs(s.OvertimeHours-0.0833) > eps {
		t.Errorf("overtime = %v, want ~0.083", s.OvertimeHours)
	}
	if s.UndertimeHours != 0 {
		t.Errorf("undertime = %v, want 0", s.UndertimeHours)
	}
}

func TestComputeWorkSummaryUndertime(t *testing.T) {
	sessions := []Session{{CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "15:00")}}
	s := ComputeWorkSummary(sessions, nil, 8.0)

	if s.OvertimeHours != 0 {
		t.Errorf("overtime = %v, want 0", s.OvertimeHours)
	}
	if math.Abs(s.UndertimeHours-2.0) > 0.001 {
		t.Errorf("undertime = %v, want 2.0", s.UndertimeHours)
	}
}

// Open sessions and ongoing breaks contribute nothing.
func TestComputeWorkSummaryIgnoresOpen(t *testing.T) {
	sessions := []Session{
		{CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "12:00")},
		{CheckInAt: ts(t, "13:00")}, // still open
	}
	breaks := []Break{
		{Type: "coffee", StartAt: ts(t, "10:00"), EndAt: tsPtr(t, "10:15"), DurationMinutes: 15},
		{Type: "lunch", StartAt: ts(t, "13:30")}, // ongoing
	}
	s := ComputeWorkSummary(sessions, breaks, 8.0)

	if math.Abs(s.TotalHours-3.0) > 0.001 {
		t.Errorf("total hours = %v, want 3.0", s.TotalHours)
	}
	if s.BreakMinutes != 15 {
		t.Errorf("break minutes = %d, want 15", s.BreakMinutes)
	}
}

func TestOpenSessionAndOpenBreak(t *testing.T) {
	r := Record{
		Sessions: []Session{
			{ID: "s1", CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "12:00")},
			{ID: "s2", CheckInAt: ts(t, "13:00")},
		},
		Breaks: []Break{
			{ID: "b1", StartAt: ts(t, "10:00"), EndAt: tsPtr(t, "10:15")},
			{ID: "b2", StartAt: ts(t, "13:30")},
		},
	}

	if open := r.OpenSession(); open == nil || open.ID != "s2" {
		t.Errorf("OpenSession() = %+v, want s2", open)
	}
	if open := r.OpenBreak(); open == nil || open.ID != "b2" {
		t.Errorf("OpenBreak() = %+v, want b2", open)
	}

	closed := Record{Sessions: []Session{{ID: "s1", CheckInAt: ts(t, "09:00"), CheckOutAt: tsPtr(t, "17:00")}}}
	if closed.OpenSession() != nil {
		t.Error("fully closed record should have no open session")
	}
	if closed.OpenBreak() != nil {
		t.Error("record without breaks should have no open break")
	}
}
