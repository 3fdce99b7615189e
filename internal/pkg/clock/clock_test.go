package clock

import (
	"testing"
	"time"
)

func TestMinutesOfDay(t *testing.T) {
	cases := []struct {
		hhmm string
		want int
	}{
		{"00:00", 0},
		{"00:01", 1},
		{"09:05", 545},
		{"10:30", 630},
		{"17:30", 1050},
		{"23:59", 1439},
	}
	for _, c := range cases {
		tm, err := time.Parse("15:04", c.hhmm)
		if err != nil {
			t.Fatalf("parse %q: %v", c.hhmm, err)
		}
		if got := MinutesOfDay(tm); got != c.want {
			t.Errorf("MinutesOfDay(%s) = %d, want %d", c.hhmm, got, c.want)
		}
	}
}

func TestAt(t *testing.T) {
	got, err := At("2025-03-10", 630, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 10, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At() = %v, want %v", got, want)
	}

	if _, err := At("10-03-2025", 0, time.UTC); err == nil {
		t.Error("At() with malformed day should fail")
	}
}

func TestFakeSetAndAdvance(t *testing.T) {
	f := NewFakeAt("2025-03-10", "09:05")
	if f.Today() != "2025-03-10" {
		t.Errorf("Today() = %s, want 2025-03-10", f.Today())
	}
	if got := MinutesOfDay(f.Now()); got != 545 {
		t.Errorf("MinutesOfDay(Now()) = %d, want 545", got)
	}

	f.Advance(96 * time.Minute)
	if got := MinutesOfDay(f.Now()); got != 641 {
		t.Errorf("after Advance: MinutesOfDay = %d, want 641", got)
	}

	f.SetClock("17:40")
	if got := MinutesOfDay(f.Now()); got != 1060 {
		t.Errorf("after SetClock: MinutesOfDay = %d, want 1060", got)
	}
	if f.Today() != "2025-03-10" {
		t.Errorf("SetClock must not change the day, got %s", f.Today())
	}
}

func TestSystemClockFallsBackToUTC(t *testing.T) {
	c := NewSystemClock("Not/AZone")
	if c.Location() != time.UTC {
		t.Errorf("unknown timezone should fall back to UTC, got %v", c.Location())
	}
}
