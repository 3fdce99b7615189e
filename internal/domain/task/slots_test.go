package task

import (
	"testing"
)

func defaultTable(t *testing.T) *SlotTable {
	t.Helper()
	table, err := NewSlotTable(DefaultSlots, DefaultWindowLeadMinutes)
	if err != nil {
		t.Fatalf("NewSlotTable: %v", err)
	}
	return table
}

func TestParseSlotMinute(t *testing.T) {
	cases := []struct {
		slot    string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"10:30", 630, false},
		{"17:30", 1050, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"10:60", 0, true},
		{"1030", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseSlotMinute(c.slot)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseSlotMinute(%q) should fail", c.slot)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSlotMinute(%q): %v", c.slot, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseSlotMinute(%q) = %d, want %d", c.slot, got, c.want)
		}
	}
}

// Default table: windows open at 09:30, 11:00, 12:30, 15:00, 16:30 with
// deadlines 10:30, 12:00, 13:30, 16:00, 17:30. A slot stays the target
// past its deadline until the next window opens; the last slot owns the
// rest of the day. Every divide between neighbors is exercised.
func TestResolveBoundaries(t *testing.T) {
	table := defaultTable(t)

	cases := []struct {
		minute   int
		wantSlot string
		wantOK   bool
	}{
		// Before the first window opens.
		{0, "", false},
		{9*60 + 29, "", false},
		// 10:30 slot: opens 09:30, deadline 10:30, targetable to 10:59.
		{9*60 + 30, "10:30", true},
		{10 * 60, "10:30", true},
		{10*60 + 30, "10:30", true},
		{10*60 + 31, "10:30", true},
		// The 10:59 vs 11:00 divide.
		{10*60 + 59, "10:30", true},
		{11 * 60, "12:00", true},
		{12 * 60, "12:00", true},
		// 12:29 vs 12:30 divide.
		{12*60 + 29, "12:00", true},
		{12*60 + 30, "13:30", true},
		{13*60 + 30, "13:30", true},
		// 14:59 vs 15:00 divide.
		{14*60 + 59, "13:30", true},
		{15 * 60, "16:00", true},
		{16 * 60, "16:00", true},
		// 16:29 vs 16:30 divide.
		{16*60 + 29, "16:00", true},
		{16*60 + 30, "17:30", true},
		{17*60 + 30, "17:30", true},
		// The last slot owns the rest of the day.
		{17*60 + 31, "17:30", true},
		{23*60 + 59, "17:30", true},
	}
	for _, c := range cases {
		slot, ok := table.Resolve(c.minute)
		if ok != c.wantOK || slot != c.wantSlot {
			t.Errorf("Resolve(%02d:%02d) = (%q, %v), want (%q, %v)",
				c.minute/60, c.minute%60, slot, ok, c.wantSlot, c.wantOK)
		}
	}
}

// Every minute from the first open to end of day resolves to exactly one
// slot, and the spans tile without overlap.
func TestResolveExhaustiveNonOverlap(t *testing.T) {
	table := defaultTable(t)

	perSlot := make(map[string]int)
	for minute := 0; minute < 24*60; minute++ {
		if slot, ok := table.Resolve(minute); ok {
			perSlot[slot]++
		}
	}

	// Each slot owns open..nextOpen-1; the last owns open..23:59.
	want := map[string]int{
		"10:30": 90,  // 09:30..10:59
		"12:00": 90,  // 11:00..12:29
		"13:30": 150, // 12:30..14:59
		"16:00": 90,  // 15:00..16:29
		"17:30": 450, // 16:30..23:59
	}
	for slot, minutes := range want {
		if got := perSlot[slot]; got != minutes {
			t.Errorf("slot %s accepts %d minutes, want %d", slot, got, minutes)
		}
	}
}

func TestDeadline(t *testing.T) {
	table := defaultTable(t)

	d, ok := table.Deadline("10:30")
	if !ok || d != 630 {
		t.Errorf("Deadline(10:30) = (%d, %v), want (630, true)", d, ok)
	}
	if _, ok := table.Deadline("11:11"); ok {
		t.Error("Deadline of unknown slot should report false")
	}
}

func TestNewSlotTableRejectsBadConfig(t *testing.T) {
	if _, err := NewSlotTable(nil, 60); err == nil {
		t.Error("empty slot list should be rejected")
	}
	if _, err := NewSlotTable([]string{"10:30", "10:30"}, 60); err == nil {
		t.Error("duplicate slots should be rejected")
	}
	if _, err := NewSlotTable([]string{"25:00"}, 60); err == nil {
		t.Error("malformed slot should be rejected")
	}
	if _, err := NewSlotTable([]string{"10:00", "10:30"}, 60); err == nil {
		t.Error("overlapping windows should be rejected")
	}
	if _, err := NewSlotTable([]string{"10:30"}, 0); err == nil {
		t.Error("non-positive lead should be rejected")
	}
}

func TestSlotsAreChronological(t *testing.T) {
	table := MustSlotTable([]string{"16:00", "10:30", "12:00"}, 60)
	slots := table.Slots()
	want := []string{"10:30", "12:00", "16:00"}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("Slots() = %v, want %v", slots, want)
		}
	}
}
