package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultSlots is the canonical checkpoint table.
var DefaultSlots = []string{"10:30", "12:00", "13:30", "16:00", "17:30"}

// DefaultWindowLeadMinutes is how long before a slot its acceptance
// window opens. The slot minute itself is the deadline for escalation
// timing; the slot stays the submission target past its deadline until
// the next window opens.
const DefaultWindowLeadMinutes = 60

// Window is one acceptance window bound to a canonical slot.
// OpenMinute and Deadline are inclusive, in minutes since midnight.
// Deadline is the on-time cutoff, not the end of targetability: a
// minute after it still resolves to this slot until the next window
// opens, so a late submit reaches the entry it was meant for instead
// of vanishing into a gap.
type Window struct {
	Slot       string
	OpenMinute int
	Deadline   int
}

// SlotTable maps a time-of-day to its canonical slot. It is immutable
// after construction and safe for concurrent use.
type SlotTable struct {
	windows []Window
}

// ParseSlotMinute converts "HH:MM" to minutes since midnight.
func ParseSlotMinute(slot string) (int, error) {
	parts := strings.Split(slot, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid slot %q: expected HH:MM", slot)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid slot %q: bad hour", slot)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid slot %q: bad minute", slot)
	}
	return h*60 + m, nil
}

// NewSlotTable builds a slot table where every slot's window opens
// leadMinutes before the slot and its deadline is the slot minute.
// Windows must not overlap.
func NewSlotTable(slots []string, leadMinutes int) (*SlotTable, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("slot table requires at least one slot")
	}
	if leadMinutes <= 0 {
		return nil, fmt.Errorf("window lead must be positive, got %d", leadMinutes)
	}

	windows := make([]Window, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		if _, dup := seen[slot]; dup {
			return nil, fmt.Errorf("duplicate slot %q", slot)
		}
		seen[slot] = struct{}{}

		deadline, err := ParseSlotMinute(slot)
		if err != nil {
			return nil, err
		}
		open := deadline - leadMinutes
		if open < 0 {
			open = 0
		}
		windows = append(windows, Window{Slot: slot, OpenMinute: open, Deadline: deadline})
	}

	sort.Slice(windows, func(i, j int) bool { return windows[i].Deadline < windows[j].Deadline })

	for i := 1; i < len(windows); i++ {
		if windows[i].OpenMinute <= windows[i-1].Deadline {
			return nil, fmt.Errorf("windows for %q and %q overlap", windows[i-1].Slot, windows[i].Slot)
		}
	}

	return &SlotTable{windows: windows}, nil
}

// MustSlotTable is NewSlotTable that panics; for wiring with known-good config.
func MustSlotTable(slots []string, leadMinutes int) *SlotTable {
	t, err := NewSlotTable(slots, leadMinutes)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the slot targeted at minuteOfDay, or false before the
// first window opens. Each slot owns the span from its open minute up to
// the minute before the next window opens; the last slot owns the rest
// of the day. With defaults, 10:59 still targets 10:30 while 11:00
// targets 12:00.
func (t *SlotTable) Resolve(minuteOfDay int) (string, bool) {
	for i, w := range t.windows {
		if minuteOfDay < w.OpenMinute {
			return "", false
		}
		closeMinute := 24*60 - 1
		if i+1 < len(t.windows) {
			closeMinute = t.windows[i+1].OpenMinute - 1
		}
		if minuteOfDay <= closeMinute {
			return w.Slot, true
		}
	}
	return "", false
}

// Deadline returns the closing minute of the slot's window.
func (t *SlotTable) Deadline(slot string) (int, bool) {
	for _, w := range t.windows {
		if w.Slot == slot {
			return w.Deadline, true
		}
	}
	return 0, false
}

// Slots returns the canonical slots in chronological order.
func (t *SlotTable) Slots() []string {
	out := make([]string, len(t.windows))
	for i, w := range t.windows {
		out[i] = w.Slot
	}
	return out
}

// Windows returns the full window list in chronological order.
func (t *SlotTable) Windows() []Window {
	out := make([]Window, len(t.windows))
	copy(out, t.windows)
	return out
}
