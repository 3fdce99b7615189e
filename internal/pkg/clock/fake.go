package clock

import (
	"sync"
	"time"
)

// Fake is a settable Clock for tests. Safe for concurrent use so
// scheduler tests can advance time while jobs read it.
type Fake struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFake creates a Fake pinned at the given time.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// NewFakeAt creates a Fake at day "2006-01-02" and clock "15:04" in UTC.
// Panics on malformed input; it is test-only.
func NewFakeAt(day, hhmm string) *Fake {
	t, err := time.Parse("2006-01-02 15:04", day+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return &Fake{now: t}
}

func (f *Fake) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

func (f *Fake) Today() string {
	return DayOf(f.Now())
}

func (f *Fake) Location() *time.Location {
	return f.Now().Location()
}

// Set moves the fake to an absolute time.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// SetClock moves the fake to "15:04" on its current day.
func (f *Fake) SetClock(hhmm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, err := time.Parse("2006-01-02 15:04", DayOf(f.now)+" "+hhmm)
	if err != nil {
		panic(err)
	}
	f.now = t.In(f.now.Location())
}

// Advance moves the fake forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
