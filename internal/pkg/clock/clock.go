package clock

import (
	"time"
)

// Clock is the single source of "current time in the reference timezone".
// Every component that needs wall time or day arithmetic goes through it;
// nothing else in the codebase loads locations or does offset math.
type Clock interface {
	// Now returns the current time in the reference timezone.
	Now() time.Time

	// Today returns the current civil day as "2006-01-02".
	Today() string

	// Location returns the reference timezone.
	Location() *time.Location
}

// MinutesOfDay returns minutes elapsed since local midnight for t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DayOf formats a time as its civil day string.
func DayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// At builds a timestamp on the given civil day at minuteOfDay, in loc.
func At(day string, minuteOfDay int, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(minuteOfDay) * time.Minute), nil
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock creates a Clock pinned to the named timezone.
// Falls back to UTC if the name cannot be loaded.
func NewSystemClock(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *systemClock) Today() string {
	return DayOf(c.Now())
}

func (c *systemClock) Location() *time.Location {
	return c.loc
}
