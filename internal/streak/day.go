package streak

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DayLayout = "2006-01-02"

// Day is a calendar date. It is stored as UTC midnight so that two days always
// differ by an exact multiple of 24h, independent of the zone that produced them.
type Day struct {
	t time.Time
}

// NewDay builds a Day from its calendar parts.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t as observed in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return NewDay(y, m, d)
}

// FromStored converts a persisted DATE value back into a Day. Drivers may hand the
// value back in the server's local zone, so only the wall-clock date is kept.
func FromStored(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

func (d Day) IsZero() bool { return d.t.IsZero() }

// Time is the value persisted for this day.
func (d Day) Time() time.Time { return d.t }

func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

func (d Day) String() string { return d.t.Format(DayLayout) }

// DaysBetween returns to - from in whole days. It is the only place where day
// distances are computed; the write path, the read path and the sweep all use it.
func DaysBetween(from, to Day) int {
	return int(to.t.Sub(from.t) / (24 * time.Hour))
}

// Calendar turns instants into days using one fixed timezone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar loads the named IANA zone. An empty name means UTC.
func NewCalendar(zone string) (*Calendar, error) {
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load streak timezone %q: %w", zone, err)
	}
	return &Calendar{loc: loc, now: time.Now}, nil
}

// NewFixedCalendar returns a calendar whose clock always reads now. Used by jobs
// that replay a given day and by tests.
func NewFixedCalendar(loc *time.Location, now time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: func() time.Time { return now }}
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Now() time.Time { return c.now() }

func (c *Calendar) Today() Day { return DayOf(c.now(), c.loc) }

func (c *Calendar) DayOf(t time.Time) Day { return DayOf(t, c.loc) }
