package progress

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar resolves instants to calendar days and Monday-start weeks in
// one timezone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads tz (IANA name). Empty means UTC.
func NewCalendar(tz string) (Calendar, error) {
	if tz == "" {
		return Calendar{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Calendar{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return Calendar{loc: loc}, nil
}

func (c Calendar) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) startOfDay(t time.Time) time.Time {
	l := t.In(c.location())
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, c.location())
}

// Day formats t as its calendar day.
func (c Calendar) Day(t time.Time) string {
	return c.startOfDay(t).Format(dateLayout)
}

// WeekStart returns the Monday of t's week.
func (c Calendar) WeekStart(t time.Time) string {
	d := c.startOfDay(t)
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDate(0, 0, -(weekday - 1)).Format(dateLayout)
}

// DaysBetween returns the whole calendar days from day a to day b. Both
// are "2006-01-02" strings.
func (c Calendar) DaysBetween(a, b string) (int, error) {
	ta, err := time.ParseInLocation(dateLayout, a, c.location())
	if err != nil {
		return 0, err
	}
	tb, err := time.ParseInLocation(dateLayout, b, c.location())
	if err != nil {
		return 0, err
	}
	// Calendar arithmetic in UTC sidesteps DST-length days.
	ua := time.Date(ta.Year(), ta.Month(), ta.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(tb.Year(), tb.Month(), tb.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24), nil
}
