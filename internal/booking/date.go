package booking

import (
	"cmp"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Date is a calendar day without a time-of-day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}

	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Compare(o Date) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// At resolves a time-of-day on d. EndOfDay resolves to midnight of the next day.
func (d Date) At(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, int(c), 0, 0, loc)
}

// Clock is a time-of-day in minutes after midnight.
type Clock int

const EndOfDay Clock = 24 * 60

// ParseClock accepts HH:MM, HH:MM:SS and the 24:00 end-of-day marker.
func ParseClock(s string) (Clock, error) {
	if s == "24:00" || s == "24:00:00" {
		return EndOfDay, nil
	}

	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		var err2 error
		t, err2 = time.Parse("15:04:05", s)
		if err2 != nil {
			return 0, err
		}
	}

	return Clock(t.Hour()*60 + t.Minute()), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}
