package model

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in the user's local time, formatted YYYY-MM-DD.
// The zero value means "no date".
type Date string

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate validates s as a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(s), nil
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == "" }

func (d Date) String() string { return string(d) }

// midnight parses d as UTC midnight so day arithmetic ignores DST.
func (d Date) midnight() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date(d.midnight().AddDate(0, 0, n).Format(dateLayout))
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.midnight().Weekday() }

// WeekStart returns the Sunday that starts d's week.
func (d Date) WeekStart() Date {
	return d.AddDays(-int(d.Weekday()))
}

// SameWeek reports whether a and b fall in the same Sunday-started week.
func SameWeek(a, b Date) bool {
	return a.WeekStart() == b.WeekStart()
}

// DaysBetween returns the number of days from a to b (b - a).
func DaysBetween(a, b Date) int {
	return int(b.midnight().Sub(a.midnight()).Hours() / 24)
}
