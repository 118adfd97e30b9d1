// Package dateutils provides calendar-date operations. A calendar date is a
// time.Time at midnight UTC; no timezone conversion is ever applied to a
// stored date.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted or produced by the application.
const (
	DateLayoutISO   = "2006-01-02"
	MonthLayoutISO  = "2006-01"
	DateLayoutEU    = "02.01.2006"
	DateLayoutSlash = "02/01/2006"
)

// inputFormats are tried in order by ParseDate.
var inputFormats = []string{
	DateLayoutISO,
	DateLayoutEU,
	DateLayoutSlash,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the time-of-day and location of t, keeping the calendar
// date as written.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar date in the local zone of now.
func Today(now time.Time) time.Time {
	return Normalize(now)
}

// ParseISODate parses a YYYY-MM-DD string into a calendar date.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayoutISO, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}
	return t, nil
}

// MustParseISODate is ParseISODate that panics on error. Intended for tests
// and constants.
func MustParseISODate(s string) time.Time {
	t, err := ParseISODate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate accepts the ISO layout plus the common European bank-export
// layouts and returns the calendar date.
func ParseDate(s string) (time.Time, error) {
	clean := strings.Join(strings.Fields(s), " ")
	for _, layout := range inputFormats {
		if t, err := time.Parse(layout, clean); err == nil {
			return Normalize(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ParseMonth parses a YYYY-MM string and returns the first day of that month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayoutISO, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse month %q: %w", s, err)
	}
	return t, nil
}

// ToISODate formats a calendar date as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// DaysBetween returns the whole number of days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// DayInMonth returns the date with the given day-of-month in year/month,
// clamped to the last day of that month.
func DayInMonth(year int, month time.Month, day int) time.Time {
	if day < 1 {
		day = 1
	}
	// Normalise month overflow (e.g. month 13) before clamping.
	first := Date(year, month, 1)
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return Date(first.Year(), first.Month(), day)
}

// AddMonthsClamped adds n calendar months to t, keeping the day-of-month when
// the target month is long enough and clamping to its last day otherwise.
// Unlike time.AddDate it never spills into the following month.
func AddMonthsClamped(t time.Time, n int) time.Time {
	first := Date(t.Year(), t.Month(), 1).AddDate(0, n, 0)
	return DayInMonth(first.Year(), first.Month(), t.Day())
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), 1)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
