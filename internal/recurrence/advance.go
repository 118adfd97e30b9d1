package recurrence

import (
	"time"

	"fjacquet/paycycle/internal/dateutils"
)

// Advance returns date moved forward by one period of f. Month-based
// frequencies keep the day-of-month where the target month allows it and
// clamp to the month's last day otherwise. The result is always strictly
// later than date.
func Advance(date time.Time, f Frequency) time.Time {
	date = dateutils.Normalize(date)
	switch f.Normalized() {
	case Weekly:
		return date.AddDate(0, 0, 7)
	case Fortnightly:
		return date.AddDate(0, 0, 14)
	case Quarterly:
		return dateutils.AddMonthsClamped(date, 3)
	case Yearly:
		return dateutils.AddMonthsClamped(date, 12)
	default:
		return dateutils.AddMonthsClamped(date, 1)
	}
}

// NextOnOrAfter rolls a schedule anchored at due forward by whole periods of
// f until it lands on or after from. A due date already on or after from is
// returned unchanged.
//
// Rolling is done step by step from the anchor, so a monthly schedule that
// was clamped once (Jan 31 -> Feb 29) continues from the clamped day, the
// same way a persisted schedule advances.
func NextOnOrAfter(due time.Time, f Frequency, from time.Time) time.Time {
	due = dateutils.Normalize(due)
	from = dateutils.Normalize(from)
	for due.Before(from) {
		due = Advance(due, f)
	}
	return due
}

// Occurrences returns the dates of the schedule anchored at first that fall
// within [from, to], at most limit of them (limit <= 0 means unbounded).
// The anchor is rolled forward to from before collecting.
func Occurrences(first time.Time, f Frequency, from, to time.Time, limit int) []time.Time {
	to = dateutils.Normalize(to)
	var out []time.Time
	for d := NextOnOrAfter(first, f, from); !d.After(to); d = Advance(d, f) {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, d)
	}
	return out
}
