// Package recurrence implements the calendar arithmetic behind every
// recurring cash movement: stepping a date forward by one period and
// normalising a per-period amount to its monthly equivalent.
package recurrence

import "strings"

// Frequency is how often a recurring obligation or income repeats.
//
// The set is closed. Values read from external records go through
// ParseFrequency, which maps anything unrecognised to Monthly; that leniency
// is the documented policy at this boundary and no error is ever raised for
// an unknown frequency.
type Frequency string

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Yearly      Frequency = "yearly"
)

// DefaultFrequency is used for any unrecognised input.
const DefaultFrequency = Monthly

// Frequencies lists every supported frequency, shortest period first.
var Frequencies = []Frequency{Weekly, Fortnightly, Monthly, Quarterly, Yearly}

// ParseFrequency maps a raw value to a Frequency. Matching is
// case-insensitive and ignores surrounding whitespace; unknown values yield
// DefaultFrequency.
func ParseFrequency(raw string) Frequency {
	f := Frequency(strings.ToLower(strings.TrimSpace(raw)))
	if f.Valid() {
		return f
	}
	return DefaultFrequency
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Fortnightly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Normalized returns f, or DefaultFrequency when f is not valid.
func (f Frequency) Normalized() Frequency {
	if f.Valid() {
		return f
	}
	return DefaultFrequency
}

func (f Frequency) String() string {
	return string(f.Normalized())
}

// UnmarshalText applies ParseFrequency so YAML/JSON/CSV decoding inherits
// the same fallback.
func (f *Frequency) UnmarshalText(text []byte) error {
	*f = ParseFrequency(string(text))
	return nil
}

// MarshalText writes the normalised value.
func (f Frequency) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
