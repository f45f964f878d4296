package attendance

import (
	"fmt"
	"time"
)

// Date is a plain calendar day in the school's region.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the UTC calendar fields of t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before orders dates chronologically.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// OffsetMode selects how stored timestamps are interpreted when recovering
// the calendar day they were meant to represent. Older rows were written
// under more than one convention, so the mode is an explicit parameter of a
// reconciliation run rather than something inferred per record.
type OffsetMode string

const (
	// OffsetModeLegacy treats stored instants as true UTC and applies the
	// configured regional offset before extracting the calendar day.
	OffsetModeLegacy OffsetMode = "legacy"
	// OffsetModeNone takes the stored UTC date fields as the calendar day
	// directly, for rows written as local wall clock mislabeled UTC.
	OffsetModeNone OffsetMode = "none"
)

// ParseOffsetMode validates a mode string.
func ParseOffsetMode(s string) (OffsetMode, error) {
	switch OffsetMode(s) {
	case OffsetModeLegacy, OffsetModeNone:
		return OffsetMode(s), nil
	}
	return "", fmt.Errorf("unknown offset mode %q", s)
}

// ResolveDay maps a stored instant to the calendar day it represents. In
// legacy mode the regional offset (minutes east of UTC) is added first; the
// day is then read from the shifted instant's UTC fields, so the result never
// depends on the host timezone.
//
// An instant that is exactly UTC midnight is exempt from legacy correction:
// only the system's own canonical writes produce that value, and shifting it
// would re-date an already-correct record on every run under a negative
// offset. Canonical form is the disambiguating signal, not the time-of-day
// pattern of the legacy rows around it.
func ResolveDay(ts time.Time, offsetMin int, mode OffsetMode) Date {
	if mode == OffsetModeLegacy && !isMidnightUTC(ts) {
		ts = ts.Add(time.Duration(offsetMin) * time.Minute)
	}
	return DateOf(ts)
}

// isMidnightUTC reports whether ts is exactly 00:00:00.000000000 UTC.
func isMidnightUTC(ts time.Time) bool {
	utc := ts.UTC()
	h, m, s := utc.Clock()
	return h == 0 && m == 0 && s == 0 && utc.Nanosecond() == 0
}

// CanonicalInstant returns the canonical stored value for a day: true UTC
// midnight of the local calendar day. The offset is deliberately not applied
// here: it only matters when reading ambiguous legacy data, never when
// writing canonical values.
func CanonicalInstant(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Canonical reports whether ts already equals the canonical instant of the
// day it resolves to under the given offset and mode. With the midnight
// exemption in ResolveDay this holds exactly for UTC-midnight instants,
// regardless of the offset's sign.
func Canonical(ts time.Time, offsetMin int, mode OffsetMode) bool {
	return ts.Equal(CanonicalInstant(ResolveDay(ts, offsetMin, mode)))
}
