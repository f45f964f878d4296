package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}

func TestResolveDay(t *testing.T) {
	tests := []struct {
		name   string
		ts     string
		offset int
		mode   OffsetMode
		want   Date
	}{
		{"legacy evening crosses into next local day", "2024-03-10T17:00:00Z", 420, OffsetModeLegacy, Date{2024, time.March, 11}},
		{"legacy midnight stays on its day", "2024-03-11T00:00:00Z", 420, OffsetModeLegacy, Date{2024, time.March, 11}},
		{"legacy morning stays on its day", "2024-03-11T08:00:00Z", 420, OffsetModeLegacy, Date{2024, time.March, 11}},
		{"legacy negative offset crosses back", "2024-03-11T02:00:00Z", -300, OffsetModeLegacy, Date{2024, time.March, 10}},
		{"legacy keeps utc midnight on its own day", "2024-03-11T00:00:00Z", -300, OffsetModeLegacy, Date{2024, time.March, 11}},
		{"legacy shifts one second past midnight", "2024-03-11T00:00:01Z", -300, OffsetModeLegacy, Date{2024, time.March, 10}},
		{"none ignores offset", "2024-03-10T17:00:00Z", 420, OffsetModeNone, Date{2024, time.March, 10}},
		{"none midnight", "2024-03-11T00:00:00Z", 420, OffsetModeNone, Date{2024, time.March, 11}},
		{"legacy year boundary", "2023-12-31T18:00:00Z", 420, OffsetModeLegacy, Date{2024, time.January, 1}},
		{"non-utc input is normalized first", "2024-03-11T07:30:00+07:00", 420, OffsetModeLegacy, Date{2024, time.March, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDay(ts(t, tt.ts), tt.offset, tt.mode)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalInstant(t *testing.T) {
	got := CanonicalInstant(Date{2024, time.March, 11})
	assert.Equal(t, ts(t, "2024-03-11T00:00:00Z"), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestCanonical(t *testing.T) {
	// UTC midnight resolves to its own day, so it is its own canonical
	// instant, no matter the offset's sign.
	assert.True(t, Canonical(ts(t, "2024-03-11T00:00:00Z"), 420, OffsetModeLegacy))
	assert.True(t, Canonical(ts(t, "2024-03-11T00:00:00Z"), -300, OffsetModeLegacy))
	assert.False(t, Canonical(ts(t, "2024-03-10T17:00:00Z"), 420, OffsetModeLegacy))
	assert.False(t, Canonical(ts(t, "2024-03-11T08:00:00Z"), 420, OffsetModeLegacy))
	assert.False(t, Canonical(ts(t, "2024-03-11T00:00:01Z"), -300, OffsetModeLegacy))

	// Without offset correction only the raw date fields matter.
	assert.True(t, Canonical(ts(t, "2024-03-11T00:00:00Z"), 420, OffsetModeNone))
	assert.False(t, Canonical(ts(t, "2024-03-11T00:00:01Z"), 420, OffsetModeNone))
}

func TestRoundTrip(t *testing.T) {
	// CanonicalInstant of a resolved day resolves back to the same day for
	// any offset, which is what makes normalization idempotent.
	for _, offset := range []int{420, -300, 0} {
		for _, raw := range []string{
			"2024-03-10T17:00:00Z",
			"2024-03-11T00:00:00Z",
			"2024-03-11T08:00:00Z",
			"2024-06-30T23:59:59Z",
		} {
			day := ResolveDay(ts(t, raw), offset, OffsetModeLegacy)
			again := ResolveDay(CanonicalInstant(day), offset, OffsetModeLegacy)
			assert.Equal(t, day, again, "offset %d raw %s", offset, raw)
		}
	}
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-03-12")
	require.NoError(t, err)
	assert.Equal(t, Date{2024, time.March, 12}, day)
	assert.Equal(t, "2024-03-12", day.String())

	_, err = ParseDate("12/03/2024")
	assert.Error(t, err)
	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestDateBefore(t *testing.T) {
	a := Date{2024, time.March, 11}
	assert.True(t, Date{2023, time.December, 31}.Before(a))
	assert.True(t, Date{2024, time.February, 28}.Before(a))
	assert.True(t, Date{2024, time.March, 10}.Before(a))
	assert.False(t, a.Before(a))
	assert.False(t, Date{2024, time.March, 12}.Before(a))
}

func TestParseOffsetMode(t *testing.T) {
	mode, err := ParseOffsetMode("legacy")
	require.NoError(t, err)
	assert.Equal(t, OffsetModeLegacy, mode)

	mode, err = ParseOffsetMode("none")
	require.NoError(t, err)
	assert.Equal(t, OffsetModeNone, mode)

	_, err = ParseOffsetMode("guess")
	assert.Error(t, err)
}
