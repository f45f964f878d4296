package recon

import (
	"sort"

	"schoolattend/internal/attendance"
)

// Key is the true identity of a daily attendance record: one student, one
// local calendar day.
type Key struct {
	StudentID string
	Day       attendance.Date
}

func (k Key) String() string {
	return k.StudentID + "/" + k.Day.String()
}

// GroupRecords buckets records by canonical day key under the given offset
// and mode. Buckets of size one need at most normalization; larger buckets
// are duplicate sets. Input order does not affect the buckets.
func GroupRecords(records []attendance.Record, offsetMin int, mode attendance.OffsetMode) map[Key][]attendance.Record {
	groups := make(map[Key][]attendance.Record)
	for _, rec := range records {
		k := Key{
			StudentID: rec.StudentID,
			Day:       attendance.ResolveDay(rec.Timestamp, offsetMin, mode),
		}
		groups[k] = append(groups[k], rec)
	}
	return groups
}

// sortedKeys fixes a processing order over groups so runs are reproducible.
func sortedKeys(groups map[Key][]attendance.Record) []Key {
	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].StudentID != keys[j].StudentID {
			return keys[i].StudentID < keys[j].StudentID
		}
		return keys[i].Day.Before(keys[j].Day)
	})
	return keys
}
