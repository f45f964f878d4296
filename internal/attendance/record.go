package attendance

import (
	"errors"
	"time"
)

// Status enumerates daily attendance states.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusExcused Status = "excused"
	StatusSick    Status = "sick"
)

// Valid reports whether s is a known attendance status.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusSick:
		return true
	}
	return false
}

// Record is one student's attendance for one calendar day.
//
// Timestamp is the instant representing the day the record is for. Canonical
// form is true UTC midnight of the local calendar day; rows inherited from
// older writes may hold anything (local wall clock stored as UTC, non-zero
// time of day). CreatedAt is only a tie-break signal during reconciliation,
// never the semantic day.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when a record id no longer exists in the store.
var ErrNotFound = errors.New("attendance: record not found")

// ConflictError reports that another record already occupies a canonical
// (student, day) slot. It is an expected signal during reconciliation and
// concurrent saves, not a failure.
type ConflictError struct {
	ConflictingID string
}

func (e *ConflictError) Error() string {
	return "attendance: canonical slot held by record " + e.ConflictingID
}
