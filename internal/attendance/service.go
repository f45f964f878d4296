package attendance

import (
	"context"
	"errors"
)

// Upserter is the single store capability the write path needs.
type Upserter interface {
	UpsertByKey(ctx context.Context, studentID string, day Date, status Status) (Record, error)
}

// Service is the write-path guard: every day-to-day save goes through it, so
// a student can only ever hold one record per calendar day. Saving twice for
// the same day updates the status of the existing record.
type Service struct {
	store Upserter
}

// NewService creates a service backed by a store.
func NewService(store Upserter) *Service {
	return &Service{store: store}
}

// Save records attendance for a student on a calendar day. The stored
// timestamp is always the canonical instant for the day, so the write is
// idempotent per (student, day); a concurrent save for the same key resolves
// inside the store's atomic upsert, never as an error to the caller.
func (s *Service) Save(ctx context.Context, studentID string, day Date, status Status) (Record, error) {
	if studentID == "" {
		return Record{}, errors.New("student id required")
	}
	if day.IsZero() {
		return Record{}, errors.New("date required")
	}
	if !status.Valid() {
		return Record{}, errors.New("unknown status " + string(status))
	}
	return s.store.UpsertByKey(ctx, studentID, day, status)
}
