// Package recon detects and repairs duplicate daily-attendance records left
// behind by inconsistent timestamp handling, and keeps the store at a fixed
// point where every student has at most one record per calendar day, stored
// as true UTC midnight of that day.
package recon

import (
	"context"
	"time"

	"schoolattend/internal/attendance"
)

// Store is the record-store capability the engine consumes. In production it
// is the Postgres repository; tests use an in-memory double.
type Store interface {
	// ListPage returns up to limit records ordered by id, starting after
	// afterID ("" for the first page). A short or empty page ends iteration.
	ListPage(ctx context.Context, afterID string, limit int) ([]attendance.Record, error)

	// DeleteMany removes records by id, reporting rows deleted. Empty input
	// is a no-op.
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	// UpdateTimestamp rewrites a record's stored instant. It returns
	// *attendance.ConflictError when the target slot is already held by
	// another record of the same student, attendance.ErrNotFound when the
	// record vanished.
	UpdateTimestamp(ctx context.Context, id string, ts time.Time) error
}
