package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists attendance records in Postgres. The unique index on
// (student_id, day_stamp) is the durable form of the canonical-day
// uniqueness rule; constraint violations are surfaced as *ConflictError so
// callers can treat them as a signal rather than a failure.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, student_id, day_stamp, status, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.Timestamp, &rec.Status, &rec.CreatedAt)
	return rec, err
}

// ListPage returns up to limit records ordered by id, starting after the
// given id. Pass "" for the first page; a short or empty page means the end.
func (r *Repository) ListPage(ctx context.Context, afterID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// DeleteMany removes the given records and reports how many rows went away.
// An empty set is a no-op.
func (r *Repository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id IN (`+inPlaceholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateTimestamp rewrites a record's stored instant. Returns *ConflictError
// when another record of the same student already holds the target value,
// ErrNotFound when the record no longer exists.
func (r *Repository) UpdateTimestamp(ctx context.Context, id string, ts time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records SET day_stamp = $2 WHERE id = $1
	`, id, ts)
	if err != nil {
		if isUniqueViolation(err) {
			occupant, lookupErr := r.occupantOf(ctx, id, ts)
			if lookupErr != nil {
				return fmt.Errorf("timestamp conflict on %s, occupant lookup: %w", id, lookupErr)
			}
			return &ConflictError{ConflictingID: occupant}
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// occupantOf finds the record holding ts for the same student as id.
func (r *Repository) occupantOf(ctx context.Context, id string, ts time.Time) (string, error) {
	var occupant string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM attendance_records
		WHERE student_id = (SELECT student_id FROM attendance_records WHERE id = $1)
		AND day_stamp = $2
	`, id, ts).Scan(&occupant)
	return occupant, err
}

// UpsertByKey writes attendance for (student, day) as a single conditional
// statement: insert with the canonical instant, or update the status of the
// row already holding the slot. Concurrent saves for the same key serialize
// on the unique index and both land on one row.
func (r *Repository) UpsertByKey(ctx context.Context, studentID string, day Date, status Status) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, day_stamp, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, day_stamp) DO UPDATE SET status = EXCLUDED.status
		RETURNING `+recordColumns+`
	`, uuid.NewString(), studentID, CanonicalInstant(day), status)
	return scanRecord(row)
}

// List returns records within optional student and day-range filters, newest
// first, for the read side of the attendance UI.
func (r *Repository) List(ctx context.Context, studentID string, from, to time.Time, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if studentID != "" {
		clauses = append(clauses, "student_id = $"+strconv.Itoa(len(args)+1))
		args = append(args, studentID)
	}
	if !from.IsZero() {
		clauses = append(clauses, "day_stamp >= $"+strconv.Itoa(len(args)+1))
		args = append(args, from)
	}
	if !to.IsZero() {
		clauses = append(clauses, "day_stamp <= $"+strconv.Itoa(len(args)+1))
		args = append(args, to)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY day_stamp DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// inPlaceholders renders "$1,$2,...,$n" for an IN clause.
func inPlaceholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(parts, ",")
}
