package recon

import (
	"context"
	"sort"
	"sync"
	"time"

	"schoolattend/internal/attendance"
)

// memStore is an in-memory Store double enforcing the same uniqueness rule
// as the Postgres unique index on (student_id, day_stamp).
type memStore struct {
	mu      sync.Mutex
	records map[string]attendance.Record

	listCalls        int
	deleteCalls      [][]string
	deleteErr        error // injected after failAfterDeletes successful calls
	failAfterDeletes int
	afterList        func(s *memStore) // fired once after the final page
}

func newMemStore(recs ...attendance.Record) *memStore {
	s := &memStore{records: make(map[string]attendance.Record)}
	for _, r := range recs {
		s.records[r.ID] = r
	}
	return s
}

func (s *memStore) add(rec attendance.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

func (s *memStore) all() []attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]attendance.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) ListPage(ctx context.Context, afterID string, limit int) ([]attendance.Record, error) {
	s.mu.Lock()
	s.listCalls++
	var page []attendance.Record
	for _, r := range s.records {
		if r.ID > afterID {
			page = append(page, r)
		}
	}
	sort.Slice(page, func(i, j int) bool { return page[i].ID < page[j].ID })
	if len(page) > limit {
		page = page[:limit]
	}
	hook := s.afterList
	last := len(page) < limit
	if last {
		s.afterList = nil
	}
	s.mu.Unlock()

	if last && hook != nil {
		hook(s)
	}
	return page, nil
}

func (s *memStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		return 0, nil
	}
	if s.deleteErr != nil && len(s.deleteCalls) >= s.failAfterDeletes {
		return 0, s.deleteErr
	}
	s.deleteCalls = append(s.deleteCalls, append([]string(nil), ids...))
	var n int64
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) UpdateTimestamp(ctx context.Context, id string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	for _, other := range s.records {
		if other.ID != id && other.StudentID == rec.StudentID && other.Timestamp.Equal(ts) {
			return &attendance.ConflictError{ConflictingID: other.ID}
		}
	}
	rec.Timestamp = ts
	s.records[id] = rec
	return nil
}

// fakeLock is a Locker double.
type fakeLock struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releases++
	l.held = false
	return nil
}

func mustTime(t string) time.Time {
	parsed, err := time.Parse(time.RFC3339, t)
	if err != nil {
		panic(err)
	}
	return parsed
}

func rec(id, student, ts, created string) attendance.Record {
	return attendance.Record{
		ID:        id,
		StudentID: student,
		Timestamp: mustTime(ts),
		Status:    attendance.StatusPresent,
		CreatedAt: mustTime(created),
	}
}
