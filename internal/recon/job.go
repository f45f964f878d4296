package recon

import (
	"context"
	"errors"
	"fmt"
	"log"

	"schoolattend/internal/attendance"
)

// ErrJobRunning is returned when another reconciliation run holds the lock.
var ErrJobRunning = errors.New("recon: reconciliation already running")

// Locker serializes job runs across processes. Acquire reports false when
// the lock is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Request is a queued ask to run reconciliation.
type Request struct {
	Mode attendance.OffsetMode `json:"mode"`
}

// Result summarizes one reconciliation run.
type Result struct {
	Kept       int `json:"kept"`
	Deleted    int `json:"deleted"`
	Normalized int `json:"normalized"`
}

// JobConfig tunes a reconciliation job.
type JobConfig struct {
	// OffsetMinutes is the school's fixed regional offset east of UTC,
	// applied when reading legacy timestamps.
	OffsetMinutes int
	// DeleteBatchSize bounds each delete statement; every batch is a
	// self-contained unit of work, so an interrupted run loses at most one
	// batch of progress. Default 100.
	DeleteBatchSize int
	// PageSize bounds each store listing page. Default 500.
	PageSize int
}

// Job is the batch reconciliation process: load records, group them by
// canonical day, normalize each group's keeper, delete the rest. Safe to
// re-run; once the store is at the fixed point a run reports zero deletions
// and zero normalizations.
type Job struct {
	store Store
	lock  Locker
	cfg   JobConfig
}

// NewJob creates a job. lock may be nil when single-instance execution is
// guaranteed by the caller.
func NewJob(store Store, lock Locker, cfg JobConfig) *Job {
	if cfg.DeleteBatchSize <= 0 {
		cfg.DeleteBatchSize = 100
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	return &Job{store: store, lock: lock, cfg: cfg}
}

// Run executes one reconciliation pass under the given offset mode and
// reports counts. On a store failure mid-run the counts committed so far are
// returned alongside the error; the next run resumes from durable state and
// reaches the same fixed point.
func (j *Job) Run(ctx context.Context, mode attendance.OffsetMode) (Result, error) {
	var res Result

	if j.lock != nil {
		ok, err := j.lock.Acquire(ctx)
		if err != nil {
			return res, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return res, ErrJobRunning
		}
		defer func() {
			if rerr := j.lock.Release(context.WithoutCancel(ctx)); rerr != nil {
				log.Printf("recon: release run lock: %v", rerr)
			}
		}()
	}

	records, err := j.loadAll(ctx)
	if err != nil {
		reconcileRuns.WithLabelValues("error").Inc()
		return res, fmt.Errorf("load records: %w", err)
	}

	groups := GroupRecords(records, j.cfg.OffsetMinutes, mode)
	norm := NewNormalizer(j.store, j.cfg.OffsetMinutes, mode)

	var pending []string
	batches := 0
	for _, key := range sortedKeys(groups) {
		if err := ctx.Err(); err != nil {
			reconcileRuns.WithLabelValues("canceled").Inc()
			return res, err
		}
		out, err := norm.ResolveGroup(ctx, key, groups[key])
		if err != nil {
			reconcileRuns.WithLabelValues("error").Inc()
			return res, fmt.Errorf("resolve %s (after %d delete batches): %w", key, batches, err)
		}
		if out.Skipped {
			continue
		}
		res.Kept++
		if out.Normalized {
			res.Normalized++
			recordsNormalized.Inc()
		}
		pending = append(pending, out.DeleteIDs...)

		for len(pending) >= j.cfg.DeleteBatchSize {
			n, err := j.flush(ctx, pending[:j.cfg.DeleteBatchSize])
			res.Deleted += n
			if err != nil {
				reconcileRuns.WithLabelValues("error").Inc()
				return res, fmt.Errorf("delete batch %d: %w", batches+1, err)
			}
			pending = pending[j.cfg.DeleteBatchSize:]
			batches++
		}
	}

	n, err := j.flush(ctx, pending)
	res.Deleted += n
	if err != nil {
		reconcileRuns.WithLabelValues("error").Inc()
		return res, fmt.Errorf("delete batch %d: %w", batches+1, err)
	}

	reconcileRuns.WithLabelValues("ok").Inc()
	return res, nil
}

func (j *Job) loadAll(ctx context.Context) ([]attendance.Record, error) {
	var all []attendance.Record
	after := ""
	for {
		page, err := j.store.ListPage(ctx, after, j.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < j.cfg.PageSize {
			return all, nil
		}
		after = page[len(page)-1].ID
	}
}

func (j *Job) flush(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := j.store.DeleteMany(ctx, ids)
	recordsDeleted.Add(float64(n))
	return int(n), err
}
