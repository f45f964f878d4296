package recon

import "github.com/prometheus/client_golang/prometheus"

var (
	reconcileRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schoolattend_reconcile_runs_total",
		Help: "Reconciliation runs by outcome.",
	}, []string{"outcome"})
	recordsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schoolattend_reconcile_deleted_total",
		Help: "Duplicate attendance records deleted.",
	})
	recordsNormalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schoolattend_reconcile_normalized_total",
		Help: "Attendance timestamps rewritten to canonical form.",
	})
	conflictMerges = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schoolattend_reconcile_conflict_merges_total",
		Help: "Groups merged after a canonical-slot constraint conflict.",
	})
)

func init() {
	prometheus.MustRegister(reconcileRuns, recordsDeleted, recordsNormalized, conflictMerges)
}
