package recon

import (
	"context"
	"errors"
	"log"
	"sort"

	"schoolattend/internal/attendance"
)

// SelectKeeper picks the one record of a duplicate group that survives.
// Preference order: a record already in canonical form, then the latest
// CreatedAt (the most recent write reflects the most recent correction
// attempt), then the smallest id. The order is total, so the same keeper
// comes out regardless of input order.
func SelectKeeper(group []attendance.Record, offsetMin int, mode attendance.OffsetMode) (attendance.Record, []attendance.Record) {
	ranked := make([]attendance.Record, len(group))
	copy(ranked, group)
	sort.Slice(ranked, func(i, j int) bool {
		ci := attendance.Canonical(ranked[i].Timestamp, offsetMin, mode)
		cj := attendance.Canonical(ranked[j].Timestamp, offsetMin, mode)
		if ci != cj {
			return ci
		}
		if !ranked[i].CreatedAt.Equal(ranked[j].CreatedAt) {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked[0], ranked[1:]
}

// GroupOutcome is the result of resolving one day-key group. DeleteIDs are
// safe to delete only because the keeper is already durably canonical by the
// time they are produced.
type GroupOutcome struct {
	DeleteIDs  []string
	Normalized bool
	Skipped    bool
}

// Normalizer rewrites keepers to canonical form and resolves duplicate
// groups against the store.
type Normalizer struct {
	store     Store
	offsetMin int
	mode      attendance.OffsetMode
}

// NewNormalizer creates a normalizer for one reconciliation run.
func NewNormalizer(store Store, offsetMin int, mode attendance.OffsetMode) *Normalizer {
	return &Normalizer{store: store, offsetMin: offsetMin, mode: mode}
}

// ResolveGroup selects the group's keeper, rewrites its timestamp to the
// canonical instant if needed, and returns the ids safe to delete. The ids
// come back only once the keeper is durably canonical, so a crash between
// normalize and delete never leaves a day without a record.
//
// A *attendance.ConflictError on the rewrite means a record outside the group
// already holds the exact canonical instant. That record is canonical for this
// key under every mode and offset, since UTC-midnight instants resolve to
// their own day, so re-running keeper selection over the union would pick it
// via the canonical-form preference. Letting the occupant win and demoting the
// would-be keeper to the losers is therefore exactly that re-selection without
// a second read. The store's uniqueness constraint acts as the authoritative
// second check on the in-memory grouping here.
//
// A keeper that vanished mid-run (attendance.ErrNotFound) makes the whole
// group a no-op for this run; it is picked up again on the next one.
func (n *Normalizer) ResolveGroup(ctx context.Context, key Key, group []attendance.Record) (GroupOutcome, error) {
	keeper, losers := SelectKeeper(group, n.offsetMin, n.mode)

	var out GroupOutcome
	canonical := attendance.CanonicalInstant(key.Day)
	if !keeper.Timestamp.Equal(canonical) {
		switch uerr := n.store.UpdateTimestamp(ctx, keeper.ID, canonical); {
		case uerr == nil:
			out.Normalized = true
		case errors.Is(uerr, attendance.ErrNotFound):
			log.Printf("recon: keeper %s for %s gone, skipping group", keeper.ID, key)
			out.Skipped = true
			return out, nil
		default:
			var conflict *attendance.ConflictError
			if !errors.As(uerr, &conflict) {
				return out, uerr
			}
			conflictMerges.Inc()
			losers = append(losers, keeper)
		}
	}

	for _, rec := range losers {
		out.DeleteIDs = append(out.DeleteIDs, rec.ID)
	}
	return out, nil
}
