package ai

import (
	"context"
	"fmt"
	"time"
)

// ImportMode selects how an imported snapshot interacts with stored aggregates.
type ImportMode string

const (
	// ImportMerge combines incoming records with stored ones: sums and counts
	// accumulate, extrema widen. Merging the same snapshot twice therefore
	// doubles counts; merge is NOT idempotent.
	ImportMerge ImportMode = "merge"
	// ImportReplace clears both tables and inserts incoming records verbatim.
	ImportReplace ImportMode = "replace"
)

// SnapshotVersion tags exported payloads; kept in step with the data layout.
const SnapshotVersion = "4.0"

// Reconciler bulk-exports and bulk-imports aggregate data.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Export returns a point-in-time snapshot of both aggregate tables.
func (r *Reconciler) Export(ctx context.Context) (*Snapshot, error) {
	prices, err := r.store.ListPrices(ctx)
	if err != nil {
		return nil, err
	}
	consumption, err := r.store.ListConsumption(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Version:     SnapshotVersion,
		ExportedAt:  time.Now().UTC(),
		Prices:      prices,
		Consumption: consumption,
	}, nil
}

// Import applies a snapshot record by record and returns how many records were
// applied. There is no batch transaction: a failure partway leaves earlier
// records committed, and the count tells the caller how far the import got.
func (r *Reconciler) Import(ctx context.Context, snap *Snapshot, mode ImportMode) (int, error) {
	if snap == nil {
		return 0, fmt.Errorf("%w: missing snapshot", ErrInvalidInput)
	}
	switch mode {
	case ImportMerge, ImportReplace:
	default:
		return 0, fmt.Errorf("%w: unknown import mode %q", ErrInvalidInput, mode)
	}

	if mode == ImportReplace {
		if err := r.store.Clear(ctx); err != nil {
			return 0, err
		}
	}

	applied := 0
	for _, p := range snap.Prices {
		if p.ItemName == "" {
			return applied, fmt.Errorf("%w: price record missing item name", ErrInvalidInput)
		}
		var err error
		if mode == ImportMerge {
			err = r.store.MergePrice(ctx, p)
		} else {
			err = r.store.UpsertPrice(ctx, p)
		}
		if err != nil {
			return applied, fmt.Errorf("import price %s: %w", p.ItemName, err)
		}
		applied++
	}

	for _, c := range snap.Consumption {
		if c.ItemName == "" {
			return applied, fmt.Errorf("%w: consumption record missing item name", ErrInvalidInput)
		}
		var err error
		if mode == ImportMerge {
			err = r.store.MergeConsumption(ctx, c)
		} else {
			err = r.store.UpsertConsumption(ctx, c)
		}
		if err != nil {
			return applied, fmt.Errorf("import consumption %s: %w", c.ItemName, err)
		}
		applied++
	}

	return applied, nil
}
