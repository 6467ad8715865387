package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Learner folds approved applications into the running aggregates.
type Learner struct {
	store  Store
	counts GuestCountLookup
}

func NewLearner(store Store, counts GuestCountLookup) *Learner {
	return &Learner{store: store, counts: counts}
}

// OnApplicationApproved records every line item of a freshly approved
// application: each unit price goes into the price aggregate, and when an
// occupancy record exists within the lookup window, the quantity is converted
// to a per-guest-per-day rate and folded into the consumption aggregate.
//
// The first store failure aborts the fold; callers treat the whole approval
// as a single unit and should wrap it in a transaction boundary if partial
// learning is unacceptable.
func (l *Learner) OnApplicationApproved(ctx context.Context, purchaseDate time.Time, items []LineItem) error {
	if purchaseDate.IsZero() {
		return fmt.Errorf("%w: missing purchase date", ErrInvalidInput)
	}
	for _, item := range items {
		if item.Name == "" {
			return fmt.Errorf("%w: line item missing name", ErrInvalidInput)
		}
	}

	record, err := l.counts.NearestWithin(ctx, purchaseDate, GuestCountWindowDays)
	if err != nil {
		return fmt.Errorf("guest count lookup: %w", err)
	}

	for _, item := range items {
		if err := l.store.FoldPrice(ctx, item.Name, item.Price); err != nil {
			return fmt.Errorf("fold price for %s: %w", item.Name, err)
		}

		// Consumption learning needs occupancy context; without a guest-count
		// record in the window the rate would be meaningless.
		if record == nil || record.Count <= 0 {
			continue
		}

		days := EstimateUsageDays(item.Name)
		rate := item.Quantity.Div(decimal.NewFromInt(int64(record.Count * days)))
		if err := l.store.FoldConsumption(ctx, item.Name, rate); err != nil {
			return fmt.Errorf("fold consumption for %s: %w", item.Name, err)
		}
	}

	return nil
}
