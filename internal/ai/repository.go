package ai

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the data-access contract for the two aggregate tables. Engines
// depend ONLY on this interface.
//
// Every mutation is atomic per item key: Fold* and Merge* combine with the
// stored row in a single operation, so concurrent approvals of the same item
// cannot lose updates. Get* return (nil, nil) when the item was never seen.
type Store interface {
	GetPrice(ctx context.Context, itemName string) (*PriceAggregate, error)
	ListPrices(ctx context.Context) ([]PriceAggregate, error)
	// FoldPrice adds one price observation: create with count=1 and
	// min=max=price, or accumulate total/count/extrema.
	FoldPrice(ctx context.Context, itemName string, price decimal.Decimal) error
	// MergePrice combines an imported aggregate with the stored one
	// (sums, counts, extrema), inserting when absent.
	MergePrice(ctx context.Context, agg PriceAggregate) error
	// UpsertPrice writes the aggregate verbatim, overwriting any stored row.
	UpsertPrice(ctx context.Context, agg PriceAggregate) error
	DeletePrice(ctx context.Context, itemName string) error
	CountPrices(ctx context.Context) (int, error)

	GetConsumption(ctx context.Context, itemName string) (*ConsumptionAggregate, error)
	ListConsumption(ctx context.Context) ([]ConsumptionAggregate, error)
	// FoldConsumption adds one rate observation and recomputes the stored
	// average in the same operation.
	FoldConsumption(ctx context.Context, itemName string, rate decimal.Decimal) error
	MergeConsumption(ctx context.Context, agg ConsumptionAggregate) error
	UpsertConsumption(ctx context.Context, agg ConsumptionAggregate) error
	DeleteConsumption(ctx context.Context, itemName string) error

	// Clear empties both aggregate tables. Used by replace-mode imports only.
	Clear(ctx context.Context) error
}
