package ai

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrExists       = errors.New("item already exists")
	ErrInvalidInput = errors.New("invalid input")
)

// DefaultAlertThreshold is the price deviation percentage used when an
// aggregate carries no explicit threshold.
var DefaultAlertThreshold = decimal.NewFromInt(20)

// PriceAggregate is the running price summary for one item, keyed by name.
// Invariant: MinPrice <= Avg() <= MaxPrice once Count > 0.
type PriceAggregate struct {
	ItemName       string          `json:"item_name"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Count          int             `json:"count"`
	MinPrice       decimal.Decimal `json:"min_price"`
	MaxPrice       decimal.Decimal `json:"max_price"`
	AlertThreshold decimal.Decimal `json:"alert_threshold"`
}

// Avg returns the observed average unit price, zero when nothing was folded yet.
func (p PriceAggregate) Avg() decimal.Decimal {
	if p.Count <= 0 {
		return decimal.Zero
	}
	return p.TotalPrice.Div(decimal.NewFromInt(int64(p.Count)))
}

// Threshold returns the deviation percentage that triggers an advisory.
func (p PriceAggregate) Threshold() decimal.Decimal {
	if p.AlertThreshold.IsZero() {
		return DefaultAlertThreshold
	}
	return p.AlertThreshold
}

// ConsumptionAggregate is the running per-guest-per-day consumption summary
// for one item. AvgRate is stored, not derived at read time.
type ConsumptionAggregate struct {
	ItemName  string          `json:"item_name"`
	TotalRate decimal.Decimal `json:"total_rate"`
	Count     int             `json:"count"`
	AvgRate   decimal.Decimal `json:"avg_rate"`
}

// LineItem is one row of an application as seen by the engines. The engines
// never mutate line items.
type LineItem struct {
	Name     string
	Quantity decimal.Decimal
	Unit     string
	Price    decimal.Decimal
}

// GuestCount is an occupancy record resolved by the nearest-date lookup.
type GuestCount struct {
	Date  time.Time
	Count int
}

// GuestCountLookup resolves the guest-count record whose date is closest to
// target within the given tolerance window. Ties break to the earlier date.
// Returns (nil, nil) when no record falls inside the window.
type GuestCountLookup interface {
	NearestWithin(ctx context.Context, target time.Time, windowDays int) (*GuestCount, error)
}

// Snapshot is the export/import payload for both aggregate tables.
type Snapshot struct {
	Version     string                 `json:"version"`
	ExportedAt  time.Time              `json:"export_date"`
	Prices      []PriceAggregate       `json:"prices"`
	Consumption []ConsumptionAggregate `json:"consumption"`
}
