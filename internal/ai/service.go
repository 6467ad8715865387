package ai

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	pointEight  = decimal.RequireFromString("0.8")
	pointNine   = decimal.RequireFromString("0.9")
	onePointOne = decimal.RequireFromString("1.1")
	onePointTwo = decimal.RequireFromString("1.2")
)

// Service covers manual maintenance of the learned data: listing with derived
// averages, seeding, overrides, and deletion. The engines never call this.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PriceView is a price aggregate plus its derived average for read endpoints.
type PriceView struct {
	PriceAggregate
	AvgPrice decimal.Decimal `json:"avg_price"`
}

func (s *Service) ListPrices(ctx context.Context) ([]PriceView, error) {
	aggs, err := s.store.ListPrices(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PriceView, 0, len(aggs))
	for _, agg := range aggs {
		views = append(views, PriceView{PriceAggregate: agg, AvgPrice: agg.Avg().Round(2)})
	}
	return views, nil
}

// AddPrice seeds a brand-new price aggregate from a single reference price.
// The extrema start as a ±10% band around it.
func (s *Service) AddPrice(ctx context.Context, itemName string, price decimal.Decimal) error {
	if itemName == "" || price.IsZero() {
		return fmt.Errorf("%w: item name and price are required", ErrInvalidInput)
	}
	existing, err := s.store.GetPrice(ctx, itemName)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrExists
	}
	return s.store.UpsertPrice(ctx, PriceAggregate{
		ItemName:       itemName,
		TotalPrice:     price,
		Count:          1,
		MinPrice:       price.Mul(pointNine),
		MaxPrice:       price.Mul(onePointOne),
		AlertThreshold: DefaultAlertThreshold,
	})
}

// UpdatePrice overrides the learned average and/or alert threshold. Setting
// the average rewrites the sum to avg*count and resets the extrema to a ±20%
// band so the learned count keeps its weight.
func (s *Service) UpdatePrice(ctx context.Context, itemName string, avgPrice, alertThreshold *decimal.Decimal) error {
	existing, err := s.store.GetPrice(ctx, itemName)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if avgPrice == nil && alertThreshold == nil {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	agg := *existing
	if avgPrice != nil {
		agg.TotalPrice = avgPrice.Mul(decimal.NewFromInt(int64(agg.Count)))
		agg.MinPrice = avgPrice.Mul(pointEight)
		agg.MaxPrice = avgPrice.Mul(onePointTwo)
	}
	if alertThreshold != nil {
		agg.AlertThreshold = *alertThreshold
	}
	return s.store.UpsertPrice(ctx, agg)
}

func (s *Service) DeletePrice(ctx context.Context, itemName string) error {
	return s.store.DeletePrice(ctx, itemName)
}

func (s *Service) ListConsumption(ctx context.Context) ([]ConsumptionAggregate, error) {
	return s.store.ListConsumption(ctx)
}

// AddConsumption seeds a consumption aggregate from a single reference rate.
func (s *Service) AddConsumption(ctx context.Context, itemName string, rate decimal.Decimal) error {
	if itemName == "" || rate.IsZero() {
		return fmt.Errorf("%w: item name and rate are required", ErrInvalidInput)
	}
	existing, err := s.store.GetConsumption(ctx, itemName)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrExists
	}
	return s.store.UpsertConsumption(ctx, ConsumptionAggregate{
		ItemName:  itemName,
		TotalRate: rate,
		Count:     1,
		AvgRate:   rate,
	})
}

// UpdateConsumption overrides the learned average rate, rewriting the sum to
// avg*count so the sample count keeps its weight.
func (s *Service) UpdateConsumption(ctx context.Context, itemName string, avgRate decimal.Decimal) error {
	existing, err := s.store.GetConsumption(ctx, itemName)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	agg := *existing
	agg.TotalRate = avgRate.Mul(decimal.NewFromInt(int64(agg.Count)))
	agg.AvgRate = avgRate
	return s.store.UpsertConsumption(ctx, agg)
}

func (s *Service) DeleteConsumption(ctx context.Context, itemName string) error {
	return s.store.DeleteConsumption(ctx, itemName)
}
