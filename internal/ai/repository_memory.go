package ai

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore mirrors the Postgres semantics for tests. The mutex gives the
// same per-key atomicity the single-statement upserts provide.
type MemoryStore struct {
	mu          sync.Mutex
	prices      map[string]PriceAggregate
	consumption map[string]ConsumptionAggregate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prices:      make(map[string]PriceAggregate),
		consumption: make(map[string]ConsumptionAggregate),
	}
}

func (s *MemoryStore) GetPrice(ctx context.Context, itemName string) (*PriceAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.prices[itemName]
	if !ok {
		return nil, nil
	}
	return &agg, nil
}

func (s *MemoryStore) ListPrices(ctx context.Context) ([]PriceAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aggs := make([]PriceAggregate, 0, len(s.prices))
	for _, agg := range s.prices {
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].ItemName < aggs[j].ItemName })
	return aggs, nil
}

func (s *MemoryStore) FoldPrice(ctx context.Context, itemName string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.prices[itemName]
	if !ok {
		s.prices[itemName] = PriceAggregate{
			ItemName:   itemName,
			TotalPrice: price,
			Count:      1,
			MinPrice:   price,
			MaxPrice:   price,
		}
		return nil
	}
	agg.TotalPrice = agg.TotalPrice.Add(price)
	agg.Count++
	agg.MinPrice = decimal.Min(agg.MinPrice, price)
	agg.MaxPrice = decimal.Max(agg.MaxPrice, price)
	s.prices[itemName] = agg
	return nil
}

func (s *MemoryStore) MergePrice(ctx context.Context, in PriceAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.prices[in.ItemName]
	if !ok {
		s.prices[in.ItemName] = in
		return nil
	}
	agg.TotalPrice = agg.TotalPrice.Add(in.TotalPrice)
	agg.Count += in.Count
	agg.MinPrice = decimal.Min(agg.MinPrice, in.MinPrice)
	agg.MaxPrice = decimal.Max(agg.MaxPrice, in.MaxPrice)
	s.prices[in.ItemName] = agg
	return nil
}

func (s *MemoryStore) UpsertPrice(ctx context.Context, agg PriceAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg.AlertThreshold = agg.Threshold()
	s.prices[agg.ItemName] = agg
	return nil
}

func (s *MemoryStore) DeletePrice(ctx context.Context, itemName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prices, itemName)
	return nil
}

func (s *MemoryStore) CountPrices(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prices), nil
}

func (s *MemoryStore) GetConsumption(ctx context.Context, itemName string) (*ConsumptionAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.consumption[itemName]
	if !ok {
		return nil, nil
	}
	return &agg, nil
}

func (s *MemoryStore) ListConsumption(ctx context.Context) ([]ConsumptionAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aggs := make([]ConsumptionAggregate, 0, len(s.consumption))
	for _, agg := range s.consumption {
		aggs = append(aggs, agg)
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].ItemName < aggs[j].ItemName })
	return aggs, nil
}

func (s *MemoryStore) FoldConsumption(ctx context.Context, itemName string, rate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.consumption[itemName]
	if !ok {
		s.consumption[itemName] = ConsumptionAggregate{
			ItemName:  itemName,
			TotalRate: rate,
			Count:     1,
			AvgRate:   rate,
		}
		return nil
	}
	agg.TotalRate = agg.TotalRate.Add(rate)
	agg.Count++
	agg.AvgRate = agg.TotalRate.Div(decimal.NewFromInt(int64(agg.Count)))
	s.consumption[itemName] = agg
	return nil
}

func (s *MemoryStore) MergeConsumption(ctx context.Context, in ConsumptionAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.consumption[in.ItemName]
	if !ok {
		s.consumption[in.ItemName] = in
		return nil
	}
	agg.TotalRate = agg.TotalRate.Add(in.TotalRate)
	agg.Count += in.Count
	// Zero-count records are valid (count = 0 implies totalRate = 0), so the
	// recompute must not divide by the combined count blindly.
	if agg.Count > 0 {
		agg.AvgRate = agg.TotalRate.Div(decimal.NewFromInt(int64(agg.Count)))
	} else {
		agg.AvgRate = decimal.Zero
	}
	s.consumption[in.ItemName] = agg
	return nil
}

func (s *MemoryStore) UpsertConsumption(ctx context.Context, agg ConsumptionAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumption[agg.ItemName] = agg
	return nil
}

func (s *MemoryStore) DeleteConsumption(ctx context.Context, itemName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.consumption, itemName)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = make(map[string]PriceAggregate)
	s.consumption = make(map[string]ConsumptionAggregate)
	return nil
}
