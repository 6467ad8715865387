package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type stubCounts struct {
	record *GuestCount
	err    error
}

func (s stubCounts) NearestWithin(ctx context.Context, target time.Time, windowDays int) (*GuestCount, error) {
	return s.record, s.err
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var testDate = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func TestLearnerFoldsPriceAggregate(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{})
	ctx := context.Background()

	for _, price := range []string{"10", "20", "30"} {
		err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
			{Name: "大米", Quantity: d("5"), Price: d(price)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	agg, err := store.GetPrice(ctx, "大米")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg == nil {
		t.Fatal("price aggregate was not created")
	}
	if agg.Count != 3 {
		t.Errorf("count = %d, want 3", agg.Count)
	}
	if !agg.Avg().Equal(d("20")) {
		t.Errorf("avg = %s, want 20", agg.Avg())
	}
	if !agg.MinPrice.Equal(d("10")) || !agg.MaxPrice.Equal(d("30")) {
		t.Errorf("extrema = [%s, %s], want [10, 30]", agg.MinPrice, agg.MaxPrice)
	}
}

func TestLearnerPriceMonotonicity(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{})
	ctx := context.Background()

	prices := []string{"12.50", "8", "15", "9.99", "11"}
	for i, price := range prices {
		err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
			{Name: "鸡蛋", Quantity: d("2"), Price: d(price)},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		agg, _ := store.GetPrice(ctx, "鸡蛋")
		if agg.Count != i+1 {
			t.Fatalf("after fold %d: count = %d, want %d", i+1, agg.Count, i+1)
		}
		for _, seen := range prices[:i+1] {
			p := d(seen)
			if p.LessThan(agg.MinPrice) || p.GreaterThan(agg.MaxPrice) {
				t.Fatalf("after fold %d: price %s outside [%s, %s]", i+1, p, agg.MinPrice, agg.MaxPrice)
			}
		}
		avg := agg.Avg()
		if avg.LessThan(agg.MinPrice) || avg.GreaterThan(agg.MaxPrice) {
			t.Fatalf("after fold %d: avg %s outside [%s, %s]", i+1, avg, agg.MinPrice, agg.MaxPrice)
		}
	}
}

func TestLearnerConsumptionNeedsGuestRecord(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{record: nil})
	ctx := context.Background()

	err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
		{Name: "黄瓜", Quantity: d("40"), Price: d("3")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if agg, _ := store.GetConsumption(ctx, "黄瓜"); agg != nil {
		t.Errorf("consumption aggregate created without a guest-count record: %+v", agg)
	}
	if agg, _ := store.GetPrice(ctx, "黄瓜"); agg == nil {
		t.Error("price aggregate should be created even without a guest-count record")
	}
}

func TestLearnerConsumptionSkipsZeroGuests(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{record: &GuestCount{Date: testDate, Count: 0}})
	ctx := context.Background()

	err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
		{Name: "黄瓜", Quantity: d("40"), Price: d("3")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg, _ := store.GetConsumption(ctx, "黄瓜"); agg != nil {
		t.Errorf("consumption aggregate created with zero guests: %+v", agg)
	}
}

func TestLearnerConsumptionRate(t *testing.T) {
	store := NewMemoryStore()
	// 50 guests; 黄瓜 is a fresh item, so the usage period is 2 days.
	learner := NewLearner(store, stubCounts{record: &GuestCount{Date: testDate, Count: 50}})
	ctx := context.Background()

	err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
		{Name: "黄瓜", Quantity: d("40"), Price: d("3")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg, _ := store.GetConsumption(ctx, "黄瓜")
	if agg == nil {
		t.Fatal("consumption aggregate was not created")
	}
	want := d("0.4") // 40 / (50 * 2)
	if !agg.AvgRate.Equal(want) {
		t.Errorf("avg rate = %s, want %s", agg.AvgRate, want)
	}
	if agg.Count != 1 {
		t.Errorf("count = %d, want 1", agg.Count)
	}
}

func TestLearnerStoredAvgRateTracksTotal(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{record: &GuestCount{Date: testDate, Count: 10}})
	ctx := context.Background()

	// 大米 is a staple: 7-day usage period, denominator 70.
	for _, qty := range []string{"70", "140", "35"} {
		err := learner.OnApplicationApproved(ctx, testDate, []LineItem{
			{Name: "大米", Quantity: d(qty), Price: d("5")},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		agg, _ := store.GetConsumption(ctx, "大米")
		want := agg.TotalRate.Div(decimal.NewFromInt(int64(agg.Count)))
		if !agg.AvgRate.Sub(want).Abs().LessThan(d("0.000001")) {
			t.Fatalf("stored avg %s drifted from total/count %s", agg.AvgRate, want)
		}
	}
}

func TestLearnerRejectsInvalidInput(t *testing.T) {
	store := NewMemoryStore()
	learner := NewLearner(store, stubCounts{})
	ctx := context.Background()

	err := learner.OnApplicationApproved(ctx, time.Time{}, []LineItem{
		{Name: "大米", Quantity: d("1"), Price: d("1")},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero date: err = %v, want ErrInvalidInput", err)
	}

	err = learner.OnApplicationApproved(ctx, testDate, []LineItem{
		{Name: "大米", Quantity: d("1"), Price: d("1")},
		{Name: "", Quantity: d("1"), Price: d("1")},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty name: err = %v, want ErrInvalidInput", err)
	}
	// Validation happens before any mutation.
	if agg, _ := store.GetPrice(ctx, "大米"); agg != nil {
		t.Error("aggregate mutated despite invalid input")
	}
}

func TestLearnerPropagatesLookupFailure(t *testing.T) {
	store := NewMemoryStore()
	lookupErr := errors.New("store unavailable")
	learner := NewLearner(store, stubCounts{err: lookupErr})

	err := learner.OnApplicationApproved(context.Background(), testDate, []LineItem{
		{Name: "大米", Quantity: d("1"), Price: d("1")},
	})
	if !errors.Is(err, lookupErr) {
		t.Errorf("err = %v, want wrapped lookup failure", err)
	}
}
