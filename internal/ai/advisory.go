package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Advisor produces human-readable anomaly annotations for an application's
// line items. It only reads aggregate state and never mutates it.
type Advisor struct {
	store  Store
	counts GuestCountLookup
}

func NewAdvisor(store Store, counts GuestCountLookup) *Advisor {
	return &Advisor{store: store, counts: counts}
}

// Generate evaluates every line item in order, running three independent
// checks per item: price deviation, consumption deviation, and novelty.
// The result preserves line-item order; an empty result means no advisory.
func (a *Advisor) Generate(ctx context.Context, purchaseDate time.Time, items []LineItem) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// Every item resolves against the same purchase date, so one lookup
	// serves the whole application.
	record, err := a.counts.NearestWithin(ctx, purchaseDate, GuestCountWindowDays)
	if err != nil {
		return nil, fmt.Errorf("guest count lookup: %w", err)
	}

	var advisories []string
	for _, item := range items {
		priceAgg, err := a.store.GetPrice(ctx, item.Name)
		if err != nil {
			return nil, err
		}
		if priceAgg != nil && priceAgg.Count > 0 {
			if msg := priceAdvisory(item, *priceAgg); msg != "" {
				advisories = append(advisories, msg)
			}
		}

		if record != nil && record.Count > 0 {
			rateAgg, err := a.store.GetConsumption(ctx, item.Name)
			if err != nil {
				return nil, err
			}
			if rateAgg != nil && rateAgg.Count >= MinConsumptionSamples {
				if msg := consumptionAdvisory(item, *rateAgg, record.Count); msg != "" {
					advisories = append(advisories, msg)
				}
			}
		}

		if priceAgg == nil {
			advisories = append(advisories,
				fmt.Sprintf("🆕 【%s】是首次采购的新物品，请注意核实", item.Name))
		}
	}

	return advisories, nil
}

// priceAdvisory fires when the unit price leaves the band
// avg*(1±threshold/100). At most one of high/low fires per item.
func priceAdvisory(item LineItem, agg PriceAggregate) string {
	avg := agg.Avg()
	if avg.IsZero() {
		return ""
	}

	threshold := agg.Threshold()
	upper := avg.Mul(hundred.Add(threshold)).Div(hundred)
	lower := avg.Mul(hundred.Sub(threshold)).Div(hundred)

	switch {
	case item.Price.GreaterThan(upper):
		percent := item.Price.Sub(avg).Div(avg).Mul(hundred)
		return fmt.Sprintf("⚠️ 【%s】单价 ¥%s 高于历史均价 ¥%s（高出%s%%）",
			item.Name, item.Price.StringFixed(2), avg.StringFixed(2), percent.StringFixed(1))
	case item.Price.LessThan(lower):
		percent := avg.Sub(item.Price).Div(avg).Mul(hundred)
		return fmt.Sprintf("💡 【%s】单价 ¥%s 低于历史均价 ¥%s（低%s%%）",
			item.Name, item.Price.StringFixed(2), avg.StringFixed(2), percent.StringFixed(1))
	}
	return ""
}

// consumptionAdvisory fires when the requested quantity exceeds the projected
// consumption (avg rate × guests × usage days) by the alert multiplier.
func consumptionAdvisory(item LineItem, agg ConsumptionAggregate, guests int) string {
	days := EstimateUsageDays(item.Name)
	expected := agg.AvgRate.Mul(decimal.NewFromInt(int64(guests * days)))
	if expected.IsZero() {
		return ""
	}

	if item.Quantity.GreaterThan(expected.Mul(ConsumptionAlertMultiplier)) {
		percent := item.Quantity.Sub(expected).Div(expected).Mul(hundred)
		return fmt.Sprintf("📊 【%s】数量 %s 高于预期 %s（高出%s%%，基于%d人）",
			item.Name, item.Quantity.String(), expected.StringFixed(1), percent.StringFixed(1), guests)
	}
	return ""
}
