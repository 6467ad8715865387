package ai

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Usage-period buckets in days. An item's bucket sets how long one purchase
// is expected to last, which converts quantities into per-guest-per-day rates.
const (
	StapleDays       = 7
	FreshDays        = 2
	ProteinDays      = 3
	CondimentDays    = 30
	DefaultUsageDays = 3
)

// Advisory policy knobs. Tunable without touching the algorithms.
const (
	// GuestCountWindowDays is the date-proximity tolerance when associating a
	// purchase date with an occupancy record.
	GuestCountWindowDays = 3
	// MinConsumptionSamples is the minimum fold count before the consumption
	// rate is trusted enough to flag anything.
	MinConsumptionSamples = 3
)

// ConsumptionAlertMultiplier flags quantities above this multiple of the
// projected consumption.
var ConsumptionAlertMultiplier = decimal.RequireFromString("1.5")

var usageBuckets = []struct {
	days     int
	keywords []string
}{
	{StapleDays, []string{"米", "面", "粉"}},
	{FreshDays, []string{"菜", "叶", "瓜"}},
	{ProteinDays, []string{"肉", "鱼", "虾", "蛋"}},
	{CondimentDays, []string{"调料", "酱", "油", "盐"}},
}

// EstimateUsageDays classifies an item name into a usage-period bucket.
// Buckets are checked in a fixed order and the first keyword match wins.
func EstimateUsageDays(itemName string) int {
	name := strings.ToLower(itemName)
	for _, bucket := range usageBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(name, kw) {
				return bucket.days
			}
		}
	}
	return DefaultUsageDays
}
