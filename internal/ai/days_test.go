package ai

import "testing"

func TestEstimateUsageDays(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"大米", StapleDays},
		{"面条", StapleDays},
		{"淀粉", StapleDays},
		{"黄瓜", FreshDays},
		{"青菜", FreshDays},
		{"鸡蛋", ProteinDays},
		{"猪肉", ProteinDays},
		{"带鱼", ProteinDays},
		{"酱油", CondimentDays},
		{"食盐", CondimentDays},
		{"毛巾", DefaultUsageDays},
		{"", DefaultUsageDays},
	}

	for _, tc := range cases {
		if got := EstimateUsageDays(tc.name); got != tc.want {
			t.Errorf("EstimateUsageDays(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

// 油菜 contains both a fresh keyword (菜) and a condiment keyword (油); the
// fresh bucket is checked first and wins.
func TestEstimateUsageDaysBucketOrder(t *testing.T) {
	if got := EstimateUsageDays("油菜"); got != FreshDays {
		t.Errorf("EstimateUsageDays(油菜) = %d, want %d", got, FreshDays)
	}
	if got := EstimateUsageDays("米酒"); got != StapleDays {
		t.Errorf("EstimateUsageDays(米酒) = %d, want %d", got, StapleDays)
	}
}
