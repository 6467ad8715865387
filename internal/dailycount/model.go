package dailycount

import "time"

// Record is one day's occupancy figure.
type Record struct {
	ID         int       `json:"id"`
	RecordDate time.Time `json:"record_date"`
	GuestCount int       `json:"guest_count"`
	Notes      *string   `json:"notes,omitempty"`
	RecorderID int       `json:"recorder_id"`
}

// Stats summarizes all recorded days.
type Stats struct {
	TotalDays int `json:"totalDays"`
	AvgCount  int `json:"avgCount"`
	MaxCount  int `json:"maxCount"`
	MinCount  int `json:"minCount"`
}
