package dailycount

import (
	"context"
	"time"
)

// Repository defines the data-access contract for daily guest counts.
type Repository interface {
	List(ctx context.Context, from, to *time.Time, limit int) ([]Record, error)
	Get(ctx context.Context, date time.Time) (*Record, error)
	// Upsert inserts the record or overwrites the one already stored for the
	// same date.
	Upsert(ctx context.Context, record Record) error
	Delete(ctx context.Context, date time.Time) error
	Stats(ctx context.Context) (Stats, error)
	// Nearest returns the record whose date is closest to target within
	// windowDays, the earlier date winning ties; (nil, nil) when none falls
	// inside the window.
	Nearest(ctx context.Context, target time.Time, windowDays int) (*Record, error)
}
