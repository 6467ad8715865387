package dailycount

import (
	"context"
	"sort"
	"sync"
	"time"
)

type MemoryRepository struct {
	mu      sync.Mutex
	records map[string]Record
	nextID  int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record), nextID: 1}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (r *MemoryRepository) List(ctx context.Context, from, to *time.Time, limit int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []Record
	for _, rec := range r.records {
		if from != nil && rec.RecordDate.Before(*from) {
			continue
		}
		if to != nil && rec.RecordDate.After(*to) {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecordDate.After(records[j].RecordDate)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *MemoryRepository) Get(ctx context.Context, date time.Time) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dateKey(date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dateKey(record.RecordDate)
	if existing, ok := r.records[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = r.nextID
		r.nextID++
	}
	r.records[key] = record
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, dateKey(date))
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{}
	sum := 0
	for _, rec := range r.records {
		if stats.TotalDays == 0 || rec.GuestCount > stats.MaxCount {
			stats.MaxCount = rec.GuestCount
		}
		if stats.TotalDays == 0 || rec.GuestCount < stats.MinCount {
			stats.MinCount = rec.GuestCount
		}
		stats.TotalDays++
		sum += rec.GuestCount
	}
	if stats.TotalDays > 0 {
		stats.AvgCount = (sum + stats.TotalDays/2) / stats.TotalDays
	}
	return stats, nil
}

func (r *MemoryRepository) Nearest(ctx context.Context, target time.Time, windowDays int) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *Record
	bestDiff := 0
	for _, rec := range r.records {
		rec := rec
		diff := dayDiff(rec.RecordDate, target)
		if diff < 0 {
			diff = -diff
		}
		if diff > windowDays {
			continue
		}
		// Earlier date wins ties.
		if best == nil || diff < bestDiff || (diff == bestDiff && rec.RecordDate.Before(best.RecordDate)) {
			best = &rec
			bestDiff = diff
		}
	}
	return best, nil
}

func dayDiff(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ad.Sub(bd).Hours() / 24)
}
