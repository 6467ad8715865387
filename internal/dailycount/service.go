package dailycount

import (
	"context"
	"errors"
	"time"

	"github.com/harryli1024/hotel-purchase/internal/ai"
)

var ErrInvalidRecord = errors.New("date and a non-negative count are required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, from, to *time.Time, limit int) ([]Record, Stats, error) {
	if limit <= 0 {
		limit = 100
	}
	records, err := s.repo.List(ctx, from, to, limit)
	if err != nil {
		return nil, Stats{}, err
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, Stats{}, err
	}
	return records, stats, nil
}

func (s *Service) Get(ctx context.Context, date time.Time) (*Record, error) {
	return s.repo.Get(ctx, date)
}

func (s *Service) Save(ctx context.Context, date time.Time, count int, notes *string, recorderID int) error {
	if date.IsZero() || count < 0 {
		return ErrInvalidRecord
	}
	return s.repo.Upsert(ctx, Record{
		RecordDate: date,
		GuestCount: count,
		Notes:      notes,
		RecorderID: recorderID,
	})
}

// BatchEntry is one row of a bulk upload.
type BatchEntry struct {
	Date  time.Time
	Count int
	Notes *string
}

// SaveBatch stores every valid entry and reports how many were saved.
// Invalid rows are skipped, not fatal, matching the bulk-upload contract.
func (s *Service) SaveBatch(ctx context.Context, entries []BatchEntry, recorderID int) (int, error) {
	saved := 0
	for _, entry := range entries {
		if entry.Date.IsZero() || entry.Count < 0 {
			continue
		}
		err := s.repo.Upsert(ctx, Record{
			RecordDate: entry.Date,
			GuestCount: entry.Count,
			Notes:      entry.Notes,
			RecorderID: recorderID,
		})
		if err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, date time.Time) error {
	return s.repo.Delete(ctx, date)
}

// NearestWithin implements ai.GuestCountLookup on top of the repository.
func (s *Service) NearestWithin(ctx context.Context, target time.Time, windowDays int) (*ai.GuestCount, error) {
	rec, err := s.repo.Nearest(ctx, target, windowDays)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &ai.GuestCount{Date: rec.RecordDate, Count: rec.GuestCount}, nil
}
