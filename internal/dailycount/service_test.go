package dailycount

import (
	"context"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, repo *MemoryRepository, date time.Time, count int) {
	t.Helper()
	if err := repo.Upsert(context.Background(), Record{RecordDate: date, GuestCount: count}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestNearestPrefersClosestDate(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, day(2024, 5, 7), 30)
	seed(t, repo, day(2024, 5, 9), 45)
	service := NewService(repo)

	got, err := service.NearestWithin(context.Background(), day(2024, 5, 10), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Count != 45 {
		t.Errorf("got %+v, want the record one day away (45 guests)", got)
	}
}

func TestNearestTieBreaksToEarlierDate(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, day(2024, 5, 8), 30)
	seed(t, repo, day(2024, 5, 12), 45)
	service := NewService(repo)

	// Both records are two days from the target.
	got, err := service.NearestWithin(context.Background(), day(2024, 5, 10), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Count != 30 {
		t.Errorf("got %+v, want the earlier record (30 guests)", got)
	}
}

func TestNearestRespectsWindow(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, day(2024, 5, 1), 30)
	service := NewService(repo)

	got, err := service.NearestWithin(context.Background(), day(2024, 5, 10), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for a record 9 days away", got)
	}

	// Exactly at the window edge still matches.
	got, err = service.NearestWithin(context.Background(), day(2024, 5, 4), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Error("record exactly 3 days away should match")
	}
}

func TestSaveValidatesInput(t *testing.T) {
	service := NewService(NewMemoryRepository())
	ctx := context.Background()

	if err := service.Save(ctx, time.Time{}, 10, nil, 1); err != ErrInvalidRecord {
		t.Errorf("zero date: err = %v, want ErrInvalidRecord", err)
	}
	if err := service.Save(ctx, day(2024, 5, 10), -1, nil, 1); err != ErrInvalidRecord {
		t.Errorf("negative count: err = %v, want ErrInvalidRecord", err)
	}
	if err := service.Save(ctx, day(2024, 5, 10), 0, nil, 1); err != nil {
		t.Errorf("zero guests is a valid record: %v", err)
	}
}

func TestSaveOverwritesSameDate(t *testing.T) {
	repo := NewMemoryRepository()
	service := NewService(repo)
	ctx := context.Background()

	if err := service.Save(ctx, day(2024, 5, 10), 30, nil, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.Save(ctx, day(2024, 5, 10), 50, nil, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := service.Get(ctx, day(2024, 5, 10))
	if rec == nil || rec.GuestCount != 50 {
		t.Errorf("got %+v, want the overwritten count 50", rec)
	}

	records, stats, err := service.List(ctx, nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || stats.TotalDays != 1 {
		t.Errorf("duplicate date produced %d records (stats %+v)", len(records), stats)
	}
}

func TestSaveBatchSkipsInvalidRows(t *testing.T) {
	service := NewService(NewMemoryRepository())

	saved, err := service.SaveBatch(context.Background(), []BatchEntry{
		{Date: day(2024, 5, 1), Count: 20},
		{Date: time.Time{}, Count: 30},
		{Date: day(2024, 5, 2), Count: -5},
		{Date: day(2024, 5, 3), Count: 40},
	}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}
}

func TestListStats(t *testing.T) {
	repo := NewMemoryRepository()
	seed(t, repo, day(2024, 5, 1), 20)
	seed(t, repo, day(2024, 5, 2), 40)
	seed(t, repo, day(2024, 5, 3), 60)
	service := NewService(repo)

	records, stats, err := service.List(context.Background(), nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first.
	if !records[0].RecordDate.Equal(day(2024, 5, 3)) {
		t.Errorf("first record = %v, want newest date", records[0].RecordDate)
	}
	if stats.TotalDays != 3 || stats.AvgCount != 40 || stats.MinCount != 20 || stats.MaxCount != 60 {
		t.Errorf("stats = %+v", stats)
	}
}
