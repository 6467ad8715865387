package dailycount

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, from, to *time.Time, limit int) ([]Record, error) {
	query := `
		SELECT id, record_date, guest_count, notes, COALESCE(recorder_id, 0)
		FROM daily_counts
		WHERE ($1::date IS NULL OR record_date >= $1)
		  AND ($2::date IS NULL OR record_date <= $2)
		ORDER BY record_date DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RecordDate, &rec.GuestCount, &rec.Notes, &rec.RecorderID); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, date time.Time) (*Record, error) {
	query := `
		SELECT id, record_date, guest_count, notes, COALESCE(recorder_id, 0)
		FROM daily_counts
		WHERE record_date = $1
	`
	rec := &Record{}
	err := r.db.QueryRow(ctx, query, date).Scan(
		&rec.ID, &rec.RecordDate, &rec.GuestCount, &rec.Notes, &rec.RecorderID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, record Record) error {
	query := `
		INSERT INTO daily_counts (record_date, guest_count, notes, recorder_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (record_date) DO UPDATE SET
			guest_count = EXCLUDED.guest_count,
			notes = EXCLUDED.notes,
			recorder_id = EXCLUDED.recorder_id
	`
	_, err := r.db.Exec(ctx, query, record.RecordDate, record.GuestCount, record.Notes, record.RecorderID)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, date time.Time) error {
	_, err := r.db.Exec(ctx, `DELETE FROM daily_counts WHERE record_date = $1`, date)
	return err
}

func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(guest_count)), 0),
		       COALESCE(MAX(guest_count), 0),
		       COALESCE(MIN(guest_count), 0)
		FROM daily_counts
	`
	var stats Stats
	err := r.db.QueryRow(ctx, query).Scan(&stats.TotalDays, &stats.AvgCount, &stats.MaxCount, &stats.MinCount)
	return stats, err
}

// Nearest orders by day distance first and date second, which makes the
// earlier of two equidistant records win deterministically.
func (r *PostgresRepository) Nearest(ctx context.Context, target time.Time, windowDays int) (*Record, error) {
	query := `
		SELECT id, record_date, guest_count, notes, COALESCE(recorder_id, 0)
		FROM daily_counts
		WHERE ABS(record_date - $1::date) <= $2
		ORDER BY ABS(record_date - $1::date), record_date
		LIMIT 1
	`
	rec := &Record{}
	err := r.db.QueryRow(ctx, query, target, windowDays).Scan(
		&rec.ID, &rec.RecordDate, &rec.GuestCount, &rec.Notes, &rec.RecorderID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
