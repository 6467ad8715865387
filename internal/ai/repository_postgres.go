package ai

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// --------------------------------------------------
// PRICE AGGREGATES
// --------------------------------------------------

func (s *PostgresStore) GetPrice(ctx context.Context, itemName string) (*PriceAggregate, error) {
	query := `
		SELECT item_name, total_price, count, min_price, max_price, alert_threshold
		FROM price_history
		WHERE item_name = $1
	`
	agg := &PriceAggregate{}
	err := s.db.QueryRow(ctx, query, itemName).Scan(
		&agg.ItemName,
		&agg.TotalPrice,
		&agg.Count,
		&agg.MinPrice,
		&agg.MaxPrice,
		&agg.AlertThreshold,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *PostgresStore) ListPrices(ctx context.Context) ([]PriceAggregate, error) {
	query := `
		SELECT item_name, total_price, count, min_price, max_price, alert_threshold
		FROM price_history
		ORDER BY item_name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []PriceAggregate
	for rows.Next() {
		var agg PriceAggregate
		if err := rows.Scan(
			&agg.ItemName,
			&agg.TotalPrice,
			&agg.Count,
			&agg.MinPrice,
			&agg.MaxPrice,
			&agg.AlertThreshold,
		); err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}

// FoldPrice is a single upsert statement so concurrent folds of the same item
// serialize on the row instead of racing a read-modify-write.
func (s *PostgresStore) FoldPrice(ctx context.Context, itemName string, price decimal.Decimal) error {
	query := `
		INSERT INTO price_history (item_name, total_price, count, min_price, max_price)
		VALUES ($1, $2, 1, $2, $2)
		ON CONFLICT (item_name) DO UPDATE SET
			total_price = price_history.total_price + EXCLUDED.total_price,
			count = price_history.count + 1,
			min_price = LEAST(price_history.min_price, EXCLUDED.min_price),
			max_price = GREATEST(price_history.max_price, EXCLUDED.max_price)
	`
	_, err := s.db.Exec(ctx, query, itemName, price)
	return err
}

func (s *PostgresStore) MergePrice(ctx context.Context, agg PriceAggregate) error {
	query := `
		INSERT INTO price_history (item_name, total_price, count, min_price, max_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_name) DO UPDATE SET
			total_price = price_history.total_price + EXCLUDED.total_price,
			count = price_history.count + EXCLUDED.count,
			min_price = LEAST(price_history.min_price, EXCLUDED.min_price),
			max_price = GREATEST(price_history.max_price, EXCLUDED.max_price)
	`
	_, err := s.db.Exec(ctx, query,
		agg.ItemName, agg.TotalPrice, agg.Count, agg.MinPrice, agg.MaxPrice,
	)
	return err
}

func (s *PostgresStore) UpsertPrice(ctx context.Context, agg PriceAggregate) error {
	query := `
		INSERT INTO price_history (item_name, total_price, count, min_price, max_price, alert_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_name) DO UPDATE SET
			total_price = EXCLUDED.total_price,
			count = EXCLUDED.count,
			min_price = EXCLUDED.min_price,
			max_price = EXCLUDED.max_price,
			alert_threshold = EXCLUDED.alert_threshold
	`
	_, err := s.db.Exec(ctx, query,
		agg.ItemName, agg.TotalPrice, agg.Count, agg.MinPrice, agg.MaxPrice, agg.Threshold(),
	)
	return err
}

func (s *PostgresStore) DeletePrice(ctx context.Context, itemName string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM price_history WHERE item_name = $1`, itemName)
	return err
}

func (s *PostgresStore) CountPrices(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM price_history`).Scan(&count)
	return count, err
}

// --------------------------------------------------
// CONSUMPTION AGGREGATES
// --------------------------------------------------

func (s *PostgresStore) GetConsumption(ctx context.Context, itemName string) (*ConsumptionAggregate, error) {
	query := `
		SELECT item_name, total_rate, count, avg_rate
		FROM consumption_rates
		WHERE item_name = $1
	`
	agg := &ConsumptionAggregate{}
	err := s.db.QueryRow(ctx, query, itemName).Scan(
		&agg.ItemName,
		&agg.TotalRate,
		&agg.Count,
		&agg.AvgRate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *PostgresStore) ListConsumption(ctx context.Context) ([]ConsumptionAggregate, error) {
	query := `
		SELECT item_name, total_rate, count, avg_rate
		FROM consumption_rates
		ORDER BY item_name
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggs []ConsumptionAggregate
	for rows.Next() {
		var agg ConsumptionAggregate
		if err := rows.Scan(&agg.ItemName, &agg.TotalRate, &agg.Count, &agg.AvgRate); err != nil {
			return nil, err
		}
		aggs = append(aggs, agg)
	}
	return aggs, rows.Err()
}

func (s *PostgresStore) FoldConsumption(ctx context.Context, itemName string, rate decimal.Decimal) error {
	query := `
		INSERT INTO consumption_rates (item_name, total_rate, count, avg_rate)
		VALUES ($1, $2, 1, $2)
		ON CONFLICT (item_name) DO UPDATE SET
			total_rate = consumption_rates.total_rate + EXCLUDED.total_rate,
			count = consumption_rates.count + 1,
			avg_rate = (consumption_rates.total_rate + EXCLUDED.total_rate) / (consumption_rates.count + 1)
	`
	_, err := s.db.Exec(ctx, query, itemName, rate)
	return err
}

func (s *PostgresStore) MergeConsumption(ctx context.Context, agg ConsumptionAggregate) error {
	query := `
		INSERT INTO consumption_rates (item_name, total_rate, count, avg_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_name) DO UPDATE SET
			total_rate = consumption_rates.total_rate + EXCLUDED.total_rate,
			count = consumption_rates.count + EXCLUDED.count,
			avg_rate = CASE
				WHEN consumption_rates.count + EXCLUDED.count > 0
				THEN (consumption_rates.total_rate + EXCLUDED.total_rate)
					/ (consumption_rates.count + EXCLUDED.count)
				ELSE 0
			END
	`
	_, err := s.db.Exec(ctx, query, agg.ItemName, agg.TotalRate, agg.Count, agg.AvgRate)
	return err
}

func (s *PostgresStore) UpsertConsumption(ctx context.Context, agg ConsumptionAggregate) error {
	query := `
		INSERT INTO consumption_rates (item_name, total_rate, count, avg_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_name) DO UPDATE SET
			total_rate = EXCLUDED.total_rate,
			count = EXCLUDED.count,
			avg_rate = EXCLUDED.avg_rate
	`
	_, err := s.db.Exec(ctx, query, agg.ItemName, agg.TotalRate, agg.Count, agg.AvgRate)
	return err
}

func (s *PostgresStore) DeleteConsumption(ctx context.Context, itemName string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM consumption_rates WHERE item_name = $1`, itemName)
	return err
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `TRUNCATE TABLE price_history, consumption_rates`)
	return err
}
