package item

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, sort_order FROM item_categories ORDER BY sort_order, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) SaveCategory(ctx context.Context, category *Category) error {
	query := `INSERT INTO item_categories (name, sort_order) VALUES ($1, $2) RETURNING id`
	return r.db.QueryRow(ctx, query, category.Name, category.SortOrder).Scan(&category.ID)
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category Category) error {
	query := `UPDATE item_categories SET name = $2, sort_order = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.SortOrder)
	return err
}

// DeleteCategory removes the category row and its items in one transaction.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM common_items WHERE category_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM item_categories WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) ListItems(ctx context.Context, categoryID int) ([]CommonItem, error) {
	query := `
		SELECT id, category_id, item_name, unit, last_price
		FROM common_items
		WHERE ($1 = 0 OR category_id = $1)
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CommonItem
	for rows.Next() {
		var it CommonItem
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.ItemName, &it.Unit, &it.LastPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) FindItemByName(ctx context.Context, name string) (*CommonItem, error) {
	query := `
		SELECT id, category_id, item_name, unit, last_price
		FROM common_items
		WHERE item_name = $1
	`
	it := &CommonItem{}
	err := r.db.QueryRow(ctx, query, name).Scan(&it.ID, &it.CategoryID, &it.ItemName, &it.Unit, &it.LastPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

func (r *PostgresRepository) SaveItem(ctx context.Context, item *CommonItem) error {
	query := `
		INSERT INTO common_items (category_id, item_name, unit, last_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query, item.CategoryID, item.ItemName, item.Unit, item.LastPrice).Scan(&item.ID)
}

func (r *PostgresRepository) UpdateItem(ctx context.Context, item CommonItem) error {
	query := `
		UPDATE common_items
		SET category_id = $2, item_name = $3, unit = $4, last_price = $5
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.CategoryID, item.ItemName, item.Unit, item.LastPrice)
	return err
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM common_items WHERE id = $1`, id)
	return err
}
