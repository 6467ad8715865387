package application

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

const appColumns = `
	id, app_no, purchaser_id, purchaser_name, purchase_date, notes,
	total_amount, status, review_time, reviewer_id, review_notes,
	accounting_status, accounting_time, accounting_person, accounting_notes,
	created_at`

func scanApp(row pgx.Row) (*Application, error) {
	app := &Application{}
	err := row.Scan(
		&app.ID, &app.AppNo, &app.PurchaserID, &app.PurchaserName, &app.PurchaseDate, &app.Notes,
		&app.TotalAmount, &app.Status, &app.ReviewTime, &app.ReviewerID, &app.ReviewNotes,
		&app.AccountingStatus, &app.AccountingTime, &app.AccountingPerson, &app.AccountingNotes,
		&app.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *PostgresRepository) Save(ctx context.Context, app *Application) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO applications (app_no, purchaser_id, purchaser_name, purchase_date, notes, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		app.AppNo, app.PurchaserID, app.PurchaserName, app.PurchaseDate,
		app.Notes, app.TotalAmount, app.Status,
	).Scan(&app.ID, &app.CreatedAt)
	if err != nil {
		return err
	}

	for i := range app.Items {
		item := &app.Items[i]
		item.ApplicationID = app.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO application_items (application_id, item_name, quantity, unit, price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, app.ID, item.ItemName, item.Quantity, item.Unit, item.Price, item.Subtotal).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	where := `
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = 0 OR purchaser_id = $2)
		  AND ($3::date IS NULL OR purchase_date >= $3)
		  AND ($4::date IS NULL OR purchase_date <= $4)
		  AND ($5 = '' OR EXISTS (
			SELECT 1 FROM application_items i
			WHERE i.application_id = applications.id
			  AND i.item_name ILIKE '%' || $5 || '%'
		  ))
	`
	args := []any{filter.Status, filter.PurchaserID, filter.DateFrom, filter.DateTo, filter.ItemName}

	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := `SELECT ` + appColumns + ` FROM applications` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $6 OFFSET $7
	`
	rows, err := r.db.Query(ctx, query, append(args, filter.PageSize, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		err := rows.Scan(
			&app.ID, &app.AppNo, &app.PurchaserID, &app.PurchaserName, &app.PurchaseDate, &app.Notes,
			&app.TotalAmount, &app.Status, &app.ReviewTime, &app.ReviewerID, &app.ReviewNotes,
			&app.AccountingStatus, &app.AccountingTime, &app.AccountingPerson, &app.AccountingNotes,
			&app.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range apps {
		if apps[i].Items, err = r.loadItems(ctx, apps[i].ID); err != nil {
			return nil, 0, err
		}
		if apps[i].Attachments, err = r.loadAttachments(ctx, apps[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return apps, total, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, appID int) ([]Item, error) {
	query := `
		SELECT id, application_id, item_name, quantity, COALESCE(unit, ''), price, subtotal
		FROM application_items
		WHERE application_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.ApplicationID, &item.ItemName, &item.Quantity, &item.Unit, &item.Price, &item.Subtotal)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresRepository) loadAttachments(ctx context.Context, appID int) ([]Attachment, error) {
	query := `
		SELECT id, application_id, file_name, file_path, COALESCE(file_type, ''), COALESCE(file_size, 0), created_at
		FROM attachments
		WHERE application_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var att Attachment
		err := rows.Scan(&att.ID, &att.ApplicationID, &att.FileName, &att.FilePath, &att.FileType, &att.FileSize, &att.CreatedAt)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (*Application, error) {
	query := `SELECT ` + appColumns + ` FROM applications WHERE id = $1`
	app, err := scanApp(r.db.QueryRow(ctx, query, id))
	if err != nil || app == nil {
		return app, err
	}

	if app.Items, err = r.loadItems(ctx, id); err != nil {
		return nil, err
	}
	if app.Attachments, err = r.loadAttachments(ctx, id); err != nil {
		return nil, err
	}
	return app, nil
}

func (r *PostgresRepository) UpdateReview(ctx context.Context, id int, status string, reviewerID int, notes, accountingStatus *string) error {
	query := `
		UPDATE applications
		SET status = $2, reviewer_id = $3, review_notes = $4,
		    accounting_status = $5, review_time = $6
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, status, reviewerID, notes, accountingStatus, time.Now())
	return err
}

func (r *PostgresRepository) UpdateAccounting(ctx context.Context, id int, person string, notes *string) error {
	query := `
		UPDATE applications
		SET accounting_status = $2, accounting_person = $3, accounting_notes = $4, accounting_time = $5
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, AccountingDone, person, notes, time.Now())
	return err
}

// Delete relies on ON DELETE CASCADE for line items and attachments.
func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) AddAttachment(ctx context.Context, att *Attachment) error {
	query := `
		INSERT INTO attachments (application_id, file_name, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		att.ApplicationID, att.FileName, att.FilePath, att.FileType, att.FileSize,
	).Scan(&att.ID, &att.CreatedAt)
}

func (r *PostgresRepository) Stats(ctx context.Context, purchaserID int, status string) (Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'rejected'),
		       COUNT(*) FILTER (WHERE accounting_status = 'waiting'),
		       COALESCE(SUM(total_amount) FILTER (WHERE status = 'approved'), 0)
		FROM applications
		WHERE ($1 = 0 OR purchaser_id = $1)
		  AND ($2 = '' OR status = $2)
	`
	var stats Stats
	err := r.db.QueryRow(ctx, query, purchaserID, status).Scan(
		&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected,
		&stats.WaitingAccounting, &stats.ApprovedAmount,
	)
	return stats, err
}
