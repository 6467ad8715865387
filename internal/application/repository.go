package application

import (
	"context"
	"time"
)

// ListFilter narrows and pages the application list. Zero values mean
// "no constraint"; PageSize defaults in the service.
type ListFilter struct {
	Status      string
	PurchaserID int
	// ItemName matches applications containing a line item whose name
	// includes this substring.
	ItemName string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

type Repository interface {
	// Save inserts the application with its line items and fills in the ID.
	Save(ctx context.Context, app *Application) error
	// List returns one page of applications plus the unpaged total.
	// Line items and attachments are loaded on every row.
	List(ctx context.Context, filter ListFilter) ([]Application, int, error)
	// Get returns (nil, nil) when no such application exists.
	Get(ctx context.Context, id int) (*Application, error)
	UpdateReview(ctx context.Context, id int, status string, reviewerID int, notes, accountingStatus *string) error
	UpdateAccounting(ctx context.Context, id int, person string, notes *string) error
	Delete(ctx context.Context, id int) error
	AddAttachment(ctx context.Context, att *Attachment) error
	// Stats aggregates the board, optionally narrowed to one purchaser
	// and/or one status.
	Stats(ctx context.Context, purchaserID int, status string) (Stats, error)
}
