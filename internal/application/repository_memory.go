package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type MemoryRepository struct {
	mu     sync.Mutex
	apps   map[int]Application
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{apps: make(map[int]Application), nextID: 1}
}

func (r *MemoryRepository) Save(ctx context.Context, app *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app.ID = r.nextID
	app.CreatedAt = time.Now()
	r.nextID++
	for i := range app.Items {
		app.Items[i].ID = r.nextID
		app.Items[i].ApplicationID = app.ID
		r.nextID++
	}
	r.apps[app.ID] = cloneApp(*app)
	return nil
}

func cloneApp(app Application) Application {
	app.Items = append([]Item(nil), app.Items...)
	app.Attachments = append([]Attachment(nil), app.Attachments...)
	return app
}

func (r *MemoryRepository) matches(app Application, filter ListFilter) bool {
	if filter.Status != "" && app.Status != filter.Status {
		return false
	}
	if filter.PurchaserID != 0 && app.PurchaserID != filter.PurchaserID {
		return false
	}
	if filter.DateFrom != nil && app.PurchaseDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && app.PurchaseDate.After(*filter.DateTo) {
		return false
	}
	if filter.ItemName != "" {
		found := false
		for _, item := range app.Items {
			if strings.Contains(item.ItemName, filter.ItemName) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var apps []Application
	for _, app := range r.apps {
		if r.matches(app, filter) {
			apps = append(apps, cloneApp(app))
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID > apps[j].ID })

	total := len(apps)
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(apps) {
		return nil, total, nil
	}
	end := start + filter.PageSize
	if end > len(apps) {
		end = len(apps)
	}
	return apps[start:end], total, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id int) (*Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	app = cloneApp(app)
	return &app, nil
}

func (r *MemoryRepository) UpdateReview(ctx context.Context, id int, status string, reviewerID int, notes, accountingStatus *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil
	}
	now := time.Now()
	app.Status = status
	app.ReviewerID = &reviewerID
	app.ReviewNotes = notes
	app.AccountingStatus = accountingStatus
	app.ReviewTime = &now
	r.apps[id] = app
	return nil
}

func (r *MemoryRepository) UpdateAccounting(ctx context.Context, id int, person string, notes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil
	}
	now := time.Now()
	done := AccountingDone
	app.AccountingStatus = &done
	app.AccountingPerson = &person
	app.AccountingNotes = notes
	app.AccountingTime = &now
	r.apps[id] = app
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.apps, id)
	return nil
}

func (r *MemoryRepository) AddAttachment(ctx context.Context, att *Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[att.ApplicationID]
	if !ok {
		return nil
	}
	att.ID = r.nextID
	att.CreatedAt = time.Now()
	r.nextID++
	app.Attachments = append(app.Attachments, *att)
	r.apps[att.ApplicationID] = app
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context, purchaserID int, status string) (Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{ApprovedAmount: decimal.Zero}
	for _, app := range r.apps {
		if purchaserID != 0 && app.PurchaserID != purchaserID {
			continue
		}
		if status != "" && app.Status != status {
			continue
		}
		stats.Total++
		switch app.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
			stats.ApprovedAmount = stats.ApprovedAmount.Add(app.TotalAmount)
		case StatusRejected:
			stats.Rejected++
		}
		if app.AccountingStatus != nil && *app.AccountingStatus == AccountingWaiting {
			stats.WaitingAccounting++
		}
	}
	return stats, nil
}
