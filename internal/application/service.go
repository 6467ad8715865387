package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harryli1024/hotel-purchase/internal/ai"
	"github.com/harryli1024/hotel-purchase/internal/auth"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("application not found")
	ErrForbidden     = errors.New("not allowed")
	ErrInvalidState  = errors.New("application is not in the required state")
)

const defaultPageSize = 10

type Service struct {
	repo    Repository
	store   ai.Store
	learner *ai.Learner
	advisor *ai.Advisor
	logger  *zap.Logger
}

func NewService(repo Repository, store ai.Store, learner *ai.Learner, advisor *ai.Advisor, logger *zap.Logger) *Service {
	return &Service{repo: repo, store: store, learner: learner, advisor: advisor, logger: logger}
}

// newAppNo builds a human-readable application number: CG + date + 3 random digits.
func newAppNo(date time.Time) string {
	return fmt.Sprintf("CG%s%03d", date.Format("20060102"), rand.Intn(1000))
}

type ItemInput struct {
	ItemName string          `json:"itemName"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

func (s *Service) Submit(ctx context.Context, purchaserID int, purchaserName string, purchaseDate time.Time, notes *string, items []ItemInput) (*Application, error) {
	if purchaseDate.IsZero() || len(items) == 0 {
		return nil, ErrMissingFields
	}

	app := &Application{
		AppNo:         newAppNo(purchaseDate),
		PurchaserID:   purchaserID,
		PurchaserName: purchaserName,
		PurchaseDate:  purchaseDate,
		Notes:         notes,
		Status:        StatusPending,
		TotalAmount:   decimal.Zero,
	}
	for _, in := range items {
		if in.ItemName == "" || in.Quantity.LessThanOrEqual(decimal.Zero) || in.Price.IsNegative() {
			return nil, ErrMissingFields
		}
		subtotal := in.Quantity.Mul(in.Price)
		app.TotalAmount = app.TotalAmount.Add(subtotal)
		app.Items = append(app.Items, Item{
			ItemName: in.ItemName,
			Quantity: in.Quantity,
			Unit:     in.Unit,
			Price:    in.Price,
			Subtotal: subtotal,
		})
	}

	if err := s.repo.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return app, nil
}

// annotate fills in the advisory text for a pending application. Advisory
// failures must not break listing, so they are logged and swallowed.
func (s *Service) annotate(ctx context.Context, app *Application) {
	if app.Status != StatusPending {
		return
	}
	items := make([]ai.LineItem, len(app.Items))
	for i, item := range app.Items {
		items[i] = ai.LineItem{
			Name:     item.ItemName,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Price:    item.Price,
		}
	}
	advisories, err := s.advisor.Generate(ctx, app.PurchaseDate, items)
	if err != nil {
		s.logger.Warn("advisory generation failed",
			zap.Int("applicationID", app.ID), zap.Error(err))
		return
	}
	if len(advisories) == 0 {
		return
	}
	text := strings.Join(advisories, "\n")
	app.Advisory = &text
}

// List pages the application board. Purchasers only ever see their own
// applications; finance only sees approved ones; boss and admin see everything.
func (s *Service) List(ctx context.Context, actorID int, actorRole string, filter ListFilter) ([]Application, int, error) {
	switch actorRole {
	case auth.RolePurchaser:
		filter.PurchaserID = actorID
	case auth.RoleFinance:
		filter.Status = StatusApproved
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}

	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for i := range apps {
		s.annotate(ctx, &apps[i])
	}
	return apps, total, nil
}

func (s *Service) Get(ctx context.Context, id, actorID int, actorRole string) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrNotFound
	}
	if actorRole == auth.RolePurchaser && app.PurchaserID != actorID {
		return nil, ErrForbidden
	}
	s.annotate(ctx, app)
	return app, nil
}

// Review settles a pending application. On approval the line items are fed
// into the learning aggregates; a learning failure is logged but does not
// undo the approval.
func (s *Service) Review(ctx context.Context, id, reviewerID int, approve bool, notes *string) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrNotFound
	}
	if app.Status != StatusPending {
		return nil, ErrInvalidState
	}

	status := StatusRejected
	var accountingStatus *string
	if approve {
		status = StatusApproved
		waiting := AccountingWaiting
		accountingStatus = &waiting
	}

	if err := s.repo.UpdateReview(ctx, id, status, reviewerID, notes, accountingStatus); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	if approve {
		items := make([]ai.LineItem, len(app.Items))
		for i, item := range app.Items {
			items[i] = ai.LineItem{
				Name:     item.ItemName,
				Quantity: item.Quantity,
				Unit:     item.Unit,
				Price:    item.Price,
			}
		}
		if err := s.learner.OnApplicationApproved(ctx, app.PurchaseDate, items); err != nil {
			s.logger.Error("learning from approved application failed",
				zap.Int("applicationID", id), zap.Error(err))
		}
	}

	return s.repo.Get(ctx, id)
}

// MarkAccounted records that finance booked an approved application.
func (s *Service) MarkAccounted(ctx context.Context, id int, person string, notes *string) error {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrNotFound
	}
	if app.Status != StatusApproved {
		return ErrInvalidState
	}
	return s.repo.UpdateAccounting(ctx, id, person, notes)
}

// Delete removes an application with its line items and attachment records.
// The route restricts this to boss and admin.
func (s *Service) Delete(ctx context.Context, id int) error {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddAttachment(ctx context.Context, att *Attachment) error {
	return s.repo.AddAttachment(ctx, att)
}

// Stats is scoped like List: purchasers count only their own applications,
// finance only approved ones.
func (s *Service) Stats(ctx context.Context, actorID int, actorRole string) (Stats, error) {
	purchaserID, status := 0, ""
	switch actorRole {
	case auth.RolePurchaser:
		purchaserID = actorID
	case auth.RoleFinance:
		status = StatusApproved
	}

	stats, err := s.repo.Stats(ctx, purchaserID, status)
	if err != nil {
		return Stats{}, err
	}
	learned, err := s.store.CountPrices(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.LearnedItems = learned
	return stats, nil
}
