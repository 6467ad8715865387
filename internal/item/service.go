package item

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrItemExists    = errors.New("item already exists")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CategoryWithItems is the submission-form payload: a category with every
// common item filed under it.
type CategoryWithItems struct {
	Category
	Items []CommonItem `json:"items"`
}

func (s *Service) ListCategories(ctx context.Context) ([]CategoryWithItems, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, 0)
	if err != nil {
		return nil, err
	}

	grouped := make(map[int][]CommonItem)
	for _, it := range items {
		grouped[it.CategoryID] = append(grouped[it.CategoryID], it)
	}

	result := make([]CategoryWithItems, len(categories))
	for i, cat := range categories {
		result[i] = CategoryWithItems{Category: cat, Items: grouped[cat.ID]}
	}
	return result, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string, sortOrder int) (*Category, error) {
	if name == "" {
		return nil, ErrMissingFields
	}
	category := &Category{Name: name, SortOrder: sortOrder}
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int, name string, sortOrder int) error {
	if name == "" {
		return ErrMissingFields
	}
	return s.repo.UpdateCategory(ctx, Category{ID: id, Name: name, SortOrder: sortOrder})
}

func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, categoryID int) ([]CommonItem, error) {
	return s.repo.ListItems(ctx, categoryID)
}

func (s *Service) CreateItem(ctx context.Context, categoryID int, name, unit string, lastPrice decimal.Decimal) (*CommonItem, error) {
	if name == "" || categoryID <= 0 {
		return nil, ErrMissingFields
	}

	existing, err := s.repo.FindItemByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrItemExists
	}

	item := &CommonItem{CategoryID: categoryID, ItemName: name, Unit: unit, LastPrice: lastPrice}
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, item CommonItem) error {
	if item.ItemName == "" {
		return ErrMissingFields
	}
	existing, err := s.repo.FindItemByName(ctx, item.ItemName)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != item.ID {
		return ErrItemExists
	}
	return s.repo.UpdateItem(ctx, item)
}

func (s *Service) DeleteItem(ctx context.Context, id int) error {
	return s.repo.DeleteItem(ctx, id)
}
