package item

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu         sync.Mutex
	categories map[int]Category
	items      map[int]CommonItem
	nextID     int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		categories: make(map[int]Category),
		items:      make(map[int]CommonItem),
		nextID:     1,
	}
}

func (r *MemoryRepository) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	categories := make([]Category, 0, len(r.categories))
	for _, cat := range r.categories {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (r *MemoryRepository) SaveCategory(ctx context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.nextID
	r.nextID++
	r.categories[category.ID] = *category
	return nil
}

func (r *MemoryRepository) UpdateCategory(ctx context.Context, category Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; ok {
		r.categories[category.ID] = category
	}
	return nil
}

func (r *MemoryRepository) DeleteCategory(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	for itemID, it := range r.items {
		if it.CategoryID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *MemoryRepository) ListItems(ctx context.Context, categoryID int) ([]CommonItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []CommonItem
	for _, it := range r.items {
		if categoryID != 0 && it.CategoryID != categoryID {
			continue
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *MemoryRepository) FindItemByName(ctx context.Context, name string) (*CommonItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ItemName == name {
			it := it
			return &it, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) SaveItem(ctx context.Context, item *CommonItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.nextID
	r.nextID++
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryRepository) UpdateItem(ctx context.Context, item CommonItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		r.items[item.ID] = item
	}
	return nil
}

func (r *MemoryRepository) DeleteItem(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
