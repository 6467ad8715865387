package item

import "context"

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	SaveCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category Category) error
	// DeleteCategory removes the category and every item under it.
	DeleteCategory(ctx context.Context, id int) error

	ListItems(ctx context.Context, categoryID int) ([]CommonItem, error)
	// FindItemByName returns (nil, nil) when no such item exists.
	FindItemByName(ctx context.Context, name string) (*CommonItem, error)
	SaveItem(ctx context.Context, item *CommonItem) error
	UpdateItem(ctx context.Context, item CommonItem) error
	DeleteItem(ctx context.Context, id int) error
}
