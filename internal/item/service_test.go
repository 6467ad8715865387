package item

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateItemRejectsDuplicateName(t *testing.T) {
	service := NewService(NewMemoryRepository())
	ctx := context.Background()

	cat, err := service.CreateCategory(ctx, "蔬菜类", 1)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := service.CreateItem(ctx, cat.ID, "黄瓜", "斤", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("create item: %v", err)
	}

	_, err = service.CreateItem(ctx, cat.ID, "黄瓜", "公斤", decimal.NewFromInt(5))
	if !errors.Is(err, ErrItemExists) {
		t.Errorf("err = %v, want ErrItemExists", err)
	}
}

func TestDeleteCategoryCascadesItems(t *testing.T) {
	service := NewService(NewMemoryRepository())
	ctx := context.Background()

	veggies, _ := service.CreateCategory(ctx, "蔬菜类", 1)
	staples, _ := service.CreateCategory(ctx, "主食类", 2)
	if _, err := service.CreateItem(ctx, veggies.ID, "黄瓜", "斤", decimal.NewFromInt(3)); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := service.CreateItem(ctx, staples.ID, "大米", "袋", decimal.NewFromInt(60)); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := service.DeleteCategory(ctx, veggies.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	items, err := service.ListItems(ctx, 0)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].ItemName != "大米" {
		t.Errorf("items = %+v, want only 大米 to survive", items)
	}
}

func TestListCategoriesNestsItems(t *testing.T) {
	service := NewService(NewMemoryRepository())
	ctx := context.Background()

	veggies, _ := service.CreateCategory(ctx, "蔬菜类", 2)
	staples, _ := service.CreateCategory(ctx, "主食类", 1)
	service.CreateItem(ctx, veggies.ID, "黄瓜", "斤", decimal.NewFromInt(3))
	service.CreateItem(ctx, veggies.ID, "油菜", "斤", decimal.NewFromInt(2))
	service.CreateItem(ctx, staples.ID, "大米", "袋", decimal.NewFromInt(60))

	categories, err := service.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	// Categories follow sort order.
	if len(categories) != 2 || categories[0].Name != "主食类" {
		t.Errorf("categories = %+v, want 主食类 first", categories)
	}
	if len(categories[0].Items) != 1 || len(categories[1].Items) != 2 {
		t.Errorf("nested items = %+v", categories)
	}
}

func TestUpdateItemKeepsNameUniqueness(t *testing.T) {
	service := NewService(NewMemoryRepository())
	ctx := context.Background()

	cat, _ := service.CreateCategory(ctx, "蔬菜类", 1)
	cucumber, _ := service.CreateItem(ctx, cat.ID, "黄瓜", "斤", decimal.NewFromInt(3))
	tomato, _ := service.CreateItem(ctx, cat.ID, "番茄", "斤", decimal.NewFromInt(4))

	// Renaming onto an existing name is rejected.
	err := service.UpdateItem(ctx, CommonItem{ID: tomato.ID, CategoryID: cat.ID, ItemName: "黄瓜", Unit: "斤"})
	if !errors.Is(err, ErrItemExists) {
		t.Errorf("err = %v, want ErrItemExists", err)
	}

	// Updating an item without renaming it is fine.
	err = service.UpdateItem(ctx, CommonItem{
		ID: cucumber.ID, CategoryID: cat.ID, ItemName: "黄瓜", Unit: "公斤",
		LastPrice: decimal.NewFromInt(6),
	})
	if err != nil {
		t.Errorf("update without rename: %v", err)
	}
}
