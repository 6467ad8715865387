package item

import "github.com/shopspring/decimal"

// Category groups common items on the submission form.
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

// CommonItem is a frequently purchased item with its last known price,
// used to prefill application line items.
type CommonItem struct {
	ID         int             `json:"id"`
	CategoryID int             `json:"categoryId"`
	ItemName   string          `json:"itemName"`
	Unit       string          `json:"unit"`
	LastPrice  decimal.Decimal `json:"lastPrice"`
}
