package catalog

import "time"

type Product struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	PriceCents           int64     `json:"priceCents"`
	DiscountedPriceCents *int64    `json:"discountedPriceCents,omitempty"`
	StockQuantity        int       `json:"stockQuantity"`
	InStock              bool      `json:"inStock"`
	Featured             bool      `json:"featured"`
	ImageURL             string    `json:"imageUrl"`
	CategoryID           string    `json:"category,omitempty"`
	CategoryName         string    `json:"categoryName,omitempty"`
	SubcategoryID        string    `json:"subcategory,omitempty"`
	SubcategoryName      string    `json:"subcategoryName,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// EffectivePriceCents is the unit price a buyer pays right now. The same
// rule is applied by the inventory store when it snapshots prices into an
// order.
func (p Product) EffectivePriceCents() int64 {
	if p.DiscountedPriceCents != nil && *p.DiscountedPriceCents < p.PriceCents {
		return *p.DiscountedPriceCents
	}
	return p.PriceCents
}

type Category struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
}

type Subcategory struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
}

// Page is the listing envelope the storefront pages through.
type Page struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	HasNextPage bool      `json:"hasNextPage"`
	HasPrevPage bool      `json:"hasPrevPage"`
}
