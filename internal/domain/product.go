package domain

import "time"

// Product represents a catalog entry owned by a seller.
type Product struct {
	ID            int64     `json:"id"`
	SellerID      int64     `json:"seller_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CategoryID    *int64    `json:"category_id,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductFilter holds the optional list/search parameters for the catalog.
type ProductFilter struct {
	Query      string
	CategoryID *int64
	MinPrice   *float64
	MaxPrice   *float64
	Page       int
	Limit      int
}

// Offset returns the row offset implied by Page and Limit.
func (f ProductFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}
