package models

import (
	"github.com/shopspring/decimal"

	"jascshop/utils"
)

// Product represents a catalog product as read from the database. The core
// never writes products; the catalog back-office owns them.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description,omitempty"`
	Cost         decimal.Decimal `json:"cost"`
	Discount     int             `json:"discount"` // percentage, 0-100
	Stock        int             `json:"stock"`    // aggregate stock count
	IsAvailable  bool            `json:"isAvailable"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	SizeOptions  string          `json:"sizeOptions,omitempty"`  // comma-separated, e.g. "S, M, L"
	ColorOptions string          `json:"colorOptions,omitempty"` // comma-separated, e.g. "Negro, Blanco"
	CreatedAt    string          `json:"createdAt"`
	UpdatedAt    string          `json:"updatedAt"`
}

// SizeList returns the configured sizes as a slice.
func (p *Product) SizeList() []string {
	return utils.SplitOptionList(p.SizeOptions)
}

// ColorList returns the configured colors as a slice.
func (p *Product) ColorList() []string {
	return utils.SplitOptionList(p.ColorOptions)
}

// ProductFilterParams represents optional filter parameters for the catalog
// listing
type ProductFilterParams struct {
	Category *string
	Search   *string
}

// AvailabilityResponse represents the response for an availability query
// Example: {"productId": 5, "size": "M", "color": "Negro", "available": 3}
type AvailabilityResponse struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Available int    `json:"available"`
}
