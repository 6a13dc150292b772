package models

import (
	"github.com/shopspring/decimal"

	"jascshop/utils"
)

// CartLine represents one line of a visitor's cart, keyed by variant.
// UnitPrice is a snapshot of the product's final price taken when the line
// was first added; it is deliberately NOT re-priced while the visitor shops
// (price protection pending a product decision, see DESIGN.md). Quantity
// limits are always re-read from live stock instead.
type CartLine struct {
	Key         utils.VariantKey `json:"key"`
	ProductName string           `json:"productName"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	Quantity    int              `json:"quantity"`
	ImageURL    string           `json:"imageUrl,omitempty"`
}

// Subtotal is the line's exact unitPrice × quantity.
func (l *CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a visitor's session-scoped selection, a mapping from encoded
// variant key to line. It has no identity beyond the session and reserves no
// stock; reservation happens only at order finalization.
type Cart struct {
	SessionID string              `json:"sessionId"`
	Lines     map[string]CartLine `json:"lines"`
}

// NewCart creates an empty cart for a session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     make(map[string]CartLine),
	}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddLineRequest represents the request body for adding a selection to the
// cart
// Example: {"productId": 5, "size": "M", "color": "Negro", "quantity": 2}
type AddLineRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"imageUrl,omitempty"` // chosen display image, e.g. the color-linked photo
}

// SetQuantityRequest represents the request body for changing a cart line's
// quantity. Quantity 0 removes the line.
// Example: {"productId": 5, "size": "M", "color": "Negro", "quantity": 3}
type SetQuantityRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// RemoveLineRequest represents the request body for removing a cart line
// Example: {"productId": 5, "size": "M", "color": "Negro"}
type RemoveLineRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartViewLine is a cart line enriched for display.
type CartViewLine struct {
	CartLine
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView represents the response for viewing the cart
// Example response:
//
//	{
//	  "lines": [
//	    {"key": {"productId": 5, "size": "M", "color": "Negro"},
//	     "productName": "Buso clásico", "unitPrice": "12000",
//	     "quantity": 2, "subtotal": "24000"}
//	  ],
//	  "subtotal": "24000",
//	  "totalItems": 2,
//	  "warnings": ["..."]
//	}
type CartView struct {
	Lines      []CartViewLine  `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalItems int             `json:"totalItems"`
	Warnings   []string        `json:"warnings,omitempty"`
}
