package models

import (
	"github.com/shopspring/decimal"
)

// Payment status values for an order. Pending is the only non-terminal state.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCashOnDelivery = "contraentrega"
	PaymentMethodBankTransfer   = "transferencia"
)

// Fulfillment status values.
const (
	FulfillmentStatusNew     = "new"
	FulfillmentStatusShipped = "shipped"
)

// Order (a "factura") is the durable record of a completed checkout. It is
// created once, at checkout submission, with payment status pending; only the
// payment status changes afterwards.
type Order struct {
	ID                int64           `json:"id"`
	CustomerName      string          `json:"customerName"`
	CustomerEmail     string          `json:"customerEmail"`
	CreatedAt         string          `json:"createdAt"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"paymentMethod"`
	PaymentStatus     string          `json:"paymentStatus"`
	ShippingAddress   string          `json:"shippingAddress,omitempty"`
	ShippingCity      string          `json:"shippingCity,omitempty"`
	ShippingPhone     string          `json:"shippingPhone,omitempty"`
	FulfillmentStatus string          `json:"fulfillmentStatus"`
}

// OrderLine is a permanent historical record of one purchased variant. Name,
// price, variant labels and image are snapshots taken at checkout so later
// catalog edits never alter past invoices. NeedsReview marks lines whose
// stock could not be reserved when the payment confirmed (lost race); they
// await manual fulfillment review.
type OrderLine struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	NeedsReview bool            `json:"needsReview,omitempty"`
}

// OrderResponse represents an order with its lines
// Example response:
//
//	{
//	  "id": 12, "customerName": "Juan Pérez", "total": "24000",
//	  "paymentMethod": "transferencia", "paymentStatus": "pending",
//	  "lines": [{"productId": 5, "productName": "Buso clásico",
//	             "quantity": 2, "subtotal": "24000", "size": "M"}]
//	}
type OrderResponse struct {
	Order
	Lines []OrderLine `json:"lines"`
}

// CheckoutRequest represents the request body for submitting a checkout
// Example:
//
//	{
//	  "customerName": "Juan Pérez", "customerEmail": "juan@example.com",
//	  "paymentMethod": "transferencia",
//	  "shippingAddress": "Cra 1 # 2-3", "shippingCity": "Bogotá",
//	  "shippingPhone": "+573001234567"
//	}
type CheckoutRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
	ShippingCity    string `json:"shippingCity"`
	ShippingPhone   string `json:"shippingPhone"`
}

// Checkout line statuses. A line is accepted at its cart quantity, clamped
// down to the available quantity, or dropped when nothing is available.
const (
	LineStatusAccepted = "accepted"
	LineStatusClamped  = "clamped"
	LineStatusDropped  = "dropped"
)

// Reservation line statuses, produced when a payment confirmation reserves
// stock. A line is reserved, or flagged for manual review when the
// reservation lost a race after checkout validation.
const (
	LineStatusReserved = "reserved"
	LineStatusReview   = "review"
)

// CheckoutLineResult is the per-line outcome of checkout validation.
type CheckoutLineResult struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Requested   int    `json:"requested"`
	Granted     int    `json:"granted"`
	Status      string `json:"status"` // accepted, clamped, dropped
}

// CheckoutResult represents the response of a checkout submission
// Example response:
//
//	{
//	  "order": {"id": 12, "paymentStatus": "pending", "total": "24000", ...},
//	  "lines": [{"productId": 5, "requested": 3, "granted": 2, "status": "clamped"}],
//	  "warnings": ["Stock insuficiente para Buso clásico (Talla: M): se ajustó a 2 unidades"]
//	}
type CheckoutResult struct {
	Order    *OrderResponse       `json:"order"`
	Lines    []CheckoutLineResult `json:"lines"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ReservationLineResult is the per-line outcome of the stock reservation run
// on the first pending→paid transition.
type ReservationLineResult struct {
	OrderLineID int64  `json:"orderLineId"`
	ProductID   int64  `json:"productId"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"` // reserved, review
}
