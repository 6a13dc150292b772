package models

// Payment gateway outcomes. The gateway callback is treated as an opaque
// inbound event; the core owns no part of the gateway protocol.
const (
	PaymentOutcomeApproved = "APPROVED"
	PaymentOutcomeDeclined = "DECLINED"
)

// PaymentEvent represents a payment-gateway callback: an approval/decline
// outcome plus the order reference it applies to. The same event may be
// delivered more than once (webhook retries).
type PaymentEvent struct {
	Reference int64  `json:"reference"` // order id
	Outcome   string `json:"outcome"`   // APPROVED or DECLINED
	EventID   string `json:"eventId,omitempty"`
}

// PaymentConfirmationResult represents the response to a gateway callback
// Example response:
//
//	{
//	  "orderId": 12,
//	  "paymentStatus": "paid",
//	  "applied": true,
//	  "reservations": [{"orderLineId": 30, "productId": 5, "quantity": 2, "status": "reserved"}]
//	}
type PaymentConfirmationResult struct {
	OrderID       int64                   `json:"orderId"`
	PaymentStatus string                  `json:"paymentStatus"`
	Applied       bool                    `json:"applied"` // false for duplicate/out-of-order deliveries
	Reservations  []ReservationLineResult `json:"reservations,omitempty"`
}
