package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"jascshop/models"
	"jascshop/pricing"
	"jascshop/repository"
)

// CheckoutService converts a validated cart into a persisted pending order.
// Validation clamps each line to live availability (a short line never fails
// the whole checkout) and drops lines with nothing available; the surviving
// lines are persisted as permanent snapshots in one transaction and the cart
// is cleared only after the commit. Stock is NOT decremented here: the single
// decrement happens on the first pending→paid transition.
type CheckoutService struct {
	carts  *CartService
	stock  repository.StockRepositoryInterface
	orders repository.OrderRepositoryInterface
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(carts *CartService, stock repository.StockRepositoryInterface, orders repository.OrderRepositoryInterface) *CheckoutService {
	return &CheckoutService{
		carts:  carts,
		stock:  stock,
		orders: orders,
	}
}

var validPaymentMethods = map[string]bool{
	models.PaymentMethodCashOnDelivery: true,
	models.PaymentMethodBankTransfer:   true,
}

// Checkout validates the session's cart and persists it as a pending order.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("customerName is required")
	}
	if !validPaymentMethods[req.PaymentMethod] {
		return nil, fmt.Errorf("invalid payment method %q", req.PaymentMethod)
	}

	cart, err := s.carts.Cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty")
	}

	log.Printf("🧾 Checkout: session %s submitting %d lines", sessionID, len(cart.Lines))

	result := &models.CheckoutResult{}
	var orderLines []models.OrderLine

	for _, encoded := range sortedLineKeys(cart) {
		line := cart.Lines[encoded]

		available, err := s.stock.Availability(ctx, line.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to re-check availability: %w", err)
		}

		lineResult := models.CheckoutLineResult{
			ProductID:   line.Key.ProductID,
			ProductName: line.ProductName,
			Size:        line.Key.Size,
			Color:       line.Key.Color,
			Requested:   line.Quantity,
		}

		switch {
		case available <= 0:
			lineResult.Granted = 0
			lineResult.Status = models.LineStatusDropped
			result.Warnings = append(result.Warnings, clampWarning(line.ProductName, line.Key, 0))
		case available < line.Quantity:
			lineResult.Granted = available
			lineResult.Status = models.LineStatusClamped
			result.Warnings = append(result.Warnings, clampWarning(line.ProductName, line.Key, available))
		default:
			lineResult.Granted = line.Quantity
			lineResult.Status = models.LineStatusAccepted
		}

		result.Lines = append(result.Lines, lineResult)

		if lineResult.Granted > 0 {
			orderLines = append(orderLines, models.OrderLine{
				ProductID:   line.Key.ProductID,
				ProductName: line.ProductName,
				Quantity:    lineResult.Granted,
				Subtotal:    pricing.LineSubtotal(line.UnitPrice, lineResult.Granted),
				Size:        line.Key.Size,
				Color:       line.Key.Color,
				ImageURL:    line.ImageURL,
			})
		}
	}

	if len(orderLines) == 0 {
		return nil, fmt.Errorf("no cart line has stock available")
	}

	order, err := s.orders.CreateWithLines(ctx, req, orderLines)
	if err != nil {
		return nil, err
	}
	result.Order = order

	// Clear only after the order committed; a failed clear must not undo a
	// placed order, so it is logged and swallowed.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Printf("⚠️ Checkout: order %d placed but cart for session %s not cleared: %v", order.ID, sessionID, err)
	}

	log.Printf("✅ Checkout: order %d created for session %s (%d lines, %d warnings)",
		order.ID, sessionID, len(orderLines), len(result.Warnings))
	return result, nil
}
