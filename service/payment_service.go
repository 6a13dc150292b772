package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"jascshop/models"
	"jascshop/repository"
)

// PaymentService receives external payment-gateway outcomes and drives
// orders through pending → paid/failed. The repository's status guard makes
// re-delivered callbacks no-ops on stock; this service logs them and reports
// the event as not applied. On the first successful paid transition the
// notification collaborator is invoked exactly once; notification failures
// are logged and never block or reverse the transition.
type PaymentService struct {
	orders   repository.OrderRepositoryInterface
	notifier Notifier
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(orders repository.OrderRepositoryInterface, notifier Notifier) *PaymentService {
	return &PaymentService{
		orders:   orders,
		notifier: notifier,
	}
}

// Confirm applies a gateway callback to its order.
func (s *PaymentService) Confirm(ctx context.Context, event *models.PaymentEvent) (*models.PaymentConfirmationResult, error) {
	outcome := strings.ToUpper(strings.TrimSpace(event.Outcome))

	var approved bool
	switch outcome {
	case models.PaymentOutcomeApproved:
		approved = true
	case models.PaymentOutcomeDeclined:
		approved = false
	default:
		return nil, fmt.Errorf("unknown payment outcome %q", event.Outcome)
	}

	log.Printf("💳 Confirm: order %d, outcome %s (event %s)", event.Reference, outcome, event.EventID)

	result, err := s.orders.ConfirmPayment(ctx, event.Reference, approved)
	if repository.IsDuplicatePaymentEvent(err) {
		// Webhook retry or out-of-order delivery; already settled, nothing
		// to do and nothing to report upstream.
		log.Printf("🔁 Confirm: duplicate event for order %d (status %s), ignored", event.Reference, result.PaymentStatus)
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	if approved && result.Applied {
		s.notifyPaid(ctx, event.Reference)
	}

	return result, nil
}

func (s *PaymentService) notifyPaid(ctx context.Context, orderID int64) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		log.Printf("⚠️ Confirm: order %d paid but summary for notification failed: %v", orderID, err)
		return
	}

	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		log.Printf("⚠️ Confirm: order %d paid but notification failed: %v", orderID, err)
		return
	}
	log.Printf("📧 Confirm: order %d confirmation sent to %s", orderID, order.CustomerEmail)
}
