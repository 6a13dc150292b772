package controller

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jascshop/models"
	"jascshop/repository"
	"jascshop/service"
)

// PaymentController receives payment-gateway callbacks
type PaymentController struct {
	payments *service.PaymentService
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(payments *service.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// Confirmation handles GET|POST /payments/confirmation?status=APPROVED&reference=12
// The gateway redirects/retries with the same parameters; duplicate
// deliveries are acknowledged with applied=false and never touch stock.
func (c *PaymentController) Confirmation(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Confirmation: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := r.URL.Query().Get("status")
	reference := r.URL.Query().Get("reference")
	if status == "" || reference == "" {
		http.Error(w, "status and reference parameters are required", http.StatusBadRequest)
		return
	}

	orderID, err := strconv.ParseInt(reference, 10, 64)
	if err != nil {
		http.Error(w, "invalid reference parameter", http.StatusBadRequest)
		return
	}

	event := &models.PaymentEvent{
		Reference: orderID,
		Outcome:   status,
		EventID:   r.URL.Query().Get("id"),
	}

	result, err := c.payments.Confirm(r.Context(), event)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "unknown payment outcome") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("❌ Confirmation: %v", err)
		http.Error(w, "Failed to process payment confirmation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
