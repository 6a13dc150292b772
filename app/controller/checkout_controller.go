package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jascshop/models"
	"jascshop/repository"
	"jascshop/service"
)

// CheckoutController handles checkout submission and order reads
type CheckoutController struct {
	checkout *service.CheckoutService
	orders   repository.OrderRepositoryInterface
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(checkout *service.CheckoutService, orders repository.OrderRepositoryInterface) *CheckoutController {
	return &CheckoutController{checkout: checkout, orders: orders}
}

// Checkout handles POST /checkout
// Example request:
//
//	{
//	  "customerName": "Juan Pérez", "customerEmail": "juan@example.com",
//	  "paymentMethod": "transferencia",
//	  "shippingAddress": "Cra 1 # 2-3", "shippingCity": "Bogotá",
//	  "shippingPhone": "+573001234567"
//	}
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Checkout: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := c.checkout.Checkout(r.Context(), sessionID(w, r), &req)
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "cart is empty") || strings.Contains(errMsg, "no cart line has stock") ||
			strings.Contains(errMsg, "required") || strings.Contains(errMsg, "invalid payment method") {
			http.Error(w, errMsg, http.StatusBadRequest)
			return
		}
		log.Printf("❌ Checkout: %v", err)
		http.Error(w, "Failed to submit checkout", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// GetOrder handles GET /orders/{id}
func (c *CheckoutController) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/orders/")
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid order id parameter", http.StatusBadRequest)
		return
	}

	order, err := c.orders.GetByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ GetOrder: %v", err)
		http.Error(w, "Failed to get order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
