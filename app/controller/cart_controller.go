package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"jascshop/models"
	"jascshop/repository"
	"jascshop/service"
)

// sessionCookieName identifies the visitor; the cart has no identity beyond
// this cookie.
const sessionCookieName = "jasc_session"

// CartController handles HTTP requests for the visitor's cart
type CartController struct {
	carts *service.CartService
}

// NewCartController creates a new CartController
func NewCartController(carts *service.CartService) *CartController {
	return &CartController{carts: carts}
}

// sessionID returns the visitor's session id, minting a new one (and setting
// the cookie) on first contact.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// ViewCart handles GET /cart
func (c *CartController) ViewCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	view, err := c.carts.View(r.Context(), sessionID(w, r))
	if err != nil {
		log.Printf("❌ ViewCart: %v", err)
		http.Error(w, "Failed to load cart", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddLine handles POST /cart/items
// Example request:
// {"productId": 5, "size": "M", "color": "Negro", "quantity": 2}
func (c *CartController) AddLine(w http.ResponseWriter, r *http.Request) {
	var req models.AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductID <= 0 {
		http.Error(w, "productId is required", http.StatusBadRequest)
		return
	}

	view, err := c.carts.Add(r.Context(), sessionID(w, r), &req)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ AddLine: %v", err)
		http.Error(w, fmt.Sprintf("Failed to add to cart: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SetQuantity handles PUT /cart/items
// Example request:
// {"productId": 5, "size": "M", "color": "Negro", "quantity": 3}
func (c *CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req models.SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	view, err := c.carts.SetQuantity(r.Context(), sessionID(w, r), &req)
	if err != nil {
		log.Printf("❌ SetQuantity: %v", err)
		http.Error(w, fmt.Sprintf("Failed to update cart: %v", err), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveLine handles DELETE /cart/items
// Example request:
// {"productId": 5, "size": "M", "color": "Negro"}
func (c *CartController) RemoveLine(w http.ResponseWriter, r *http.Request) {
	var req models.RemoveLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	view, err := c.carts.Remove(r.Context(), sessionID(w, r), &req)
	if err != nil {
		log.Printf("❌ RemoveLine: %v", err)
		http.Error(w, "Failed to remove from cart", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Items dispatches /cart/items by HTTP method
func (c *CartController) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.AddLine(w, r)
	case http.MethodPut, http.MethodPatch:
		c.SetQuantity(w, r)
	case http.MethodDelete:
		c.RemoveLine(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ClearCart handles POST /cart/clear
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := c.carts.Clear(r.Context(), sessionID(w, r)); err != nil {
		log.Printf("❌ ClearCart: %v", err)
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
