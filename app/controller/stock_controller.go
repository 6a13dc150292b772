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
)

// StockController handles the administrative surface of the stock ledger:
// matrix edits, bulk generation and the aggregate repair operation.
type StockController struct {
	stock repository.StockRepositoryInterface
}

// NewStockController creates a new StockController
func NewStockController(stock repository.StockRepositoryInterface) *StockController {
	return &StockController{stock: stock}
}

// UpsertVariantStock handles POST /admin/variant-stock
// Example request:
// {"productId": 5, "size": "M", "color": "Negro", "quantity": 10}
func (c *StockController) UpsertVariantStock(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 UpsertVariantStock: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.UpsertVariantStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	entry, err := c.stock.UpsertVariantStock(r.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		if strings.Contains(err.Error(), "quantity must be positive") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("❌ UpsertVariantStock: %v", err)
		http.Error(w, "Failed to upsert variant stock", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// productIDFromPath extracts the id from /admin/products/{id}/<suffix>
func productIDFromPath(path, suffix string) (int64, error) {
	trimmed := strings.TrimPrefix(path, "/admin/products/")
	idStr := strings.TrimSuffix(trimmed, suffix)
	if idStr == trimmed {
		return 0, fmt.Errorf("invalid path format")
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// GenerateMatrix handles POST /admin/products/{id}/variant-stock/generate
// Example response: {"productId": 5, "created": 6, "skipped": 2}
func (c *StockController) GenerateMatrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID, err := productIDFromPath(r.URL.Path, "/variant-stock/generate")
	if err != nil {
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	response, err := c.stock.GenerateMatrix(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ GenerateMatrix: %v", err)
		http.Error(w, "Failed to generate variant matrix", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// RecomputeAggregate handles POST /admin/products/{id}/recompute-stock
// Example response: {"productId": 5, "aggregateStock": 42, "recomputed": true}
func (c *StockController) RecomputeAggregate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID, err := productIDFromPath(r.URL.Path, "/recompute-stock")
	if err != nil {
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	response, err := c.stock.RecomputeAggregate(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ RecomputeAggregate: %v", err)
		http.Error(w, "Failed to recompute aggregate stock", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ListVariantStock handles GET /admin/products/{id}/variant-stock
func (c *StockController) ListVariantStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	productID, err := productIDFromPath(r.URL.Path, "/variant-stock")
	if err != nil {
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	entries, err := c.stock.ListVariantStock(r.Context(), productID)
	if err != nil {
		log.Printf("❌ ListVariantStock: %v", err)
		http.Error(w, "Failed to list variant stock", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.VariantStockEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}
