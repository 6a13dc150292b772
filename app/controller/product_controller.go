package controller

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"jascshop/models"
	"jascshop/repository"
	"jascshop/utils"
)

// ProductController handles read-only HTTP access to the catalog and
// availability queries against the stock ledger
type ProductController struct {
	products repository.ProductRepositoryInterface
	stock    repository.StockRepositoryInterface
}

// NewProductController creates a new ProductController
func NewProductController(products repository.ProductRepositoryInterface, stock repository.StockRepositoryInterface) *ProductController {
	return &ProductController{products: products, stock: stock}
}

// ListProducts handles GET /products?category=slug&q=search
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filters := models.ProductFilterParams{}
	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		filters.Category = &category
	}
	if search := r.URL.Query().Get("q"); search != "" {
		filters.Search = &search
	}

	products, err := c.products.ListAvailable(r.Context(), filters)
	if err != nil {
		log.Printf("❌ ListProducts: %v", err)
		http.Error(w, "Failed to list products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

// GetAvailability handles GET /products/{id}/availability?size=M&color=Negro
// Example response:
// {"productId": 5, "size": "M", "color": "Negro", "available": 3}
func (c *ProductController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /products/{id}/availability
	path := strings.TrimPrefix(r.URL.Path, "/products/")
	idStr := strings.TrimSuffix(path, "/availability")
	if idStr == path {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	key := utils.ResolveVariantKey(productID, r.URL.Query().Get("size"), r.URL.Query().Get("color"))
	available, err := c.stock.Availability(r.Context(), key)
	if err != nil {
		log.Printf("❌ GetAvailability: %v", err)
		http.Error(w, "Failed to check availability", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.AvailabilityResponse{
		ProductID: key.ProductID,
		Size:      key.Size,
		Color:     key.Color,
		Available: available,
	})
}

// GetProduct handles GET /products/{id}
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/products/")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "invalid product id parameter", http.StatusBadRequest)
		return
	}

	product, err := c.products.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		log.Printf("❌ GetProduct: %v", err)
		http.Error(w, "Failed to get product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, product)
}
