package router

import (
	"net/http"
	"strings"

	"jascshop/app/controller"
)

type Controllers struct {
	Cart     *controller.CartController
	Checkout *controller.CheckoutController
	Payment  *controller.PaymentController
	Product  *controller.ProductController
	Stock    *controller.StockController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Catalog routes
	http.HandleFunc("/products", controllers.Product.ListProducts)
	http.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/availability") {
			controllers.Product.GetAvailability(w, r)
			return
		}
		controllers.Product.GetProduct(w, r)
	})

	// Cart routes (session-scoped via cookie)
	http.HandleFunc("/cart", controllers.Cart.ViewCart)
	http.HandleFunc("/cart/items", controllers.Cart.Items)
	http.HandleFunc("/cart/clear", controllers.Cart.ClearCart)

	// Checkout and orders
	http.HandleFunc("/checkout", controllers.Checkout.Checkout)
	http.HandleFunc("/orders/", controllers.Checkout.GetOrder)

	// Payment gateway callback
	http.HandleFunc("/payments/confirmation", controllers.Payment.Confirmation)

	// Admin stock ledger routes
	http.HandleFunc("/admin/variant-stock", controllers.Stock.UpsertVariantStock)
	http.HandleFunc("/admin/products/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if strings.HasSuffix(path, "/variant-stock/generate") {
			controllers.Stock.GenerateMatrix(w, r)
			return
		}
		if strings.HasSuffix(path, "/recompute-stock") {
			controllers.Stock.RecomputeAggregate(w, r)
			return
		}
		if strings.HasSuffix(path, "/variant-stock") {
			controllers.Stock.ListVariantStock(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})
}
