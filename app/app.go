package app

import (
	"fmt"
	"log"
	"os"

	"jascshop/app/controller"
	"jascshop/app/router"
	"jascshop/db"
	"jascshop/repository"
	"jascshop/service"
)

// Initialize initializes the application
func Initialize() error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository()
	stockRepo := repository.NewStockRepository()
	orderRepo := repository.NewOrderRepository(stockRepo)

	// Session cart storage: Redis when configured, in-process otherwise.
	var cartStore service.CartStore
	if os.Getenv("REDIS_ADDR") != "" {
		redisStore, err := service.NewRedisCartStore()
		if err != nil {
			return fmt.Errorf("failed to initialize cart store: %w", err)
		}
		cartStore = redisStore
	} else {
		log.Printf("⚠️ REDIS_ADDR not set, using in-memory cart store (carts do not survive restarts)")
		cartStore = service.NewMemoryCartStore()
	}

	// Notification collaborator: webhook sender when configured.
	var notifier service.Notifier
	if webhook, ok := service.NewWebhookNotifier(); ok {
		notifier = webhook
	} else {
		notifier = &service.NoopNotifier{}
	}

	// Initialize services
	cartService := service.NewCartService(cartStore, productRepo, stockRepo)
	checkoutService := service.NewCheckoutService(cartService, stockRepo, orderRepo)
	paymentService := service.NewPaymentService(orderRepo, notifier)

	// Create controllers
	controllers := &router.Controllers{
		Cart:     controller.NewCartController(cartService),
		Checkout: controller.NewCheckoutController(checkoutService, orderRepo),
		Payment:  controller.NewPaymentController(paymentService),
		Product:  controller.NewProductController(productRepo, stockRepo),
		Stock:    controller.NewStockController(stockRepo),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
