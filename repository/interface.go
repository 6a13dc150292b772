package repository

import (
	"context"
	"database/sql"

	"jascshop/models"
	"jascshop/utils"
)

// ProductRepositoryInterface defines the contract for the read-only catalog
// collaborator.
type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	ListAvailable(ctx context.Context, filters models.ProductFilterParams) ([]models.Product, error)
}

// StockRepositoryInterface defines the contract for the stock ledger: the
// dual-layer inventory of aggregate counters and the per-variant matrix.
type StockRepositoryInterface interface {
	Availability(ctx context.Context, key utils.VariantKey) (int, error)
	Reserve(ctx context.Context, key utils.VariantKey, quantity int) error
	ReserveInTx(ctx context.Context, tx *sql.Tx, key utils.VariantKey, quantity int) error
	RecomputeAggregate(ctx context.Context, productID int64) (*models.RecomputeAggregateResponse, error)
	UpsertVariantStock(ctx context.Context, req *models.UpsertVariantStockRequest) (*models.VariantStockEntry, error)
	GenerateMatrix(ctx context.Context, productID int64) (*models.GenerateMatrixResponse, error)
	ListVariantStock(ctx context.Context, productID int64) ([]models.VariantStockEntry, error)
}

// OrderRepositoryInterface defines the contract for order persistence and the
// payment transition.
type OrderRepositoryInterface interface {
	CreateWithLines(ctx context.Context, req *models.CheckoutRequest, lines []models.OrderLine) (*models.OrderResponse, error)
	GetByID(ctx context.Context, id int64) (*models.OrderResponse, error)
	ConfirmPayment(ctx context.Context, orderID int64, approved bool) (*models.PaymentConfirmationResult, error)
}
