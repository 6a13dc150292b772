package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"jascshop/models"
	"jascshop/pricing"
	"jascshop/repository"
	"jascshop/utils"
)

// fakeProductRepo serves products from a map.
type fakeProductRepo struct {
	products map[int64]*models.Product
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

var _ repository.ProductRepositoryInterface = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product, exists := r.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) ListAvailable(ctx context.Context, filters models.ProductFilterParams) ([]models.Product, error) {
	var list []models.Product
	for _, p := range r.products {
		if p.IsAvailable {
			list = append(list, *p)
		}
	}
	return list, nil
}

// fakeStockRepo keeps availability per encoded variant key and honors the
// conditional-decrement contract: a shortfall leaves state unchanged.
type fakeStockRepo struct {
	available    map[string]int
	reserveCalls int
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{available: make(map[string]int)}
}

var _ repository.StockRepositoryInterface = (*fakeStockRepo)(nil)

func (r *fakeStockRepo) set(key utils.VariantKey, quantity int) {
	r.available[key.Encode()] = quantity
}

func (r *fakeStockRepo) Availability(ctx context.Context, key utils.VariantKey) (int, error) {
	return r.available[key.Encode()], nil
}

func (r *fakeStockRepo) Reserve(ctx context.Context, key utils.VariantKey, quantity int) error {
	r.reserveCalls++
	current := r.available[key.Encode()]
	if current < quantity {
		return &repository.InsufficientStockError{Key: key, Requested: quantity, Available: current}
	}
	r.available[key.Encode()] = current - quantity
	return nil
}

func (r *fakeStockRepo) ReserveInTx(ctx context.Context, tx *sql.Tx, key utils.VariantKey, quantity int) error {
	return r.Reserve(ctx, key, quantity)
}

func (r *fakeStockRepo) RecomputeAggregate(ctx context.Context, productID int64) (*models.RecomputeAggregateResponse, error) {
	return &models.RecomputeAggregateResponse{ProductID: productID}, nil
}

func (r *fakeStockRepo) UpsertVariantStock(ctx context.Context, req *models.UpsertVariantStockRequest) (*models.VariantStockEntry, error) {
	return nil, fmt.Errorf("not implemented in fake")
}

func (r *fakeStockRepo) GenerateMatrix(ctx context.Context, productID int64) (*models.GenerateMatrixResponse, error) {
	return nil, fmt.Errorf("not implemented in fake")
}

func (r *fakeStockRepo) ListVariantStock(ctx context.Context, productID int64) ([]models.VariantStockEntry, error) {
	return nil, nil
}

// fakeOrderRepo persists orders in memory and mimics the repository's
// pending-status guard and reservation run, using a fakeStockRepo as the
// ledger.
type fakeOrderRepo struct {
	stock  *fakeStockRepo
	nextID int64
	orders map[int64]*models.OrderResponse
}

func newFakeOrderRepo(stock *fakeStockRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		stock:  stock,
		orders: make(map[int64]*models.OrderResponse),
	}
}

var _ repository.OrderRepositoryInterface = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) CreateWithLines(ctx context.Context, req *models.CheckoutRequest, lines []models.OrderLine) (*models.OrderResponse, error) {
	r.nextID++

	subtotals := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		subtotals = append(subtotals, line.Subtotal)
	}

	persisted := make([]models.OrderLine, 0, len(lines))
	for i, line := range lines {
		line.ID = r.nextID*100 + int64(i)
		line.OrderID = r.nextID
		persisted = append(persisted, line)
	}

	order := &models.OrderResponse{
		Order: models.Order{
			ID:                r.nextID,
			CustomerName:      req.CustomerName,
			CustomerEmail:     req.CustomerEmail,
			Total:             pricing.Total(subtotals),
			PaymentMethod:     req.PaymentMethod,
			PaymentStatus:     models.PaymentStatusPending,
			FulfillmentStatus: models.FulfillmentStatusNew,
		},
		Lines: persisted,
	}
	r.orders[r.nextID] = order
	return order, nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*models.OrderResponse, error) {
	order, exists := r.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) ConfirmPayment(ctx context.Context, orderID int64, approved bool) (*models.PaymentConfirmationResult, error) {
	order, exists := r.orders[orderID]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}

	if order.PaymentStatus != models.PaymentStatusPending {
		return &models.PaymentConfirmationResult{
			OrderID:       orderID,
			PaymentStatus: order.PaymentStatus,
			Applied:       false,
		}, repository.ErrDuplicatePaymentEvent
	}

	if !approved {
		order.PaymentStatus = models.PaymentStatusFailed
		return &models.PaymentConfirmationResult{
			OrderID:       orderID,
			PaymentStatus: models.PaymentStatusFailed,
			Applied:       true,
		}, nil
	}

	var reservations []models.ReservationLineResult
	for i := range order.Lines {
		line := &order.Lines[i]
		key := utils.ResolveVariantKey(line.ProductID, line.Size, line.Color)

		status := models.LineStatusReserved
		if err := r.stock.Reserve(ctx, key, line.Quantity); err != nil {
			if _, insufficient := repository.IsInsufficientStock(err); !insufficient {
				return nil, err
			}
			line.NeedsReview = true
			status = models.LineStatusReview
		}
		reservations = append(reservations, models.ReservationLineResult{
			OrderLineID: line.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
			Status:      status,
		})
	}

	order.PaymentStatus = models.PaymentStatusPaid
	return &models.PaymentConfirmationResult{
		OrderID:       orderID,
		PaymentStatus: models.PaymentStatusPaid,
		Applied:       true,
		Reservations:  reservations,
	}, nil
}

// recordingNotifier counts confirmations.
type recordingNotifier struct {
	sent []int64
}

var _ Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) SendOrderConfirmation(ctx context.Context, order *models.OrderResponse) error {
	n.sent = append(n.sent, order.ID)
	return nil
}
