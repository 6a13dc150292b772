package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"jascshop/db"
	"jascshop/models"
	"jascshop/pricing"
	"jascshop/utils"
)

// OrderRepository handles database operations for orders and their line
// items, including the payment transition that reserves stock.
type OrderRepository struct {
	stock StockRepositoryInterface
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(stock StockRepositoryInterface) *OrderRepository {
	return &OrderRepository{stock: stock}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// CreateWithLines persists a new pending order and its line-item snapshots in
// a single transaction. The total is the sum of the line subtotals, never
// recomputed from the catalog. Either the order and all its lines commit, or
// none do.
func (r *OrderRepository) CreateWithLines(ctx context.Context, req *models.CheckoutRequest, lines []models.OrderLine) (*models.OrderResponse, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("cannot create an order without lines")
	}

	log.Printf("🧾 CreateWithLines: creating order for %s with %d lines", req.CustomerName, len(lines))

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	subtotals := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		subtotals = append(subtotals, line.Subtotal)
	}
	total := pricing.Total(subtotals)

	queryOrder := `
		INSERT INTO orders (customer_name, customer_email, total, payment_method,
		                    payment_status, shipping_address, shipping_city,
		                    shipping_phone, fulfillment_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at
	`

	order := models.Order{
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		Total:             total,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		ShippingAddress:   req.ShippingAddress,
		ShippingCity:      req.ShippingCity,
		ShippingPhone:     req.ShippingPhone,
		FulfillmentStatus: models.FulfillmentStatusNew,
	}

	err = tx.QueryRowContext(ctx, queryOrder,
		order.CustomerName,
		order.CustomerEmail,
		order.Total,
		order.PaymentMethod,
		order.PaymentStatus,
		sql.NullString{String: order.ShippingAddress, Valid: order.ShippingAddress != ""},
		sql.NullString{String: order.ShippingCity, Valid: order.ShippingCity != ""},
		sql.NullString{String: order.ShippingPhone, Valid: order.ShippingPhone != ""},
		order.FulfillmentStatus,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		log.Printf("❌ CreateWithLines: Error inserting order: %v", err)
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	queryLine := `
		INSERT INTO order_lines (order_id, product_id, product_name, quantity,
		                         subtotal, size, color, image_url, needs_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING id
	`

	persisted := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		line.OrderID = order.ID
		err := tx.QueryRowContext(ctx, queryLine,
			line.OrderID,
			line.ProductID,
			line.ProductName,
			line.Quantity,
			line.Subtotal,
			line.Size,
			line.Color,
			sql.NullString{String: line.ImageURL, Valid: line.ImageURL != ""},
		).Scan(&line.ID)
		if err != nil {
			log.Printf("❌ CreateWithLines: Error inserting line for product %d: %v", line.ProductID, err)
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
		persisted = append(persisted, line)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	log.Printf("✅ CreateWithLines: order %d created with %d lines, total %s", order.ID, len(persisted), order.Total.String())
	return &models.OrderResponse{Order: order, Lines: persisted}, nil
}

// GetByID retrieves an order with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.OrderResponse, error) {
	queryOrder := `
		SELECT id, customer_name, customer_email, created_at, total,
		       payment_method, payment_status,
		       COALESCE(shipping_address, '') as shipping_address,
		       COALESCE(shipping_city, '') as shipping_city,
		       COALESCE(shipping_phone, '') as shipping_phone,
		       fulfillment_status
		FROM orders WHERE id = $1
	`

	var order models.Order
	err := db.DB.QueryRowContext(ctx, queryOrder, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CreatedAt,
		&order.Total,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.ShippingAddress,
		&order.ShippingCity,
		&order.ShippingPhone,
		&order.FulfillmentStatus,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.OrderResponse{Order: order, Lines: lines}, nil
}

func (r *OrderRepository) getLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	queryLines := `
		SELECT id, order_id, product_id, product_name, quantity, subtotal,
		       size, color, COALESCE(image_url, '') as image_url, needs_review
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, queryLines, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.Subtotal,
			&line.Size,
			&line.Color,
			&line.ImageURL,
			&line.NeedsReview,
		)
		if err != nil {
			log.Printf("❌ getLines: Error scanning line: %v", err)
			continue
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}
	return lines, nil
}

// ConfirmPayment drives the order through pending → paid/failed. The status
// row is locked FOR UPDATE and checked before any mutation: this check is the
// idempotency barrier against webhook retries, so re-delivered callbacks
// return ErrDuplicatePaymentEvent and never touch stock.
//
// On approval, every order line's stock is reserved inside the same
// transaction that flips the status. A line whose reservation loses a race
// (insufficient stock after one internal retry) is flagged needs_review and
// the rest of the order still completes; the buyer has already committed to
// the payment flow.
func (r *OrderRepository) ConfirmPayment(ctx context.Context, orderID int64, approved bool) (*models.PaymentConfirmationResult, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var currentStatus string
	queryStatus := `SELECT payment_status FROM orders WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, queryStatus, orderID).Scan(&currentStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order status: %w", err)
	}

	if currentStatus != models.PaymentStatusPending {
		log.Printf("🔁 ConfirmPayment: order %d is %q, ignoring duplicate event", orderID, currentStatus)
		return &models.PaymentConfirmationResult{
			OrderID:       orderID,
			PaymentStatus: currentStatus,
			Applied:       false,
		}, ErrDuplicatePaymentEvent
	}

	if !approved {
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET payment_status = $1 WHERE id = $2`,
			models.PaymentStatusFailed, orderID); err != nil {
			return nil, fmt.Errorf("failed to mark order failed: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit failed transition: %w", err)
		}
		log.Printf("✅ ConfirmPayment: order %d marked failed, stock untouched", orderID)
		return &models.PaymentConfirmationResult{
			OrderID:       orderID,
			PaymentStatus: models.PaymentStatusFailed,
			Applied:       true,
		}, nil
	}

	// Approved: reserve stock for every line, then flip to paid. This is the
	// single stock decrement for the order's lifetime.
	queryLines := `
		SELECT id, product_id, quantity, size, color
		FROM order_lines
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := tx.QueryContext(ctx, queryLines, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}

	type lineToReserve struct {
		id        int64
		productID int64
		quantity  int
		size      string
		color     string
	}
	var toReserve []lineToReserve
	for rows.Next() {
		var line lineToReserve
		if err := rows.Scan(&line.id, &line.productID, &line.quantity, &line.size, &line.color); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		toReserve = append(toReserve, line)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}
	rows.Close()

	var reservations []models.ReservationLineResult
	for _, line := range toReserve {
		key := utils.ResolveVariantKey(line.productID, line.size, line.color)

		err := r.stock.ReserveInTx(ctx, tx, key, line.quantity)
		if _, insufficient := IsInsufficientStock(err); insufficient {
			// Could be a race lost against a concurrent confirmation;
			// retry once before giving the line up for manual review.
			err = r.stock.ReserveInTx(ctx, tx, key, line.quantity)
			if shortfall, stillShort := IsInsufficientStock(err); stillShort {
				err = fmt.Errorf("%w: %v", ErrPersistenceConflict, shortfall)
			}
		}

		if err != nil {
			if !errors.Is(err, ErrPersistenceConflict) {
				return nil, fmt.Errorf("failed to reserve stock for line %d: %w", line.id, err)
			}

			log.Printf("⚠️ ConfirmPayment: line %d of order %d unreservable (%v), flagging for review", line.id, orderID, err)
			if _, err := tx.ExecContext(ctx,
				`UPDATE order_lines SET needs_review = true WHERE id = $1`, line.id); err != nil {
				return nil, fmt.Errorf("failed to flag line for review: %w", err)
			}
			reservations = append(reservations, models.ReservationLineResult{
				OrderLineID: line.id,
				ProductID:   line.productID,
				Quantity:    line.quantity,
				Status:      models.LineStatusReview,
			})
			continue
		}

		reservations = append(reservations, models.ReservationLineResult{
			OrderLineID: line.id,
			ProductID:   line.productID,
			Quantity:    line.quantity,
			Status:      models.LineStatusReserved,
		})
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1 WHERE id = $2`,
		models.PaymentStatusPaid, orderID); err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit paid transition: %w", err)
	}

	log.Printf("✅ ConfirmPayment: order %d paid, %d lines reserved", orderID, len(reservations))
	return &models.PaymentConfirmationResult{
		OrderID:       orderID,
		PaymentStatus: models.PaymentStatusPaid,
		Applied:       true,
		Reservations:  reservations,
	}, nil
}

// IsDuplicatePaymentEvent reports whether err is the duplicate-delivery
// sentinel.
func IsDuplicatePaymentEvent(err error) bool {
	return errors.Is(err, ErrDuplicatePaymentEvent)
}
