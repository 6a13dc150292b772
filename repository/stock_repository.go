package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"jascshop/db"
	"jascshop/models"
	"jascshop/utils"
)

// StockRepository handles the dual-layer stock ledger: the aggregate counter
// on products and the fine-grained variant_stock matrix. Every decrement goes
// through here so the two layers never drift apart.
type StockRepository struct{}

// NewStockRepository creates a new StockRepository
func NewStockRepository() *StockRepository {
	return &StockRepository{}
}

// Ensure StockRepository implements StockRepositoryInterface
var _ StockRepositoryInterface = (*StockRepository)(nil)

// Availability answers how many units of the exact variant are available.
// Resolution order, documented as a first-class contract:
//
//	(a) exact (product, size, color) matrix row
//	(b) sum of same-size rows across all colors (products where color has no
//	    separate stock)
//	(c) the product's aggregate stock count (legacy products with no matrix)
//
// Unknown products and unknown size/color combinations report zero, they are
// not errors.
func (r *StockRepository) Availability(ctx context.Context, key utils.VariantKey) (int, error) {
	var stock int

	// (a) exact variant row
	queryExact := `
		SELECT stock FROM variant_stock
		WHERE product_id = $1 AND size = $2 AND color = $3
	`
	err := db.DB.QueryRowContext(ctx, queryExact, key.ProductID, key.Size, key.Color).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query variant stock: %w", err)
	}

	// (b) same size, any color
	var sameSizeCount int
	var sameSizeSum int
	querySameSize := `
		SELECT COUNT(*), COALESCE(SUM(stock), 0) FROM variant_stock
		WHERE product_id = $1 AND size = $2
	`
	err = db.DB.QueryRowContext(ctx, querySameSize, key.ProductID, key.Size).Scan(&sameSizeCount, &sameSizeSum)
	if err != nil {
		return 0, fmt.Errorf("failed to query same-size stock: %w", err)
	}
	if sameSizeCount > 0 {
		return sameSizeSum, nil
	}

	// (c) aggregate
	queryAggregate := `SELECT stock FROM products WHERE id = $1`
	err = db.DB.QueryRowContext(ctx, queryAggregate, key.ProductID).Scan(&stock)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("🔍 Availability: Unknown product %d, reporting zero", key.ProductID)
			return 0, nil
		}
		return 0, fmt.Errorf("failed to query aggregate stock: %w", err)
	}

	return stock, nil
}

// Reserve decrements stock for a variant in its own transaction. Called by
// admin tooling and tests; order finalization uses ReserveInTx inside the
// payment transaction.
func (r *StockRepository) Reserve(ctx context.Context, key utils.VariantKey, quantity int) error {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.ReserveInTx(ctx, tx, key, quantity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil
}

// ReserveInTx decrements the matching variant_stock row (if one exists) AND
// the product aggregate, inside the caller's transaction. Both decrements are
// conditional row-level check-and-decrement statements, never a read-then-
// write pair, so two racing reservations for the last unit cannot both win.
// On shortfall nothing is decremented and an InsufficientStockError reports
// the variant and what was available.
func (r *StockRepository) ReserveInTx(ctx context.Context, tx *sql.Tx, key utils.VariantKey, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	log.Printf("📦 Reserve: product=%d size=%q color=%q qty=%d", key.ProductID, key.Size, key.Color, quantity)

	// Try the exact variant row first: conditional decrement.
	queryVariant := `
		UPDATE variant_stock
		SET stock = stock - $1, updated_at = NOW()
		WHERE product_id = $2 AND size = $3 AND color = $4 AND stock >= $1
	`
	result, err := tx.ExecContext(ctx, queryVariant, quantity, key.ProductID, key.Size, key.Color)
	if err != nil {
		return fmt.Errorf("failed to decrement variant stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}

	if affected == 1 {
		// Matrix row decremented; keep the aggregate in sync. Legacy
		// aggregates may have drifted below the matrix sum, hence the
		// GREATEST clamp instead of a hard condition.
		queryAggregate := `
			UPDATE products
			SET stock = GREATEST(stock - $1, 0), updated_at = NOW()
			WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, queryAggregate, quantity, key.ProductID); err != nil {
			return fmt.Errorf("failed to sync aggregate stock: %w", err)
		}
		log.Printf("✓ Reserve: variant + aggregate decremented for product %d", key.ProductID)
		return nil
	}

	// The conditional update matched nothing: either the row exists with too
	// little stock, or there is no matrix row for this key.
	var variantStock int
	queryCheck := `
		SELECT stock FROM variant_stock
		WHERE product_id = $1 AND size = $2 AND color = $3
	`
	err = tx.QueryRowContext(ctx, queryCheck, key.ProductID, key.Size, key.Color).Scan(&variantStock)
	if err == nil {
		log.Printf("❌ Reserve: insufficient variant stock for product %d: requested %d, available %d",
			key.ProductID, quantity, variantStock)
		return &InsufficientStockError{Key: key, Requested: quantity, Available: variantStock}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check variant stock: %w", err)
	}

	// No matrix row: decrement only the aggregate, also conditionally.
	queryProduct := `
		UPDATE products
		SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`
	result, err = tx.ExecContext(ctx, queryProduct, quantity, key.ProductID)
	if err != nil {
		return fmt.Errorf("failed to decrement aggregate stock: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 1 {
		log.Printf("✓ Reserve: aggregate decremented for product %d (no matrix row)", key.ProductID)
		return nil
	}

	var aggregateStock int
	err = tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, key.ProductID).Scan(&aggregateStock)
	if err != nil {
		if err == sql.ErrNoRows {
			aggregateStock = 0
		} else {
			return fmt.Errorf("failed to check aggregate stock: %w", err)
		}
	}

	log.Printf("❌ Reserve: insufficient aggregate stock for product %d: requested %d, available %d",
		key.ProductID, quantity, aggregateStock)
	return &InsufficientStockError{Key: key, Requested: quantity, Available: aggregateStock}
}

// RecomputeAggregate recalculates a product's aggregate stock as the sum of
// its variant_stock rows. Repair operation for after direct matrix edits;
// idempotent and safe to call at any time. Products with no matrix rows are
// left untouched (their aggregate is the only source of truth).
func (r *StockRepository) RecomputeAggregate(ctx context.Context, productID int64) (*models.RecomputeAggregateResponse, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var rowCount, matrixSum int
	querySum := `
		SELECT COUNT(*), COALESCE(SUM(stock), 0) FROM variant_stock
		WHERE product_id = $1
	`
	if err := tx.QueryRowContext(ctx, querySum, productID).Scan(&rowCount, &matrixSum); err != nil {
		return nil, fmt.Errorf("failed to sum variant stock: %w", err)
	}

	if rowCount == 0 {
		var currentStock int
		err := tx.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&currentStock)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product stock: %w", err)
		}
		log.Printf("🔍 RecomputeAggregate: product %d has no matrix rows, aggregate %d left as-is", productID, currentStock)
		return &models.RecomputeAggregateResponse{
			ProductID:      productID,
			AggregateStock: currentStock,
			Recomputed:     false,
		}, nil
	}

	var newStock int
	queryUpdate := `
		UPDATE products SET stock = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING stock
	`
	if err := tx.QueryRowContext(ctx, queryUpdate, matrixSum, productID).Scan(&newStock); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update aggregate stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recompute: %w", err)
	}

	log.Printf("✅ RecomputeAggregate: product %d aggregate set to %d (%d matrix rows)", productID, newStock, rowCount)
	return &models.RecomputeAggregateResponse{
		ProductID:      productID,
		AggregateStock: newStock,
		Recomputed:     true,
	}, nil
}

// UpsertVariantStock adds stock to a variant row, creating it if it doesn't
// exist. The (product, size, color) triple is unique, including the
// "no variant" triple. The aggregate counter is NOT synced here; call
// RecomputeAggregate after editing the matrix.
func (r *StockRepository) UpsertVariantStock(ctx context.Context, req *models.UpsertVariantStockRequest) (*models.VariantStockEntry, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	key := utils.ResolveVariantKey(req.ProductID, req.Size, req.Color)
	log.Printf("📦 UpsertVariantStock: product=%d size=%q color=%q qty=%d", key.ProductID, key.Size, key.Color, req.Quantity)

	// Verify the product exists before touching the matrix.
	var exists bool
	err := db.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, key.ProductID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	queryUpsert := `
		INSERT INTO variant_stock (product_id, size, color, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (product_id, size, color)
		DO UPDATE SET
			stock = variant_stock.stock + EXCLUDED.stock,
			updated_at = NOW()
		RETURNING id, product_id, size, color, stock, created_at, updated_at
	`

	var entry models.VariantStockEntry
	err = db.DB.QueryRowContext(ctx, queryUpsert, key.ProductID, key.Size, key.Color, req.Quantity).Scan(
		&entry.ID,
		&entry.ProductID,
		&entry.Size,
		&entry.Color,
		&entry.Stock,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		log.Printf("❌ UpsertVariantStock: Error upserting variant: %v", err)
		return nil, fmt.Errorf("failed to upsert variant stock: %w", err)
	}

	log.Printf("✓ UpsertVariantStock: variant %d now at %d units", entry.ID, entry.Stock)
	return &entry, nil
}

// GenerateMatrix expands a product's configured size list × color list into
// zero-stock variant rows, skipping combinations that already exist. Products
// with neither sizes nor colors are left matrix-less so their aggregate count
// keeps serving availability.
func (r *StockRepository) GenerateMatrix(ctx context.Context, productID int64) (*models.GenerateMatrixResponse, error) {
	var sizeOptions, colorOptions string
	query := `
		SELECT COALESCE(size_options, ''), COALESCE(color_options, '')
		FROM products WHERE id = $1
	`
	err := db.DB.QueryRowContext(ctx, query, productID).Scan(&sizeOptions, &colorOptions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product options: %w", err)
	}

	sizes := utils.SplitOptionList(sizeOptions)
	colors := utils.SplitOptionList(colorOptions)

	if len(sizes) == 0 && len(colors) == 0 {
		log.Printf("🔍 GenerateMatrix: product %d has no size/color options, nothing to generate", productID)
		return &models.GenerateMatrixResponse{ProductID: productID}, nil
	}

	// A missing dimension contributes the single empty value so the matrix
	// still covers "size only" and "color only" products.
	if len(sizes) == 0 {
		sizes = []string{""}
	}
	if len(colors) == 0 {
		colors = []string{""}
	}

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	queryInsert := `
		INSERT INTO variant_stock (product_id, size, color, stock, created_at, updated_at)
		VALUES ($1, $2, $3, 0, NOW(), NOW())
		ON CONFLICT (product_id, size, color) DO NOTHING
	`

	response := &models.GenerateMatrixResponse{ProductID: productID}
	for _, size := range sizes {
		for _, color := range colors {
			normalizedSize := utils.NormalizeOption(size)
			normalizedColor := utils.NormalizeOption(color)

			result, err := tx.ExecContext(ctx, queryInsert, productID, normalizedSize, normalizedColor)
			if err != nil {
				return nil, fmt.Errorf("failed to insert variant row (%q, %q): %w", normalizedSize, normalizedColor, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return nil, fmt.Errorf("failed to read rows affected: %w", err)
			}
			if affected == 1 {
				response.Created++
			} else {
				response.Skipped++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit matrix generation: %w", err)
	}

	log.Printf("✅ GenerateMatrix: product %d, %d rows created, %d skipped", productID, response.Created, response.Skipped)
	return response, nil
}

// ListVariantStock retrieves the full matrix for a product
func (r *StockRepository) ListVariantStock(ctx context.Context, productID int64) ([]models.VariantStockEntry, error) {
	query := `
		SELECT id, product_id, size, color, stock, created_at, updated_at
		FROM variant_stock
		WHERE product_id = $1
		ORDER BY size ASC, color ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variant stock: %w", err)
	}
	defer rows.Close()

	var entries []models.VariantStockEntry
	for rows.Next() {
		var entry models.VariantStockEntry
		err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Size,
			&entry.Color,
			&entry.Stock,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			log.Printf("❌ ListVariantStock: Error scanning entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate variant stock: %w", err)
	}

	return entries, nil
}
