package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"jascshop/db"
	"jascshop/models"
)

// ProductRepository handles read-only database access to the catalog
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

const productColumns = `
	id, name, slug, COALESCE(description, '') as description, cost, discount,
	stock, is_available,
	COALESCE(image_url, '') as image_url,
	COALESCE(size_options, '') as size_options,
	COALESCE(color_options, '') as color_options,
	created_at, updated_at
`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Cost,
		&p.Discount,
		&p.Stock,
		&p.IsAvailable,
		&p.ImageURL,
		&p.SizeOptions,
		&p.ColorOptions,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a single product
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		log.Printf("❌ GetByID: Error fetching product %d: %v", id, err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListAvailable retrieves available products, optionally filtered by category
// slug and a name/description search term
func (r *ProductRepository) ListAvailable(ctx context.Context, filters models.ProductFilterParams) ([]models.Product, error) {
	baseQuery := `SELECT ` + productColumns + ` FROM products WHERE is_available = true`

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf(
			"category_id = (SELECT id FROM categories WHERE slug = $%d)", argIndex))
		args = append(args, *filters.Category)
		argIndex++
	}

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')", argIndex, argIndex))
		args = append(args, strings.TrimSpace(*filters.Search))
		argIndex++
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := db.DB.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		log.Printf("❌ ListAvailable: Error querying products: %v", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			log.Printf("❌ ListAvailable: Error scanning product: %v", err)
			continue
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	log.Printf("✓ ListAvailable: Found %d products", len(products))
	return products, nil
}
