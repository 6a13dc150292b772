package models

// VariantStockEntry represents one row of the fine-grained stock matrix:
// stock for a specific (product, size, color) triple. The triple is unique,
// including the "no variant" triple (empty size, empty color). Entries are
// created by administrators or by matrix generation and are never deleted
// automatically.
type VariantStockEntry struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Stock     int    `json:"stock"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UpsertVariantStockRequest represents the admin request body for adding
// stock to a variant
// Example: {"productId": 5, "size": "M", "color": "Negro", "quantity": 10}
type UpsertVariantStockRequest struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// GenerateMatrixResponse represents the response after expanding a product's
// size list × color list into variant stock rows
// Example: {"productId": 5, "created": 6, "skipped": 2}
type GenerateMatrixResponse struct {
	ProductID int64 `json:"productId"`
	Created   int   `json:"created"` // rows inserted with zero stock
	Skipped   int   `json:"skipped"` // combinations that already existed
}

// RecomputeAggregateResponse represents the response of the aggregate repair
// operation
// Example: {"productId": 5, "aggregateStock": 42, "recomputed": true}
type RecomputeAggregateResponse struct {
	ProductID      int64 `json:"productId"`
	AggregateStock int   `json:"aggregateStock"`
	Recomputed     bool  `json:"recomputed"` // false when the product has no matrix rows
}
