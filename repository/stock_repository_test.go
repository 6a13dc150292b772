package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jascshop/db"
	"jascshop/utils"
)

// newMockDB swaps the shared connection for a sqlmock one so repository SQL
// runs against scripted expectations instead of a live Postgres.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	original := db.DB
	db.DB = mockDB
	t.Cleanup(func() {
		db.DB = original
		_ = mockDB.Close()
	})
	return mock
}

func TestAvailability_ExactVariantRow(t *testing.T) {
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5, Size: "M", Color: "Negro"}

	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, key.Size, key.Color).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

	got, err := NewStockRepository().Availability(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_SameSizeSumsAcrossColors(t *testing.T) {
	// No exact (M, Rojo) row, but two same-size rows in other colors exist:
	// availability is their sum, not any single row.
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5, Size: "M", Color: "Rojo"}

	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, key.Size, key.Color).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(key.ProductID, key.Size).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(2, 7))

	got, err := NewStockRepository().Availability(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_AggregateFallback(t *testing.T) {
	// A matrix-less product answers from its aggregate counter.
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5}

	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, "", "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(key.ProductID, "").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs(key.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(4))

	got, err := NewStockRepository().Availability(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailability_UnknownProductIsZero(t *testing.T) {
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 999}

	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, "", "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(key.ProductID, "").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs(key.ProductID).
		WillReturnError(sql.ErrNoRows)

	got, err := NewStockRepository().Availability(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInTx_DecrementsVariantAndAggregate(t *testing.T) {
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5, Size: "M", Color: "Negro"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE variant_stock SET stock = stock - `).
		WithArgs(2, key.ProductID, key.Size, key.Color).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET stock = GREATEST`).
		WithArgs(2, key.ProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.DB.Begin()
	require.NoError(t, err)
	require.NoError(t, NewStockRepository().ReserveInTx(context.Background(), tx, key, 2))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInTx_ShortfallLeavesRowsUntouched(t *testing.T) {
	// The conditional decrement matches nothing when the row holds too little
	// stock; no other statement may run and the typed error carries what was
	// available.
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5, Size: "M", Color: "Negro"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE variant_stock SET stock = stock - `).
		WithArgs(3, key.ProductID, key.Size, key.Color).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, key.Size, key.Color).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := db.DB.Begin()
	require.NoError(t, err)
	err = NewStockRepository().ReserveInTx(context.Background(), tx, key, 3)

	shortfall, ok := IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, 3, shortfall.Requested)
	assert.Equal(t, 1, shortfall.Available)
	assert.Equal(t, 2, shortfall.Shortfall())

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInTx_AggregateOnlyProduct(t *testing.T) {
	// No matrix row for the key: the decrement falls through to the product
	// aggregate, still conditional.
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE variant_stock SET stock = stock - `).
		WithArgs(1, key.ProductID, "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, "", "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE products SET stock = stock - `).
		WithArgs(1, key.ProductID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	tx, err := db.DB.Begin()
	require.NoError(t, err)
	require.NoError(t, NewStockRepository().ReserveInTx(context.Background(), tx, key, 1))
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInTx_AggregateShortfall(t *testing.T) {
	// The losing side of a race for the last unit of a matrix-less product.
	mock := newMockDB(t)
	key := utils.VariantKey{ProductID: 5}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE variant_stock SET stock = stock - `).
		WithArgs(1, key.ProductID, "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT stock FROM variant_stock`).
		WithArgs(key.ProductID, "", "").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE products SET stock = stock - `).
		WithArgs(1, key.ProductID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs(key.ProductID).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(0))
	mock.ExpectRollback()

	tx, err := db.DB.Begin()
	require.NoError(t, err)
	err = NewStockRepository().ReserveInTx(context.Background(), tx, key, 1)

	shortfall, ok := IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, 0, shortfall.Available)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInTx_RejectsNonPositiveQuantity(t *testing.T) {
	err := NewStockRepository().ReserveInTx(context.Background(), nil, utils.VariantKey{ProductID: 5}, 0)
	assert.ErrorContains(t, err, "must be positive")
}

func TestRecomputeAggregate_SetsAggregateToMatrixSum(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 12))
	mock.ExpectQuery(`UPDATE products SET stock = `).
		WithArgs(12, int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(12))
	mock.ExpectCommit()

	response, err := NewStockRepository().RecomputeAggregate(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, response.Recomputed)
	assert.Equal(t, 12, response.AggregateStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeAggregate_EmptyMatrixIsNoOp(t *testing.T) {
	// Summing zero rows would wipe an aggregate-only product's stock, so the
	// aggregate must be left as-is.
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))
	mock.ExpectRollback()

	response, err := NewStockRepository().RecomputeAggregate(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, response.Recomputed)
	assert.Equal(t, 5, response.AggregateStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecomputeAggregate_UnknownProduct(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(stock\), 0\) FROM variant_stock`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewStockRepository().RecomputeAggregate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrProductNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMatrix_NoOptionsIsNoOp(t *testing.T) {
	// A product with neither sizes nor colors stays matrix-less; a ("", "")
	// zero row would shadow its aggregate stock.
	mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE\(size_options, ''\), COALESCE\(color_options, ''\)`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"size_options", "color_options"}).AddRow("", ""))

	response, err := NewStockRepository().GenerateMatrix(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, response.Created)
	assert.Equal(t, 0, response.Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateMatrix_ExpandsSizeByColor(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COALESCE\(size_options, ''\), COALESCE\(color_options, ''\)`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"size_options", "color_options"}).AddRow("S, M", "Negro"))

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO variant_stock`).
		WithArgs(int64(5), "S", "Negro").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO variant_stock`).
		WithArgs(int64(5), "M", "Negro").
		WillReturnResult(sqlmock.NewResult(0, 0)) // already existed
	mock.ExpectCommit()

	response, err := NewStockRepository().GenerateMatrix(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, response.Created)
	assert.Equal(t, 1, response.Skipped)
	require.NoError(t, mock.ExpectationsWereMet())
}
