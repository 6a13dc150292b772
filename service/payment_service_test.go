package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jascshop/models"
	"jascshop/utils"
)

type paymentFixture struct {
	stock    *fakeStockRepo
	orders   *fakeOrderRepo
	notifier *recordingNotifier
	payments *PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	stock := newFakeStockRepo()
	orders := newFakeOrderRepo(stock)
	notifier := &recordingNotifier{}
	return &paymentFixture{
		stock:    stock,
		orders:   orders,
		notifier: notifier,
		payments: NewPaymentService(orders, notifier),
	}
}

// placePendingOrder creates a pending order of qty units of product 5 size M.
func (fx *paymentFixture) placePendingOrder(t *testing.T, qty int) int64 {
	t.Helper()
	order, err := fx.orders.CreateWithLines(context.Background(), checkoutRequest(), []models.OrderLine{
		{ProductID: 5, ProductName: "Buso clásico", Quantity: qty, Size: "M"},
	})
	require.NoError(t, err)
	return order.ID
}

func TestConfirm_ApprovedReservesAndNotifies(t *testing.T) {
	ctx := context.Background()
	fx := newPaymentFixture(t)
	key := utils.ResolveVariantKey(5, "M", "")
	fx.stock.set(key, 10)
	orderID := fx.placePendingOrder(t, 2)

	result, err := fx.payments.Confirm(ctx, &models.PaymentEvent{Reference: orderID, Outcome: "APPROVED"})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
	require.Len(t, result.Reservations, 1)
	assert.Equal(t, models.LineStatusReserved, result.Reservations[0].Status)

	available, err := fx.stock.Availability(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 8, available)

	assert.Equal(t, []int64{orderID}, fx.notifier.sent)
}

func TestConfirm_DuplicateCallbackIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fx := newPaymentFixture(t)
	key := utils.ResolveVariantKey(5, "M", "")
	fx.stock.set(key, 10)
	orderID := fx.placePendingOrder(t, 2)

	event := &models.PaymentEvent{Reference: orderID, Outcome: "APPROVED", EventID: "evt-1"}

	first, err := fx.payments.Confirm(ctx, event)
	require.NoError(t, err)
	assert.True(t, first.Applied)

	// Gateway retries the same callback. Stock must not move again and no
	// second notification goes out.
	second, err := fx.payments.Confirm(ctx, event)
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, models.PaymentStatusPaid, second.PaymentStatus)

	available, err := fx.stock.Availability(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 8, available)
	assert.Len(t, fx.notifier.sent, 1)
}

func TestConfirm_DeclinedLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	fx := newPaymentFixture(t)
	key := utils.ResolveVariantKey(5, "M", "")
	fx.stock.set(key, 10)
	orderID := fx.placePendingOrder(t, 2)

	result, err := fx.payments.Confirm(ctx, &models.PaymentEvent{Reference: orderID, Outcome: "DECLINED"})
	require.NoError(t, err)

	assert.True(t, result.Applied)
	assert.Equal(t, models.PaymentStatusFailed, result.PaymentStatus)

	available, err := fx.stock.Availability(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 10, available)
	assert.Equal(t, 0, fx.stock.reserveCalls)
	assert.Empty(t, fx.notifier.sent)
}

func TestConfirm_LostRaceFlagsLineForReview(t *testing.T) {
	// Two orders for the last 2 units: the first confirmation wins the stock,
	// the second still goes paid but its line is flagged for manual review.
	ctx := context.Background()
	fx := newPaymentFixture(t)
	key := utils.ResolveVariantKey(5, "M", "")
	fx.stock.set(key, 2)

	winner := fx.placePendingOrder(t, 2)
	loser := fx.placePendingOrder(t, 2)

	won, err := fx.payments.Confirm(ctx, &models.PaymentEvent{Reference: winner, Outcome: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, models.LineStatusReserved, won.Reservations[0].Status)

	lost, err := fx.payments.Confirm(ctx, &models.PaymentEvent{Reference: loser, Outcome: "APPROVED"})
	require.NoError(t, err)
	assert.True(t, lost.Applied)
	assert.Equal(t, models.PaymentStatusPaid, lost.PaymentStatus)
	require.Len(t, lost.Reservations, 1)
	assert.Equal(t, models.LineStatusReview, lost.Reservations[0].Status)

	// Stock never goes negative.
	available, err := fx.stock.Availability(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	order, err := fx.orders.GetByID(ctx, loser)
	require.NoError(t, err)
	assert.True(t, order.Lines[0].NeedsReview)
}

func TestConfirm_OutcomeNormalization(t *testing.T) {
	ctx := context.Background()
	fx := newPaymentFixture(t)
	fx.stock.set(utils.ResolveVariantKey(5, "M", ""), 10)
	orderID := fx.placePendingOrder(t, 1)

	result, err := fx.payments.Confirm(ctx, &models.PaymentEvent{Reference: orderID, Outcome: "  approved  "})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.PaymentStatusPaid, result.PaymentStatus)
}

func TestConfirm_UnknownOutcome(t *testing.T) {
	fx := newPaymentFixture(t)
	orderID := fx.placePendingOrder(t, 1)

	_, err := fx.payments.Confirm(context.Background(), &models.PaymentEvent{Reference: orderID, Outcome: "VOIDED"})
	assert.ErrorContains(t, err, "unknown payment outcome")
}

func TestConfirm_UnknownOrder(t *testing.T) {
	fx := newPaymentFixture(t)

	_, err := fx.payments.Confirm(context.Background(), &models.PaymentEvent{Reference: 404, Outcome: "APPROVED"})
	assert.Error(t, err)
}
