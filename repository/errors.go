package repository

import (
	"errors"
	"fmt"

	"jascshop/utils"
)

// ErrProductNotFound is returned when a product id does not exist in the
// catalog.
var ErrProductNotFound = errors.New("product not found")

// ErrOrderNotFound is returned when an order reference does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrDuplicatePaymentEvent is returned when a payment callback arrives for an
// order that is no longer pending. Callers log it and treat the delivery as a
// no-op; stock is never touched twice.
var ErrDuplicatePaymentEvent = errors.New("payment event for order no longer pending")

// ErrPersistenceConflict is returned when a conditional stock decrement lost
// a race and the single internal retry lost again.
var ErrPersistenceConflict = errors.New("persistence conflict on stock reservation")

// InsufficientStockError reports that a reservation asked for more units than
// are available for a variant. The state is left unchanged; callers recover
// by clamping, dropping or flagging the single line, never by failing the
// whole checkout.
type InsufficientStockError struct {
	Key       utils.VariantKey
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (size=%q, color=%q): requested %d, available %d",
		e.Key.ProductID, e.Key.Size, e.Key.Color, e.Requested, e.Available)
}

// Shortfall is the number of units that could not be covered.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// IsInsufficientStock reports whether err is an InsufficientStockError and
// returns it when so.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var insuff *InsufficientStockError
	if errors.As(err, &insuff) {
		return insuff, true
	}
	return nil, false
}
