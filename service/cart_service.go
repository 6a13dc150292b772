package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"jascshop/models"
	"jascshop/pricing"
	"jascshop/repository"
	"jascshop/utils"
)

// CartService owns every cart mutation for a visitor session. Each mutation
// re-reads live availability from the stock ledger and clamps quantities to
// it; the cart never creates backorders and never trusts a stale snapshot for
// quantity limits. Unit prices, in contrast, ARE snapshots taken at add time
// and are not refreshed while the visitor shops.
//
// Nothing here reserves stock: concurrent visitors may race for the same
// final units, and the race is settled at payment confirmation.
type CartService struct {
	store    CartStore
	products repository.ProductRepositoryInterface
	stock    repository.StockRepositoryInterface
}

// NewCartService creates a new CartService
func NewCartService(store CartStore, products repository.ProductRepositoryInterface, stock repository.StockRepositoryInterface) *CartService {
	return &CartService{
		store:    store,
		products: products,
		stock:    stock,
	}
}

// Add resolves the variant key for a selection and creates a new cart line
// or increments an existing one, clamped to current availability. The line
// snapshots the product name, the display image and the final price at add
// time.
func (s *CartService) Add(ctx context.Context, sessionID string, req *models.AddLineRequest) (*models.CartView, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, fmt.Errorf("product %q is not available", product.Name)
	}

	key := utils.ResolveVariantKey(req.ProductID, req.Size, req.Color)
	available, err := s.stock.Availability(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var warnings []string
	encoded := key.Encode()
	line, exists := cart.Lines[encoded]

	wanted := req.Quantity
	if exists {
		wanted += line.Quantity
	}

	granted := wanted
	if granted > available {
		granted = available
		warnings = append(warnings, clampWarning(product.Name, key, available))
	}

	if granted <= 0 {
		// Nothing available for this variant; never keep a zero-quantity line.
		delete(cart.Lines, encoded)
		log.Printf("🛒 Add: no stock for product %d (size=%q color=%q), line dropped", key.ProductID, key.Size, key.Color)
	} else if exists {
		line.Quantity = granted
		cart.Lines[encoded] = line
	} else {
		imageURL := req.ImageURL
		if imageURL == "" {
			imageURL = product.ImageURL
		}
		cart.Lines[encoded] = models.CartLine{
			Key:         key,
			ProductName: product.Name,
			UnitPrice:   pricing.FinalPrice(product.Cost, product.Discount),
			Quantity:    granted,
			ImageURL:    imageURL,
		}
	}

	if err := s.store.Put(ctx, cart); err != nil {
		return nil, err
	}

	log.Printf("🛒 Add: session %s now has %d lines", sessionID, len(cart.Lines))
	return s.buildView(cart, warnings), nil
}

// SetQuantity changes an existing line's quantity, clamped to current
// availability. Quantity zero (or below) removes the line.
func (s *CartService) SetQuantity(ctx context.Context, sessionID string, req *models.SetQuantityRequest) (*models.CartView, error) {
	key := utils.ResolveVariantKey(req.ProductID, req.Size, req.Color)
	encoded := key.Encode()

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line, exists := cart.Lines[encoded]
	if !exists {
		return nil, fmt.Errorf("no cart line for product %d (size=%q, color=%q)", key.ProductID, key.Size, key.Color)
	}

	var warnings []string
	if req.Quantity <= 0 {
		delete(cart.Lines, encoded)
	} else {
		available, err := s.stock.Availability(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to check availability: %w", err)
		}

		granted := req.Quantity
		if granted > available {
			granted = available
			warnings = append(warnings, clampWarning(line.ProductName, key, available))
		}

		if granted <= 0 {
			delete(cart.Lines, encoded)
		} else {
			line.Quantity = granted
			cart.Lines[encoded] = line
		}
	}

	if err := s.store.Put(ctx, cart); err != nil {
		return nil, err
	}
	return s.buildView(cart, warnings), nil
}

// Remove deletes a line from the cart
func (s *CartService) Remove(ctx context.Context, sessionID string, req *models.RemoveLineRequest) (*models.CartView, error) {
	key := utils.ResolveVariantKey(req.ProductID, req.Size, req.Color)

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	delete(cart.Lines, key.Encode())

	if err := s.store.Put(ctx, cart); err != nil {
		return nil, err
	}
	return s.buildView(cart, nil), nil
}

// Clear empties the session's cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("🛒 Clear: cart emptied for session %s", sessionID)
	return nil
}

// View returns the cart's current lines with subtotals
func (s *CartService) View(ctx context.Context, sessionID string) (*models.CartView, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(cart, nil), nil
}

// Cart returns the raw session cart for checkout
func (s *CartService) Cart(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *CartService) buildView(cart *models.Cart, warnings []string) *models.CartView {
	view := &models.CartView{
		Lines:    []models.CartViewLine{},
		Subtotal: pricing.Total(nil),
		Warnings: warnings,
	}

	for _, encoded := range sortedLineKeys(cart) {
		line := cart.Lines[encoded]
		subtotal := line.Subtotal()
		view.Lines = append(view.Lines, models.CartViewLine{CartLine: line, Subtotal: subtotal})
		view.Subtotal = view.Subtotal.Add(subtotal)
		view.TotalItems += line.Quantity
	}

	return view
}

// sortedLineKeys returns the cart's encoded keys in a stable order so views
// and checkout results are deterministic.
func sortedLineKeys(cart *models.Cart) []string {
	keys := make([]string, 0, len(cart.Lines))
	for encoded := range cart.Lines {
		keys = append(keys, encoded)
	}
	sort.Strings(keys)
	return keys
}

func clampWarning(productName string, key utils.VariantKey, available int) string {
	label := key.Label()
	if label != "" {
		label = " (" + label + ")"
	}
	if available <= 0 {
		return fmt.Sprintf("Stock insuficiente para %s%s: sin unidades disponibles", productName, label)
	}
	return fmt.Sprintf("Stock insuficiente para %s%s: se ajustó a %d unidades", productName, label, available)
}
