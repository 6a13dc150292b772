package service

import (
	"context"
	"sync"

	"jascshop/models"
)

// CartStore is session-scoped storage for carts. Implementations persist one
// cart document per visitor session; the cart has no identity beyond the
// session and disappears with it.
type CartStore interface {
	// Get returns the session's cart, or an empty cart when none is stored.
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	// Put stores the session's cart, replacing any previous document.
	Put(ctx context.Context, cart *models.Cart) error
	// Delete removes the session's cart entirely.
	Delete(ctx context.Context, sessionID string) error
}

// MemoryCartStore keeps carts in process memory. Used by tests and local
// development without Redis. A single visitor's session is effectively
// single-writer, but the map itself is shared across sessions.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]*models.Cart
}

// NewMemoryCartStore creates an empty in-memory store
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string]*models.Cart),
	}
}

// Ensure MemoryCartStore implements CartStore
var _ CartStore = (*MemoryCartStore)(nil)

// Get returns a copy of the session's cart so callers never mutate shared
// state without going through Put.
func (s *MemoryCartStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.carts[sessionID]
	if !exists {
		return models.NewCart(sessionID), nil
	}

	copied := models.NewCart(sessionID)
	for key, line := range stored.Lines {
		copied.Lines[key] = line
	}
	return copied, nil
}

// Put stores the session's cart
func (s *MemoryCartStore) Put(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := models.NewCart(cart.SessionID)
	for key, line := range cart.Lines {
		copied.Lines[key] = line
	}
	s.carts[cart.SessionID] = copied
	return nil
}

// Delete removes the session's cart
func (s *MemoryCartStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
