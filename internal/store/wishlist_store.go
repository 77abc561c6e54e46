package store

import (
	"context"
	"sync"
	"time"

	"kickvibe/internal/domain"

	"github.com/google/uuid"
)

// WishlistStore defines persistence operations for per-user wishlists.
// One wishlist per user, created lazily.
type WishlistStore interface {
	// GetByOwner loads the wishlist with its shoes joined in, creating it
	// on first use.
	GetByOwner(ctx context.Context, ownerID string) (*domain.Wishlist, error)
	// Toggle adds the shoe when absent, removes it when present, and
	// reports whether the shoe is wishlisted afterwards.
	Toggle(ctx context.Context, ownerID, shoeID string) (bool, error)
}

// MockWishlistStore is an in-memory WishlistStore for tests.
type MockWishlistStore struct {
	mu    sync.Mutex
	shoes *MockShoeStore
	lists map[string]*domain.Wishlist // keyed by owner ID
	sets  map[string]map[string]bool  // wishlist ID -> shoe ID set
}

func NewMockWishlistStore(shoes *MockShoeStore) *MockWishlistStore {
	return &MockWishlistStore{
		shoes: shoes,
		lists: make(map[string]*domain.Wishlist),
		sets:  make(map[string]map[string]bool),
	}
}

func (m *MockWishlistStore) getOrCreateLocked(ownerID string) *domain.Wishlist {
	if list, ok := m.lists[ownerID]; ok {
		return list
	}
	list := &domain.Wishlist{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.lists[ownerID] = list
	m.sets[list.ID] = make(map[string]bool)
	return list
}

func (m *MockWishlistStore) GetByOwner(ctx context.Context, ownerID string) (*domain.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.getOrCreateLocked(ownerID)

	out := *list
	out.Shoes = []*domain.Shoe{}
	for shoeID := range m.sets[list.ID] {
		if shoe, err := m.shoes.GetByID(ctx, shoeID); err == nil {
			out.Shoes = append(out.Shoes, shoe)
		}
	}
	return &out, nil
}

func (m *MockWishlistStore) Toggle(ctx context.Context, ownerID, shoeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.getOrCreateLocked(ownerID)
	set := m.sets[list.ID]
	if set[shoeID] {
		delete(set, shoeID)
		return false, nil
	}
	set[shoeID] = true
	return true, nil
}
