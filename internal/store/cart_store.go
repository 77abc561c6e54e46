package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kickvibe/internal/domain"

	"github.com/google/uuid"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartStore defines persistence operations for per-user carts. Every
// user has at most one cart; reads create it lazily.
type CartStore interface {
	// GetOrCreate loads the user's cart with its items, including the
	// joined shoe name/price/stock, creating an empty cart on first use.
	GetOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error)
	// AddItem appends a line or, when a line with the same shoe and size
	// already exists, increments its quantity.
	AddItem(ctx context.Context, cartID, shoeID, size string, quantity int) error
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID string) error
}

// MockCartStore is an in-memory CartStore for tests. It joins shoe
// fields from the given MockShoeStore the way the postgres store joins
// from the shoes table.
type MockCartStore struct {
	mu     sync.Mutex
	shoes  *MockShoeStore
	carts  map[string]*domain.Cart       // keyed by owner ID
	items  map[string][]*domain.CartItem // keyed by cart ID
	nextID func() string
}

func NewMockCartStore(shoes *MockShoeStore) *MockCartStore {
	return &MockCartStore{
		shoes:  shoes,
		carts:  make(map[string]*domain.Cart),
		items:  make(map[string][]*domain.CartItem),
		nextID: uuid.NewString,
	}
}

func (m *MockCartStore) GetOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart := m.getOrCreateLocked(ownerID)

	out := *cart
	out.Items = nil
	for _, item := range m.items[cart.ID] {
		itemCopy := *item
		if shoe, err := m.shoes.GetByID(ctx, item.ShoeID); err == nil {
			itemCopy.ShoeName = shoe.Name
			itemCopy.ShoePrice = shoe.Price
			itemCopy.ShoeStock = shoe.Stock
		}
		out.Items = append(out.Items, &itemCopy)
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].CreatedAt.Before(out.Items[j].CreatedAt) })
	return &out, nil
}

func (m *MockCartStore) getOrCreateLocked(ownerID string) *domain.Cart {
	if cart, ok := m.carts[ownerID]; ok {
		return cart
	}
	cart := &domain.Cart{
		ID:        m.nextID(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.carts[ownerID] = cart
	return cart
}

func (m *MockCartStore) AddItem(ctx context.Context, cartID, shoeID, size string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items[cartID] {
		if item.ShoeID == shoeID && item.Size == size {
			item.Quantity += quantity
			item.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	m.items[cartID] = append(m.items[cartID], &domain.CartItem{
		ID:        m.nextID(),
		CartID:    cartID,
		ShoeID:    shoeID,
		Size:      size,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

func (m *MockCartStore) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items[cartID] {
		if item.ID == itemID {
			item.Quantity = quantity
			item.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrCartItemNotFound
}

func (m *MockCartStore) RemoveItem(ctx context.Context, cartID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[cartID]
	for i, item := range items {
		if item.ID == itemID {
			m.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}
