package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"kickvibe/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrEmptyCart     = errors.New("cart is empty")
)

// InsufficientStockError names the line that could not be fulfilled.
type InsufficientStockError struct {
	ShoeID    string
	ShoeName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.ShoeName, e.Requested, e.Available)
}

// OrderStore defines persistence operations for orders.
type OrderStore interface {
	// PlaceOrder converts the owner's cart into an immutable order in a
	// single transaction: each line decrements shoe stock only if enough
	// remains, the snapshot is written, and the cart is emptied. Any
	// failure rolls the whole conversion back.
	PlaceOrder(ctx context.Context, ownerID, shippingAddress string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// MockOrderStore is an in-memory OrderStore for tests, backed by the
// mock cart and shoe stores so snapshots and stock checks behave like
// the real transaction.
type MockOrderStore struct {
	mu     sync.Mutex
	shoes  *MockShoeStore
	carts  *MockCartStore
	orders map[string]*domain.Order
}

func NewMockOrderStore(shoes *MockShoeStore, carts *MockCartStore) *MockOrderStore {
	return &MockOrderStore{
		shoes:  shoes,
		carts:  carts,
		orders: make(map[string]*domain.Order),
	}
}

func (m *MockOrderStore) PlaceOrder(ctx context.Context, ownerID, shippingAddress string) (*domain.Order, error) {
	cart, err := m.carts.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Stock check first so a failing line leaves everything untouched.
	for _, item := range cart.Items {
		shoe, err := m.shoes.GetByID(ctx, item.ShoeID)
		if err != nil {
			return nil, err
		}
		if item.Quantity > shoe.Stock {
			return nil, &InsufficientStockError{
				ShoeID:    shoe.ID,
				ShoeName:  shoe.Name,
				Requested: item.Quantity,
				Available: shoe.Stock,
			}
		}
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		ShippingAddress: shippingAddress,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	for _, item := range cart.Items {
		shoe, _ := m.shoes.GetByID(ctx, item.ShoeID)
		shoe.Stock -= item.Quantity
		if err := m.shoes.Update(ctx, shoe); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, &domain.OrderItem{
			ID:       uuid.NewString(),
			OrderID:  order.ID,
			ShoeID:   item.ShoeID,
			Name:     item.ShoeName,
			Price:    item.ShoePrice,
			Quantity: item.Quantity,
			Size:     item.Size,
		})
		order.TotalPrice += item.ShoePrice * float64(item.Quantity)
	}

	m.carts.mu.Lock()
	m.carts.items[cart.ID] = nil
	m.carts.mu.Unlock()

	m.orders[order.ID] = order
	return order, nil
}

func (m *MockOrderStore) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Order{}
	for _, order := range m.orders {
		if order.OwnerID == ownerID {
			orderCopy := *order
			out = append(out, &orderCopy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockOrderStore) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[orderID]; ok {
		orderCopy := *order
		return &orderCopy, nil
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[orderID]
	if !ok {
		return ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	return nil
}
