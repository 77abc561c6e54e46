package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"kickvibe/internal/domain"
)

var ErrShoeNotFound = errors.New("shoe not found")

// ShoeListParams are the sparse catalog filters plus pagination.
// Price bounds are inclusive when set.
type ShoeListParams struct {
	Page     int
	PageSize int
	Brand    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// ShoeStore defines persistence operations for the catalog.
type ShoeStore interface {
	Create(ctx context.Context, shoe *domain.Shoe) error
	GetByID(ctx context.Context, id string) (*domain.Shoe, error)
	Update(ctx context.Context, shoe *domain.Shoe) error
	Delete(ctx context.Context, id string) error
	// List returns the page of shoes matching params plus the total match
	// count. Ordering is newest first with id as tiebreak so offset
	// pagination stays stable.
	List(ctx context.Context, params ShoeListParams) ([]*domain.Shoe, int, error)
	// Search returns shoes matching the query ordered by descending
	// relevance. An empty result is a valid empty slice, never an error.
	Search(ctx context.Context, query string) ([]*domain.Shoe, error)
	NewArrivals(ctx context.Context, limit int) ([]*domain.Shoe, error)
	Featured(ctx context.Context, limit int) ([]*domain.Shoe, error)
}

// MockShoeStore is an in-memory ShoeStore for tests.
type MockShoeStore struct {
	mu    sync.RWMutex
	shoes map[string]*domain.Shoe
}

func NewMockShoeStore() *MockShoeStore {
	return &MockShoeStore{shoes: make(map[string]*domain.Shoe)}
}

func (m *MockShoeStore) Create(ctx context.Context, shoe *domain.Shoe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	shoeCopy := *shoe
	if shoeCopy.CreatedAt.IsZero() {
		shoeCopy.CreatedAt = time.Now().UTC()
	}
	shoeCopy.UpdatedAt = shoeCopy.CreatedAt
	m.shoes[shoe.ID] = &shoeCopy
	return nil
}

func (m *MockShoeStore) GetByID(ctx context.Context, id string) (*domain.Shoe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if shoe, ok := m.shoes[id]; ok {
		shoeCopy := *shoe
		return &shoeCopy, nil
	}
	return nil, ErrShoeNotFound
}

func (m *MockShoeStore) Update(ctx context.Context, shoe *domain.Shoe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shoes[shoe.ID]; !ok {
		return ErrShoeNotFound
	}
	shoeCopy := *shoe
	shoeCopy.UpdatedAt = time.Now().UTC()
	m.shoes[shoe.ID] = &shoeCopy
	return nil
}

func (m *MockShoeStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shoes[id]; !ok {
		return ErrShoeNotFound
	}
	delete(m.shoes, id)
	return nil
}

func (m *MockShoeStore) matching(params ShoeListParams) []*domain.Shoe {
	var out []*domain.Shoe
	for _, shoe := range m.shoes {
		if params.Brand != "" && shoe.Brand != params.Brand {
			continue
		}
		if params.Category != "" && shoe.Category != params.Category {
			continue
		}
		if params.MinPrice != nil && shoe.Price < *params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && shoe.Price > *params.MaxPrice {
			continue
		}
		shoeCopy := *shoe
		out = append(out, &shoeCopy)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MockShoeStore) List(ctx context.Context, params ShoeListParams) ([]*domain.Shoe, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.matching(params)
	total := len(all)

	start := (params.Page - 1) * params.PageSize
	if start >= total {
		return []*domain.Shoe{}, total, nil
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *MockShoeStore) Search(ctx context.Context, query string) ([]*domain.Shoe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*domain.Shoe
	for _, shoe := range m.shoes {
		haystack := strings.ToLower(shoe.Name + " " + shoe.Description + " " + shoe.Brand + " " + shoe.Category)
		if strings.Contains(haystack, q) {
			shoeCopy := *shoe
			out = append(out, &shoeCopy)
		}
	}
	// Crude relevance: name hits above everything else, then newest first.
	sort.Slice(out, func(i, j int) bool {
		iName := strings.Contains(strings.ToLower(out[i].Name), q)
		jName := strings.Contains(strings.ToLower(out[j].Name), q)
		if iName != jName {
			return iName
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if out == nil {
		out = []*domain.Shoe{}
	}
	return out, nil
}

func (m *MockShoeStore) NewArrivals(ctx context.Context, limit int) ([]*domain.Shoe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.matching(ShoeListParams{})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockShoeStore) Featured(ctx context.Context, limit int) ([]*domain.Shoe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*domain.Shoe
	for _, shoe := range m.matching(ShoeListParams{}) {
		if shoe.IsFeatured {
			out = append(out, shoe)
		}
		if len(out) == limit {
			break
		}
	}
	if out == nil {
		out = []*domain.Shoe{}
	}
	return out, nil
}
