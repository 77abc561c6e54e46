package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"kickvibe/internal/domain"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	// ErrDuplicateReview enforces the one-review-per-(user, shoe) policy.
	ErrDuplicateReview = errors.New("user has already reviewed this shoe")
)

// ReviewListParams control pagination of a shoe's reviews.
type ReviewListParams struct {
	Page     int
	PageSize int
}

// ReviewStore defines persistence operations for reviews.
type ReviewStore interface {
	Create(ctx context.Context, review *domain.Review) error
	// ListByShoe returns one page of the shoe's reviews, newest first,
	// with the reviewer username joined, plus the total count.
	ListByShoe(ctx context.Context, shoeID string, params ReviewListParams) ([]*domain.Review, int, error)
}

// MockReviewStore is an in-memory ReviewStore for tests.
type MockReviewStore struct {
	mu      sync.RWMutex
	users   *MockUserStore
	reviews map[string]*domain.Review
}

func NewMockReviewStore(users *MockUserStore) *MockReviewStore {
	return &MockReviewStore{users: users, reviews: make(map[string]*domain.Review)}
}

func (m *MockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.UserID == review.UserID && existing.ShoeID == review.ShoeID {
			return ErrDuplicateReview
		}
	}
	reviewCopy := *review
	reviewCopy.CreatedAt = time.Now().UTC()
	reviewCopy.UpdatedAt = reviewCopy.CreatedAt
	m.reviews[review.ID] = &reviewCopy
	return nil
}

func (m *MockReviewStore) ListByShoe(ctx context.Context, shoeID string, params ReviewListParams) ([]*domain.Review, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*domain.Review
	for _, review := range m.reviews {
		if review.ShoeID != shoeID {
			continue
		}
		reviewCopy := *review
		if m.users != nil {
			if user, err := m.users.GetByID(ctx, review.UserID); err == nil {
				reviewCopy.Username = user.Username
			}
		}
		all = append(all, &reviewCopy)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (params.Page - 1) * params.PageSize
	if start >= total {
		return []*domain.Review{}, total, nil
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}
