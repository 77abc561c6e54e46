package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"kickvibe/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")
	// ErrTokenReuse is returned when a refresh rotation is attempted with a
	// token that is no longer the stored one. Treated as possible theft.
	ErrTokenReuse = errors.New("refresh token does not match the stored token")
)

// UserStore defines persistence operations for user accounts.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// SetRefreshToken overwrites the stored refresh token (login).
	SetRefreshToken(ctx context.Context, userID, token string) error
	// ClearRefreshToken removes the stored refresh token (logout).
	ClearRefreshToken(ctx context.Context, userID string) error
	// RotateRefreshToken swaps oldToken for newToken only if oldToken is
	// still the stored one. Returns ErrTokenReuse on mismatch so that two
	// racing refresh calls cannot both succeed.
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
}

// MockUserStore is an in-memory UserStore for tests.
type MockUserStore struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	usersByEmail map[string]*domain.User
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:        make(map[string]*domain.User),
		usersByEmail: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.ID != user.ID && (existing.Email == user.Email || existing.Username == user.Username) {
			return ErrUserAlreadyExists
		}
	}

	userCopy := *user
	userCopy.CreatedAt = time.Now().UTC()
	userCopy.UpdatedAt = userCopy.CreatedAt
	m.users[user.ID] = &userCopy
	m.usersByEmail[user.Email] = &userCopy
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[userID]; ok {
		userCopy := *user
		return &userCopy, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.usersByEmail[email]; ok {
		userCopy := *user
		return &userCopy, nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	if user.Email != "" && user.Email != existing.Email {
		if other, taken := m.usersByEmail[user.Email]; taken && other.ID != user.ID {
			return ErrUserAlreadyExists
		}
		delete(m.usersByEmail, existing.Email)
		existing.Email = user.Email
		m.usersByEmail[existing.Email] = existing
	}
	if user.FullName != "" {
		existing.FullName = user.FullName
	}
	if user.AvatarURL != "" {
		existing.AvatarURL = user.AvatarURL
	}
	if user.PasswordHash != "" {
		existing.PasswordHash = user.PasswordHash
	}
	if user.Role != "" {
		existing.Role = user.Role
	}
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserStore) SetRefreshToken(ctx context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = &token
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserStore) ClearRefreshToken(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = nil
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockUserStore) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if user.RefreshToken == nil || *user.RefreshToken != oldToken {
		return ErrTokenReuse
	}
	user.RefreshToken = &newToken
	user.UpdatedAt = time.Now().UTC()
	return nil
}
