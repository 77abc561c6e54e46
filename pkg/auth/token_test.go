package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) TokenManager {
	t.Helper()
	manager, err := NewTokenManager("access-secret-0123456789", "refresh-secret-0123456789", 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return manager
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := NewTokenManager("", "refresh", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("same-secret", "same-secret", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestIssuePairRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	pair, err := manager.IssuePair("user-42", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := manager.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", access.UserID)
	assert.Equal(t, "admin", access.Role)
	assert.Equal(t, TokenTypeAccess, access.TokenType)

	refresh, err := manager.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-42", refresh.UserID)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	manager := newTestManager(t)
	pair, err := manager.IssuePair("user-42", "user")
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	manager := newTestManager(t)
	other, err := NewTokenManager("other-access-secret", "other-refresh-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := other.IssuePair("user-42", "user")
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	manager, err := NewTokenManager("access-secret-0123456789", "refresh-secret-0123456789", -time.Minute, -time.Minute)
	require.NoError(t, err)

	pair, err := manager.IssuePair("user-42", "user")
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	manager := newTestManager(t)

	first, err := manager.IssuePair("user-42", "user")
	require.NoError(t, err)
	second, err := manager.IssuePair("user-42", "user")
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
}
