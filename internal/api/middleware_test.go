package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kickvibe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthCookie(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var current domain.User
	decodeData(t, rec, &current)
	assert.Equal(t, user.ID, current.ID)
}

func TestRequireAuthCookieBeatsHeader(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)

	// A garbage header must not shadow a valid cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/v1/users/current-user", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not an access token.
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)
	pair, err := env.tokens.IssuePair(user.ID, user.Role)
	require.NoError(t, err)
	rec = env.doJSON(t, http.MethodGet, "/api/v1/users/current-user", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ghost := &domain.User{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleUser}
	token := env.accessToken(t, ghost)

	rec := env.doJSON(t, http.MethodGet, "/api/v1/users/current-user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/api/v1/shoes", "", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	// Preflight short-circuits before routing.
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/shoes", nil)
	preflight := httptest.NewRecorder()
	env.router.ServeHTTP(preflight, req)
	assert.Equal(t, http.StatusNoContent, preflight.Code)
	assert.Contains(t, preflight.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}
