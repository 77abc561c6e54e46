package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"kickvibe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerMultipart(t *testing.T, env *testEnv, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterUser(t *testing.T) {
	env := newTestEnv(t)

	fields := map[string]string{
		"username":  "kicks_fan",
		"email":     "fan@example.com",
		"password":  "hunter22",
		"full_name": "Kicks Fan",
	}
	rec := registerMultipart(t, env, fields)
	require.Equal(t, http.StatusCreated, rec.Code)

	var user domain.User
	decodeData(t, rec, &user)
	assert.Equal(t, "kicks_fan", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// Same email again is a conflict.
	rec = registerMultipart(t, env, fields)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	rec := registerMultipart(t, env, map[string]string{
		"username": "ab", // too short
		"email":    "not-an-email",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginThenCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email:    "runner@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login domain.LoginResponse
	decodeData(t, rec, &login)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, user.ID, login.User.ID)

	// Cookies are set httpOnly.
	cookies := rec.Result().Cookies()
	var names []string
	for _, c := range cookies {
		names = append(names, c.Name)
		assert.True(t, c.HttpOnly, "cookie %s must be httpOnly", c.Name)
	}
	assert.Contains(t, names, "accessToken")
	assert.Contains(t, names, "refreshToken")

	// The issued token identifies the same user.
	rec = env.doJSON(t, http.MethodGet, "/api/v1/users/current-user", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current domain.User
	decodeData(t, rec, &current)
	assert.Equal(t, user.ID, current.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email:    "runner@example.com",
		Password: "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func refreshWithCookie(t *testing.T, env *testEnv, refreshToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email:    "runner@example.com",
		Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login domain.LoginResponse
	decodeData(t, rec, &login)

	// First rotation succeeds and returns a new pair.
	rec = refreshWithCookie(t, env, login.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed domain.LoginResponse
	decodeData(t, rec, &refreshed)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// Replaying the old token after rotation is rejected.
	rec = refreshWithCookie(t, env, login.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The new token still works.
	rec = refreshWithCookie(t, env, refreshed.RefreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/refresh-token", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email:    "runner@example.com",
		Password: "secret123",
	})
	var login domain.LoginResponse
	decodeData(t, rec, &login)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/users/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The revoked refresh token can no longer rotate.
	rec = refreshWithCookie(t, env, login.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)

	newName := "Marathon Runner"
	rec := env.doJSON(t, http.MethodPatch, "/api/v1/users/update-account", token,
		domain.UpdateAccountRequest{FullName: &newName})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.User
	decodeData(t, rec, &updated)
	assert.Equal(t, newName, updated.FullName)

	// Empty update is rejected.
	rec = env.doJSON(t, http.MethodPatch, "/api/v1/users/update-account", token,
		domain.UpdateAccountRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAccountEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "first", "first@example.com", "secret123", domain.RoleUser)
	second := env.createUser(t, "second", "second@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, second)

	taken := "first@example.com"
	rec := env.doJSON(t, http.MethodPatch, "/api/v1/users/update-account", token,
		domain.UpdateAccountRequest{Email: &taken})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "runner", "runner@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/change-password", token,
		domain.ChangePasswordRequest{OldPassword: "nope-nope", NewPassword: "brandnew1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/api/v1/users/change-password", token,
		domain.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "brandnew1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password no longer logs in; the new one does.
	rec = env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email: "runner@example.com", Password: "secret123",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", domain.LoginRequest{
		Email: "runner@example.com", Password: "brandnew1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownJSONFieldsRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    "runner@example.com",
		"password": "secret123",
		"evil":     "field",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
