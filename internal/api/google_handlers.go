package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kickvibe/internal/domain"
	"kickvibe/internal/store"
	"kickvibe/pkg/auth"

	"github.com/google/uuid"
)

const oauthStateCookie = "oauthState"

// googleUserInfo is the subset of the userinfo payload we consume.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleLogin handles GET /auth/google: sends the browser to Google's
// consent page with a single-use state value pinned in a cookie.
func (h *HTTPHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) error {
	if h.google == nil {
		return NewError(http.StatusNotImplemented, "Google login is not configured")
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
	return nil
}

// GoogleCallback handles GET /auth/google/callback: validates state,
// exchanges the code, fetches the profile and logs the user in, creating
// the account on first sight of the email.
func (h *HTTPHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if h.google == nil {
		return NewError(http.StatusNotImplemented, "Google login is not configured")
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		return NewError(http.StatusUnauthorized, "OAuth state mismatch")
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		return NewError(http.StatusBadRequest, "Missing authorization code")
	}

	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		h.logger.WarnContext(ctx, "Google code exchange failed", slog.String("error", err.Error()))
		return NewError(http.StatusUnauthorized, "Failed to exchange authorization code")
	}

	resp, err := h.google.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to fetch Google user info", slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Failed to fetch Google profile")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return NewError(http.StatusUnauthorized, "Google rejected the access token")
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return NewError(http.StatusInternalServerError, "Failed to decode Google profile")
	}
	if info.Email == "" {
		return NewError(http.StatusUnauthorized, "Google profile has no email")
	}

	user, err := h.users.GetByEmail(ctx, info.Email)
	if errors.Is(err, store.ErrUserNotFound) {
		user, err = h.createGoogleUser(r, &info)
	}
	if err != nil {
		return err
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to issue token pair after Google login", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Login failed")
	}
	if err := h.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return err
	}

	h.setAuthCookies(w, pair)
	h.logger.InfoContext(ctx, "User logged in via Google", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, domain.LoginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
	return nil
}

// createGoogleUser registers a first-time Google account. The password
// is an unguessable random value: these accounts log in via Google only
// until the user sets a password of their own.
func (h *HTTPHandler) createGoogleUser(r *http.Request, info *googleUserInfo) (*domain.User, error) {
	ctx := r.Context()
	hashed, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, NewError(http.StatusInternalServerError, "Failed to register Google user")
	}

	username := strings.SplitN(info.Email, "@", 2)[0]
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        info.Email,
		PasswordHash: hashed,
		FullName:     info.Name,
		AvatarURL:    info.Picture,
		Role:         domain.RoleUser,
	}
	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			// Username collision on a fresh email: retry once with a
			// uniquified name.
			user.Username = username + "-" + user.ID[:8]
			if retryErr := h.users.Create(ctx, user); retryErr == nil {
				return user, nil
			}
		}
		return nil, err
	}
	h.logger.InfoContext(ctx, "User registered via Google", slog.String("userID", user.ID), slog.String("email", user.Email))
	return user, nil
}
