package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"kickvibe/internal/domain"
)

// ContextKey is the type for request-context keys in this package.
type ContextKey string

// currentUserKey holds the authenticated *domain.User.
const currentUserKey ContextKey = "currentUser"

// Cookie names shared by login, refresh and the middleware.
const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*domain.User)
	return user, ok
}

// extractAccessToken reads the access token from the accessToken cookie
// first, then from the Authorization: Bearer header.
func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth verifies the access token, loads the user behind it and
// attaches the identity to the request context. Every failure is a 401
// with the underlying message; nothing is swallowed or retried.
func (h *HTTPHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractAccessToken(r)
		if tokenString == "" {
			h.logger.WarnContext(r.Context(), "Request without access token", slog.String("path", r.URL.Path))
			h.respondError(w, r, NewError(http.StatusUnauthorized, "Unauthorized request. Token not found."))
			return
		}

		claims, err := h.tokens.VerifyAccess(tokenString)
		if err != nil {
			h.logger.WarnContext(r.Context(), "Invalid or expired access token", slog.String("error", err.Error()))
			h.respondError(w, r, NewError(http.StatusUnauthorized, "Invalid or expired token"))
			return
		}

		// The token may outlive the account; a deleted user is still a 401.
		user, err := h.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			h.logger.WarnContext(r.Context(), "User from valid token not found", slog.String("userID", claims.UserID))
			h.respondError(w, r, NewError(http.StatusUnauthorized, "Invalid access token. User not found."))
			return
		}
		user.PasswordHash = ""
		user.RefreshToken = nil

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser is the in-handler companion of RequireAuth.
func (h *HTTPHandler) currentUser(r *http.Request) (*domain.User, error) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "User missing from request context after RequireAuth", slog.String("path", r.URL.Path))
		return nil, NewError(http.StatusInternalServerError, "Error processing user identity")
	}
	return user, nil
}
