package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"kickvibe/internal/domain"
	"kickvibe/internal/media"
	"kickvibe/internal/store"
	"kickvibe/pkg/auth"

	"github.com/google/uuid"
)

const maxMultipartMemory = 16 << 20 // 16 MiB, matches the JSON body limit

// RegisterUser handles POST /users/register: multipart form fields plus
// an optional avatar image.
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return NewError(http.StatusBadRequest, "Invalid multipart form", err.Error())
	}

	req := domain.RegisterRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		FullName: r.FormValue("full_name"),
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		return err
	}

	var avatarURL string
	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatarURL, err = h.media.Save(ctx, media.Upload{Filename: header.Filename, Reader: file})
		if err != nil {
			h.logger.ErrorContext(ctx, "Failed to store avatar", slog.String("error", err.Error()))
			return NewError(http.StatusInternalServerError, "Error uploading avatar")
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Error processing registration")
	}

	newUser := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FullName:     req.FullName,
		AvatarURL:    avatarURL,
		Role:         domain.RoleUser,
	}
	if err := h.users.Create(ctx, newUser); err != nil {
		if avatarURL != "" {
			if rmErr := h.media.Remove(ctx, avatarURL); rmErr != nil {
				h.logger.WarnContext(ctx, "Failed to remove avatar after registration failure", slog.String("error", rmErr.Error()))
			}
		}
		return err
	}

	h.logger.InfoContext(ctx, "User registered", slog.String("userID", newUser.ID), slog.String("username", newUser.Username))
	h.respondJSON(w, r, http.StatusCreated, newUser.Public(), "User registered successfully")
	return nil
}

// LoginUser handles POST /users/login: verifies credentials, issues a
// token pair, persists the refresh token and sets both cookies.
func (h *HTTPHandler) LoginUser(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	var req domain.LoginRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "Login attempt for non-existent email", slog.String("email", req.Email))
			return NewError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.logger.WarnContext(ctx, "Invalid password attempt", slog.String("userID", user.ID))
		return NewError(http.StatusUnauthorized, "Invalid email or password")
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to issue token pair", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Login failed")
	}
	// Overwrites any earlier session: one active refresh token per user.
	if err := h.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return err
	}

	h.setAuthCookies(w, pair)
	h.logger.InfoContext(ctx, "User logged in", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, domain.LoginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
	return nil
}

// LogoutUser handles POST /users/logout: revokes the stored refresh
// token and clears both cookies.
func (h *HTTPHandler) LogoutUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	if err := h.users.ClearRefreshToken(r.Context(), user.ID); err != nil {
		return err
	}
	h.clearAuthCookies(w)
	h.logger.InfoContext(r.Context(), "User logged out", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, nil, "User logged out successfully")
	return nil
}

// RefreshAccessToken handles POST /users/refresh-token. The presented
// refresh token must match the stored one; the swap is atomic, so a
// replayed token after rotation is answered 401.
func (h *HTTPHandler) RefreshAccessToken(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	presented := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		return NewError(http.StatusUnauthorized, "Unauthorized request. Refresh token not found.")
	}

	claims, err := h.tokens.VerifyRefresh(presented)
	if err != nil {
		h.logger.WarnContext(ctx, "Invalid refresh token presented", slog.String("error", err.Error()))
		return NewError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	user, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return NewError(http.StatusUnauthorized, "Invalid refresh token. User not found.")
		}
		return err
	}

	pair, err := h.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to issue token pair on refresh", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Token refresh failed")
	}
	if err := h.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, store.ErrTokenReuse) {
			h.logger.WarnContext(ctx, "Refresh token reuse detected", slog.String("userID", user.ID))
		}
		return err
	}

	h.setAuthCookies(w, pair)
	h.logger.InfoContext(ctx, "Tokens refreshed", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, domain.LoginResponse{
		User:         user.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed")
	return nil
}

// GetCurrentUser handles GET /users/current-user.
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, user.Public(), "Current user fetched successfully")
	return nil
}

// UpdateAccount handles PATCH /users/update-account (fullName/email).
func (h *HTTPHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.UpdateAccountRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}
	if req.FullName == nil && req.Email == nil {
		return NewError(http.StatusBadRequest, "Nothing to update")
	}

	current, err := h.users.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if req.FullName != nil {
		current.FullName = *req.FullName
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if err := h.users.Update(ctx, current); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Account updated", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, current.Public(), "Account updated successfully")
	return nil
}

// ChangePassword handles POST /users/change-password.
func (h *HTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.ChangePasswordRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	current, err := h.users.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(req.OldPassword, current.PasswordHash) {
		return NewError(http.StatusBadRequest, "Old password is incorrect")
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to hash new password", slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Failed to change password")
	}
	current.PasswordHash = hashed
	if err := h.users.Update(ctx, current); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Password changed", slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusOK, nil, "Password changed successfully")
	return nil
}

// parsePositiveInt reads an integer query parameter with a fallback.
func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
