package api

import (
	"log/slog"
	"net/http"
	"time"

	"kickvibe/internal/media"
	"kickvibe/internal/store"
	"kickvibe/pkg/auth"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"
)

// HTTPHandler carries the stores and services the endpoint handlers use.
type HTTPHandler struct {
	users     store.UserStore
	shoes     store.ShoeStore
	carts     store.CartStore
	orders    store.OrderStore
	reviews   store.ReviewStore
	wishlists store.WishlistStore
	media     media.Store
	tokens    auth.TokenManager
	logger    *slog.Logger
	validator *validator.Validate

	google        *oauth2.Config // nil disables the Google login routes
	refreshTTL    time.Duration
	secureCookies bool
}

// Deps are the dependencies of NewHTTPHandler, grouped because there are
// many of them.
type Deps struct {
	Users     store.UserStore
	Shoes     store.ShoeStore
	Carts     store.CartStore
	Orders    store.OrderStore
	Reviews   store.ReviewStore
	Wishlists store.WishlistStore
	Media     media.Store
	Tokens    auth.TokenManager
	Logger    *slog.Logger
	Validator *validator.Validate

	Google        *oauth2.Config
	RefreshTTL    time.Duration
	SecureCookies bool
}

func NewHTTPHandler(deps Deps) *HTTPHandler {
	return &HTTPHandler{
		users:         deps.Users,
		shoes:         deps.Shoes,
		carts:         deps.Carts,
		orders:        deps.Orders,
		reviews:       deps.Reviews,
		wishlists:     deps.Wishlists,
		media:         deps.Media,
		tokens:        deps.Tokens,
		logger:        deps.Logger,
		validator:     deps.Validator,
		google:        deps.Google,
		refreshTTL:    deps.RefreshTTL,
		secureCookies: deps.SecureCookies,
	}
}

// setAuthCookies installs the httpOnly token cookies set on login and
// refresh.
func (h *HTTPHandler) setAuthCookies(w http.ResponseWriter, pair *auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.refreshTTL / time.Second),
	})
}

// clearAuthCookies expires both token cookies (logout).
func (h *HTTPHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
