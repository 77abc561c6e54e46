package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig carries the bits of config the router needs directly.
type RouterConfig struct {
	CORSOrigin   string
	MediaDir     string
	MediaBaseURL string
}

// NewHTTPRouter wires every endpoint under /api/v1 and the media file
// server under the media base URL.
func NewHTTPRouter(h *HTTPHandler, cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware(cfg.CORSOrigin))
	// Middleware only runs on matched routes, so preflights need a route
	// of their own; the CORS middleware answers them before this handler.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	if cfg.MediaDir != "" {
		router.PathPrefix(cfg.MediaBaseURL + "/").Handler(
			http.StripPrefix(cfg.MediaBaseURL+"/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Users
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/register", h.handle(h.RegisterUser)).Methods(http.MethodPost)
	users.HandleFunc("/login", h.handle(h.LoginUser)).Methods(http.MethodPost)
	users.HandleFunc("/refresh-token", h.handle(h.RefreshAccessToken)).Methods(http.MethodPost)

	usersAuth := users.NewRoute().Subrouter()
	usersAuth.Use(h.RequireAuth)
	usersAuth.HandleFunc("/logout", h.handle(h.LogoutUser)).Methods(http.MethodPost)
	usersAuth.HandleFunc("/current-user", h.handle(h.GetCurrentUser)).Methods(http.MethodGet)
	usersAuth.HandleFunc("/update-account", h.handle(h.UpdateAccount)).Methods(http.MethodPatch)
	usersAuth.HandleFunc("/change-password", h.handle(h.ChangePassword)).Methods(http.MethodPost)

	// Google OAuth
	google := api.PathPrefix("/auth").Subrouter()
	google.HandleFunc("/google", h.handle(h.GoogleLogin)).Methods(http.MethodGet)
	google.HandleFunc("/google/callback", h.handle(h.GoogleCallback)).Methods(http.MethodGet)

	// Catalog. Fixed paths must register before the {id} route.
	shoes := api.PathPrefix("/shoes").Subrouter()
	shoes.HandleFunc("/new-arrivals", h.handle(h.GetNewArrivals)).Methods(http.MethodGet)
	shoes.HandleFunc("/featured", h.handle(h.GetFeaturedShoes)).Methods(http.MethodGet)
	shoes.HandleFunc("/search", h.handle(h.SearchShoes)).Methods(http.MethodGet)
	shoes.HandleFunc("", h.handle(h.ListShoes)).Methods(http.MethodGet)

	shoesAuth := shoes.NewRoute().Subrouter()
	shoesAuth.Use(h.RequireAuth)
	shoesAuth.HandleFunc("/add", h.handle(h.AddShoe)).Methods(http.MethodPost)
	shoesAuth.HandleFunc("/{id}", h.handle(h.UpdateShoe)).Methods(http.MethodPatch)
	shoesAuth.HandleFunc("/{id}", h.handle(h.DeleteShoe)).Methods(http.MethodDelete)

	shoes.HandleFunc("/{id}", h.handle(h.GetShoeByID)).Methods(http.MethodGet)

	// Cart
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(h.RequireAuth)
	cart.HandleFunc("", h.handle(h.GetCart)).Methods(http.MethodGet)
	cart.HandleFunc("/items", h.handle(h.AddCartItem)).Methods(http.MethodPost)
	cart.HandleFunc("/items/{itemId}", h.handle(h.UpdateCartItem)).Methods(http.MethodPatch)
	cart.HandleFunc("/items/{itemId}", h.handle(h.RemoveCartItem)).Methods(http.MethodDelete)

	// Orders
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Use(h.RequireAuth)
	orders.HandleFunc("", h.handle(h.PlaceOrder)).Methods(http.MethodPost)
	orders.HandleFunc("/history", h.handle(h.GetOrderHistory)).Methods(http.MethodGet)
	orders.HandleFunc("/{id}", h.handle(h.GetOrderByID)).Methods(http.MethodGet)
	orders.HandleFunc("/{id}/status", h.handle(h.UpdateOrderStatus)).Methods(http.MethodPatch)

	// Wishlist
	wishlist := api.PathPrefix("/wishlist").Subrouter()
	wishlist.Use(h.RequireAuth)
	wishlist.HandleFunc("", h.handle(h.GetWishlist)).Methods(http.MethodGet)
	wishlist.HandleFunc("/toggle/{shoeId}", h.handle(h.ToggleWishlistShoe)).Methods(http.MethodPost)

	// Reviews
	reviews := api.PathPrefix("/reviews").Subrouter()
	reviews.HandleFunc("/shoe/{id}", h.handle(h.GetShoeReviews)).Methods(http.MethodGet)

	reviewsAuth := reviews.NewRoute().Subrouter()
	reviewsAuth.Use(h.RequireAuth)
	reviewsAuth.HandleFunc("/create/{id}", h.handle(h.CreateReview)).Methods(http.MethodPost)

	return router
}

// corsMiddleware mirrors the original deployment: one allowed origin
// with credentials.
func corsMiddleware(origin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
