package api

import (
	"log/slog"
	"net/http"

	"kickvibe/internal/domain"

	"github.com/gorilla/mux"
)

// GetWishlist handles GET /wishlist.
func (h *HTTPHandler) GetWishlist(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	wishlist, err := h.wishlists.GetByOwner(r.Context(), user.ID)
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, wishlist, "Wishlist retrieved successfully")
	return nil
}

// ToggleWishlistShoe handles POST /wishlist/toggle/{shoeId}: adds the
// shoe when absent, removes it when present.
func (h *HTTPHandler) ToggleWishlistShoe(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	shoeID := mux.Vars(r)["shoeId"]
	if _, err := h.shoes.GetByID(ctx, shoeID); err != nil {
		return err
	}

	wishlisted, err := h.wishlists.Toggle(ctx, user.ID, shoeID)
	if err != nil {
		return err
	}

	message := "Shoe removed from wishlist"
	if wishlisted {
		message = "Shoe added to wishlist"
	}
	h.logger.InfoContext(ctx, "Wishlist toggled", slog.String("userID", user.ID), slog.String("shoeID", shoeID), slog.Bool("wishlisted", wishlisted))
	h.respondJSON(w, r, http.StatusOK, domain.WishlistToggleResult{ShoeID: shoeID, Wishlisted: wishlisted}, message)
	return nil
}
