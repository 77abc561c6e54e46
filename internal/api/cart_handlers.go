package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"kickvibe/internal/domain"

	"github.com/gorilla/mux"
)

// GetCart handles GET /cart. The total is recomputed from current shoe
// prices on every read, never stored.
func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	cart, err := h.carts.GetOrCreate(r.Context(), user.ID)
	if err != nil {
		return err
	}
	cart.ComputeTotal()
	h.respondJSON(w, r, http.StatusOK, cart, "Cart retrieved successfully")
	return nil
}

// AddCartItem handles POST /cart/items. The size must be one the shoe is
// offered in; an existing line with the same shoe and size is merged.
func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.AddCartItemRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	shoe, err := h.shoes.GetByID(ctx, req.ShoeID)
	if err != nil {
		return err
	}
	if !shoe.HasSize(req.Size) {
		return NewError(http.StatusBadRequest, fmt.Sprintf("Size %q is not available for this shoe", req.Size))
	}

	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := h.carts.AddItem(ctx, cart.ID, shoe.ID, req.Size, req.Quantity); err != nil {
		return err
	}

	updated, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	updated.ComputeTotal()
	h.logger.InfoContext(ctx, "Cart item added", slog.String("userID", user.ID), slog.String("shoeID", shoe.ID), slog.String("size", req.Size))
	h.respondJSON(w, r, http.StatusOK, updated, "Item added to cart")
	return nil
}

// UpdateCartItem handles PATCH /cart/items/{itemId}. The new quantity is
// bounded by the shoe's stock at call time.
func (h *HTTPHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.UpdateCartItemRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	itemID := mux.Vars(r)["itemId"]
	var item *domain.CartItem
	for _, candidate := range cart.Items {
		if candidate.ID == itemID {
			item = candidate
			break
		}
	}
	if item == nil {
		return NewError(http.StatusNotFound, "Cart item not found")
	}
	if req.Quantity > item.ShoeStock {
		return NewError(http.StatusBadRequest,
			fmt.Sprintf("Quantity %d exceeds available stock (%d)", req.Quantity, item.ShoeStock))
	}

	if err := h.carts.UpdateItemQuantity(ctx, cart.ID, itemID, req.Quantity); err != nil {
		return err
	}

	updated, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	updated.ComputeTotal()
	h.logger.InfoContext(ctx, "Cart item updated", slog.String("userID", user.ID), slog.String("itemID", itemID), slog.Int("quantity", req.Quantity))
	h.respondJSON(w, r, http.StatusOK, updated, "Cart item updated")
	return nil
}

// RemoveCartItem handles DELETE /cart/items/{itemId}.
func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	cart, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	itemID := mux.Vars(r)["itemId"]
	if err := h.carts.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return err
	}

	updated, err := h.carts.GetOrCreate(ctx, user.ID)
	if err != nil {
		return err
	}
	updated.ComputeTotal()
	h.logger.InfoContext(ctx, "Cart item removed", slog.String("userID", user.ID), slog.String("itemID", itemID))
	h.respondJSON(w, r, http.StatusOK, updated, "Cart item removed")
	return nil
}
