package api

import (
	"log/slog"
	"net/http"

	"kickvibe/internal/domain"

	"github.com/gorilla/mux"
)

// PlaceOrder handles POST /orders: converts the caller's cart into an
// immutable order. Empty carts and insufficient stock both map to 400
// through the central responder.
func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.PlaceOrderRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	order, err := h.orders.PlaceOrder(ctx, user.ID, req.ShippingAddress)
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Order placed", slog.String("orderID", order.ID), slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusCreated, order, "Order placed successfully")
	return nil
}

// GetOrderHistory handles GET /orders/history.
func (h *HTTPHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListByOwner(r.Context(), user.ID)
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, orders, "Order history retrieved successfully")
	return nil
}

// GetOrderByID handles GET /orders/{id}. Only the owner or an admin may
// read an order.
func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) error {
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}
	order, err := h.orders.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	if order.OwnerID != user.ID && user.Role != domain.RoleAdmin {
		return NewError(http.StatusForbidden, "You are not authorized to view this order")
	}
	h.respondJSON(w, r, http.StatusOK, order, "Order retrieved successfully")
	return nil
}

// UpdateOrderStatus handles PATCH /orders/{id}/status. Admins advance
// orders along pending -> shipped -> delivered; the owner may cancel a
// pending order. Everything else is rejected.
func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	var req domain.UpdateOrderStatusRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}
	next := domain.OrderStatus(req.Status)

	order, err := h.orders.GetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	isOwner := order.OwnerID == user.ID
	isAdmin := user.Role == domain.RoleAdmin
	switch {
	case isAdmin:
		// fall through to the transition check
	case isOwner && next == domain.OrderStatusCancelled:
		// owners may only cancel
	default:
		return NewError(http.StatusForbidden, "You are not authorized to change this order's status")
	}
	if !order.Status.CanTransitionTo(next) {
		return NewError(http.StatusBadRequest,
			"Order cannot move from "+string(order.Status)+" to "+string(next))
	}

	if err := h.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		return err
	}
	order.Status = next

	h.logger.InfoContext(ctx, "Order status updated", slog.String("orderID", order.ID), slog.String("status", string(next)))
	h.respondJSON(w, r, http.StatusOK, order, "Order status updated")
	return nil
}
