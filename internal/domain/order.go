package domain

import (
	"time"
)

// OrderStatus enumerates the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CanTransitionTo reports whether the status may move to next.
// pending may ship or cancel; shipped may deliver; delivered and
// cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// OrderItem is an immutable snapshot of a cart line at purchase time.
// Name and Price are copied so later catalog edits don't rewrite history.
type OrderItem struct {
	ID       string  `json:"id" db:"id"` // UUID
	OrderID  string  `json:"-" db:"order_id"`
	ShoeID   string  `json:"shoe_id" db:"shoe_id"`
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Quantity int     `json:"quantity" db:"quantity"`
	Size     string  `json:"size" db:"size"`
}

// Order is created once from a cart snapshot; only Status changes afterwards.
type Order struct {
	ID              string       `json:"id" db:"id"` // UUID
	OwnerID         string       `json:"owner_id" db:"owner_id"`
	Items           []*OrderItem `json:"items"`
	ShippingAddress string       `json:"shipping_address" db:"shipping_address"`
	TotalPrice      float64      `json:"total_price" db:"total_price"`
	Status          OrderStatus  `json:"order_status" db:"status"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,min=5,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
}
