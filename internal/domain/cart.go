package domain

import (
	"time"
)

// CartItem is one line of a cart. ShoeName, ShoePrice and ShoeStock are
// joined from the shoes table on read and are not stored on the line.
type CartItem struct {
	ID        string    `json:"id" db:"id"` // UUID
	CartID    string    `json:"-" db:"cart_id"`
	ShoeID    string    `json:"shoe_id" db:"shoe_id"`
	Size      string    `json:"size" db:"size"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	ShoeName  string  `json:"shoe_name,omitempty" db:"shoe_name"`
	ShoePrice float64 `json:"shoe_price,omitempty" db:"shoe_price"`
	ShoeStock int     `json:"shoe_stock,omitempty" db:"shoe_stock"`
}

// LineTotal is price times quantity for this line.
func (i *CartItem) LineTotal() float64 {
	return i.ShoePrice * float64(i.Quantity)
}

// Cart is the single pre-purchase collection of a user. TotalPrice is
// recomputed from the items on every read, never stored.
type Cart struct {
	ID         string      `json:"id" db:"id"` // UUID
	OwnerID    string      `json:"owner_id" db:"owner_id"`
	Items      []*CartItem `json:"items"`
	TotalPrice float64     `json:"cart_total_price"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// ComputeTotal sets TotalPrice to the sum of the line totals.
func (c *Cart) ComputeTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	c.TotalPrice = total
}

type AddCartItemRequest struct {
	ShoeID   string `json:"shoe_id" validate:"required,uuid"`
	Size     string `json:"size" validate:"required,min=1,max=10"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}
