package domain

import (
	"time"
)

// Wishlist is the per-user set of saved shoes. Shoes carries the joined
// catalog entries on read.
type Wishlist struct {
	ID        string    `json:"id" db:"id"` // UUID
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Shoes     []*Shoe   `json:"shoes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WishlistToggleResult reports the state of a shoe after a toggle call.
type WishlistToggleResult struct {
	ShoeID     string `json:"shoe_id"`
	Wishlisted bool   `json:"wishlisted"`
}
