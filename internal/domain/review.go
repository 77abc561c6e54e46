package domain

import (
	"time"
)

// Review is a user's rating of a shoe. At most one review exists per
// (user, shoe) pair; the store enforces this. Username is joined from
// the users table on read.
type Review struct {
	ID        string    `json:"id" db:"id"` // UUID
	ShoeID    string    `json:"shoe_id" db:"shoe_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Username string `json:"username,omitempty" db:"username"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

// ReviewListPage is the paginated review listing payload for a shoe.
type ReviewListPage struct {
	Reviews     []*Review `json:"reviews"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
}
