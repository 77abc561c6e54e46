package domain

import (
	"time"

	"github.com/lib/pq"
)

// Shoe is the catalog product model. Sizes and Images map to TEXT[]
// columns, hence pq.StringArray.
type Shoe struct {
	ID          string         `json:"id" db:"id"` // UUID
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Price       float64        `json:"price" db:"price"`
	Brand       string         `json:"brand" db:"brand"`
	Category    string         `json:"category" db:"category"`
	Sizes       pq.StringArray `json:"sizes" db:"sizes"`
	Images      pq.StringArray `json:"images" db:"images"`
	Stock       int            `json:"stock" db:"stock"`
	OwnerID     string         `json:"owner_id" db:"owner_id"`
	IsFeatured  bool           `json:"is_featured" db:"is_featured"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// HasSize reports whether s is offered in the given size.
func (s *Shoe) HasSize(size string) bool {
	for _, v := range s.Sizes {
		if v == size {
			return true
		}
	}
	return false
}

// CreateShoeRequest carries the non-file fields of the multipart
// POST /shoes/add form. Sizes arrive comma-separated, split by the handler.
type CreateShoeRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"required,min=1"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Brand       string   `json:"brand" validate:"required,min=1,max=100"`
	Category    string   `json:"category" validate:"required,min=1,max=100"`
	Sizes       []string `json:"sizes" validate:"required,min=1,dive,min=1,max=10"`
	Stock       int      `json:"stock" validate:"gte=0"`
}

type UpdateShoeRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	Brand       *string  `json:"brand,omitempty" validate:"omitempty,min=1,max=100"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Sizes       []string `json:"sizes,omitempty" validate:"omitempty,min=1,dive,min=1,max=10"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsFeatured  *bool    `json:"is_featured,omitempty"`
}

// ShoeListPage is the paginated catalog listing payload.
type ShoeListPage struct {
	Shoes       []*Shoe `json:"shoes"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
}
