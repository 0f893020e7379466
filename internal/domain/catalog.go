package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product represents a product in the catalog. CategoryID references a
// category by id; CategoryName carries the denormalized category name on
// the read path and is never persisted.
type Product struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Description  string      `json:"description" db:"description"`
	Price        float64     `json:"price" db:"price"`
	CategoryID   uuid.UUID   `json:"-" db:"category_id"`
	CategoryName string      `json:"category" db:"-"`
	FavouritedBy []uuid.UUID `json:"favourited_by,omitempty" db:"favourited_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// SortDirection is the direction of a sort entry
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortEntry is a single field/direction pair of a catalog query's sort spec
type SortEntry struct {
	Field     string        `json:"orderBy"`
	Direction SortDirection `json:"order"`
}

// PriceRange filters products by price; either bound may be omitted
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// QueryFilters holds the optional filter clauses of a catalog query
type QueryFilters struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       *PriceRange `json:"price,omitempty"`
	Category    string      `json:"category,omitempty"`
}

// CatalogQuery is a request-scoped filter/sort/pagination value. Inclusive
// switches the combination of the name and price clauses from AND to OR.
type CatalogQuery struct {
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
	Filters   *QueryFilters `json:"filters,omitempty"`
	Sort      []SortEntry   `json:"sort,omitempty"`
	Inclusive bool          `json:"inclusive"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Normalize applies the default page and limit to out-of-range values
func (q *CatalogQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
}

// ProductPage is one page of catalog results together with the total number
// of products matching the query's filters
type ProductPage struct {
	Data  []*Product `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}
