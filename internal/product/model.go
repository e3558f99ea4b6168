package product

import "time"

type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Price       float64      `json:"price"`
	Image       *string      `json:"image,omitempty"`
	Category    *CategoryRef `json:"category,omitempty"`
	IsActive    bool         `json:"isActive"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CategoryRef is the slice of the category record a product response carries.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateParams struct {
	Name        string
	Description *string
	Price       float64
	Image       *string
	CategoryID  *string
	IsActive    *bool
}

type UpdateParams struct {
	Name        *string
	Description *string
	Price       *float64
	Image       *string
	CategoryID  *string
	IsActive    *bool
}

type ListFilter struct {
	Category *string
	IsActive *bool
	Search   *string
	Page     int
	Limit    int
}

// Page is the paginated list envelope.
type Page struct {
	Items       []*Product `json:"items"`
	TotalCount  int64      `json:"totalCount"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
}

// ImportResult summarises a spreadsheet import run.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
