package order

import (
	"time"

	"shokolad-be/internal/product"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              string         `json:"id"`
	User            *UserRef       `json:"user,omitempty"`
	DeliveryAddress string         `json:"deliveryAddress"`
	CustomerName    string         `json:"customerName"`
	CustomerPhone   string         `json:"customerPhone"`
	Items           []Item         `json:"items"`
	Total           float64        `json:"total"`
	Status          Status         `json:"status"`
	History         []HistoryEntry `json:"history"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// UserRef is the slice of the user record an order response carries.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Item keeps the quantity next to the resolved product. Product is nil when
// the referenced product no longer exists.
type Item struct {
	ProductID string           `json:"-"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product,omitempty"`
}

// HistoryEntry is one append-only status change record.
type HistoryEntry struct {
	Status    Status    `json:"status"`
	Comment   *string   `json:"comment,omitempty"`
	UpdatedBy *string   `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ItemParams struct {
	ProductID string
	Quantity  int
}

type CreateParams struct {
	UserID          *string
	DeliveryAddress string
	CustomerName    string
	CustomerPhone   string
	Items           []ItemParams
}

type UpdateParams struct {
	DeliveryAddress *string
	CustomerName    *string
	CustomerPhone   *string
	// Items nil leaves the item list and the total untouched.
	Items []ItemParams
}

type ListFilter struct {
	Status *string
	User   *string
	Search *string
	Page   int
	Limit  int
}

// Page is the paginated list envelope.
type Page struct {
	Items       []*Order `json:"items"`
	TotalCount  int64    `json:"totalCount"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
}
