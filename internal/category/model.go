package category

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Parent      *string   `json:"parent,omitempty"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TreeNode is a category with its subcategories nested, assembled at read
// time from the flat parent references.
type TreeNode struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Parent      *string     `json:"parent,omitempty"`
	Children    []*TreeNode `json:"children"`
}

type Stats struct {
	Total      int `json:"total"`
	Roots      int `json:"roots"`
	WithParent int `json:"withParent"`
	MaxDepth   int `json:"maxDepth"`
}

type UpdateParams struct {
	Name        *string
	Description *string
	Parent      *string
}
