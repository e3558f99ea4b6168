package category

import "errors"

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrInvalidCategoryID = errors.New("invalid category id")
	ErrParentCycle       = errors.New("category parent cycle detected")
	ErrEmptyName         = errors.New("category name cannot be empty")
)
