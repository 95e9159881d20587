package domain

import "strings"

// UnknownCategoryLabel groups transactions whose category cannot be resolved
const UnknownCategoryLabel = "Unknown category"

// Category is a user-defined label used to group transactions
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate checks the category name is present
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}
