// Package category holds the catalog category listing returned by browse.
package category

import "fmt"

// Category is one browsable catalog category.
type Category struct {
	ID          string
	Name        string
	Description string
	Image       string
	ItemCount   int
}

// DefaultDescription is used when the catalog gives none.
func DefaultDescription(name string) string {
	if name == "" {
		name = "items"
	}
	return fmt.Sprintf("Browse %s products", name)
}

// Listing is the browse response. An unreachable catalog yields a successful empty listing.
type Listing struct {
	Success    bool
	Message    string
	Categories []Category
}
