package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

// Filters restrict results by price, category, brand, provider and availability.
// Set-valued fields use match-any semantics; the price range is inclusive.
type Filters struct {
	PriceMin      *float64
	PriceMax      *float64
	Categories    []string
	Brands        []string
	ProviderIDs   []string
	AvailableOnly bool
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.PriceMin == nil && f.PriceMax == nil &&
		len(f.Categories) == 0 && len(f.Brands) == 0 && len(f.ProviderIDs) == 0 &&
		!f.AvailableOnly
}

// Validate checks the price range.
func (f Filters) Validate() error {
	if f.PriceMin != nil && *f.PriceMin < 0 {
		return fmt.Errorf("%w: price_min must be >= 0", domain.ErrInvalidFilter)
	}
	if f.PriceMax != nil && *f.PriceMax < 0 {
		return fmt.Errorf("%w: price_max must be >= 0", domain.ErrInvalidFilter)
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return fmt.Errorf("%w: price_min %g exceeds price_max %g", domain.ErrInvalidFilter, *f.PriceMin, *f.PriceMax)
	}
	return nil
}

// Matches applies the filters to a normalized item. Category and brand compare
// case-insensitively by substring, since the catalog API reports free-form names.
func (f Filters) Matches(it *product.Item) bool {
	if f.AvailableOnly && !it.Available {
		return false
	}
	if f.PriceMin != nil && it.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && it.Price > *f.PriceMax {
		return false
	}
	if len(f.Categories) > 0 && !containsAny(it.Category, f.Categories) {
		return false
	}
	if len(f.Brands) > 0 && !containsAny(it.Brand, f.Brands) && !containsAny(it.ProviderName, f.Brands) {
		return false
	}
	if len(f.ProviderIDs) > 0 && !equalsAny(it.ProviderID, f.ProviderIDs) {
		return false
	}
	return true
}

func containsAny(field string, wanted []string) bool {
	if field == "" {
		return false
	}
	lf := strings.ToLower(field)
	for _, w := range wanted {
		if w = strings.TrimSpace(w); w != "" && strings.Contains(lf, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func equalsAny(field string, wanted []string) bool {
	for _, w := range wanted {
		if field == w {
			return true
		}
	}
	return false
}
