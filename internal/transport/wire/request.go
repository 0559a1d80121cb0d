// Package wire defines the JSON shapes shared by the HTTP and MCP transports.
package wire

import (
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/ondcsearch/internal/usecase/search"
)

// SearchRequest is the body of a hybrid search.
type SearchRequest struct {
	Query              string   `json:"query"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	Pincode            string   `json:"pincode,omitempty"`
	Page               int      `json:"page,omitempty"`
	Limit              int      `json:"limit,omitempty"`
	RelevanceThreshold *float64 `json:"relevance_threshold,omitempty"`
	Filters            *Filters `json:"filters,omitempty"`
}

// Filters restrict results. Set-valued fields match any of their values.
type Filters struct {
	PriceMin      *float64 `json:"price_min,omitempty"`
	PriceMax      *float64 `json:"price_max,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Brands        []string `json:"brands,omitempty"`
	ProviderIDs   []string `json:"provider_ids,omitempty"`
	AvailableOnly bool     `json:"available_only,omitempty"`
}

// Params converts the body into unvalidated search parameters.
func (r *SearchRequest) Params() request.Params {
	p := request.Params{
		Query:     r.Query,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Pincode:   r.Pincode,
		Page:      r.Page,
		Limit:     r.Limit,
		Threshold: r.RelevanceThreshold,
	}
	if f := r.Filters; f != nil {
		p.Filters = request.Filters{
			PriceMin:      f.PriceMin,
			PriceMax:      f.PriceMax,
			Categories:    f.Categories,
			Brands:        f.Brands,
			ProviderIDs:   f.ProviderIDs,
			AvailableOnly: f.AvailableOnly,
		}
	}
	return p
}

// AdvancedSearchRequest is the body of a filtered search. Every field is optional.
type AdvancedSearchRequest struct {
	Query     string   `json:"query,omitempty"`
	Category  string   `json:"category,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	PriceMin  *float64 `json:"price_min,omitempty"`
	PriceMax  *float64 `json:"price_max,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Pincode   string   `json:"pincode,omitempty"`
	Page      int      `json:"page,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// Params converts the body into advanced search parameters.
func (r *AdvancedSearchRequest) Params() searchuc.AdvancedParams {
	return searchuc.AdvancedParams{
		Query:     r.Query,
		Category:  r.Category,
		Brand:     r.Brand,
		PriceMin:  r.PriceMin,
		PriceMax:  r.PriceMax,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Pincode:   r.Pincode,
		Page:      r.Page,
		Limit:     r.Limit,
	}
}
