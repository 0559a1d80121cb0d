package wire

import (
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/result"
)

// SearchResponse is the serialized search outcome.
type SearchResponse struct {
	Success             bool      `json:"success"`
	Message             string    `json:"message"`
	SearchResults       []Product `json:"search_results"`
	TotalResults        int       `json:"total_results"`
	Page                int       `json:"page"`
	PageSize            int       `json:"page_size"`
	SearchType          string    `json:"search_type"`
	RelevanceThreshold  *float64  `json:"relevance_threshold"`
	FilteredByRelevance bool      `json:"filtered_by_relevance"`
	Fallback            string    `json:"fallback,omitempty"`
}

// Product is one ranked product.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	LongDescription string          `json:"long_description,omitempty"`
	Category        string          `json:"category,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	ProviderID      string          `json:"provider_id,omitempty"`
	ProviderName    string          `json:"provider_name,omitempty"`
	LocationID      string          `json:"location_id,omitempty"`
	Price           float64         `json:"price"`
	Currency        string          `json:"currency"`
	Images          []string        `json:"images,omitempty"`
	Available       bool            `json:"available"`
	StockCount      int             `json:"stock_count,omitempty"`
	Returnable      bool            `json:"returnable"`
	CODAvailable    bool            `json:"cod_available"`
	Sources         []string        `json:"sources"`
	APIRank         *int            `json:"api_rank,omitempty"`
	VectorRank      *int            `json:"vector_rank,omitempty"`
	VectorScore     float64         `json:"vector_score"`
	RerankScore     float64         `json:"rerank_score"`
	ScoreComponents ScoreComponents `json:"score_components"`
	Fallback        string          `json:"fallback,omitempty"`
}

// ScoreComponents is the per-signal breakdown of a rerank score.
type ScoreComponents struct {
	Relevance    float64 `json:"relevance"`
	VectorScore  float64 `json:"vector_score"`
	ExactMatch   float64 `json:"exact_match"`
	Availability float64 `json:"availability"`
	PriceScore   float64 `json:"price_score"`
	Popularity   float64 `json:"popularity"`
}

// FromResponse serializes a search response.
func FromResponse(resp *response.Response) SearchResponse {
	out := SearchResponse{
		Success:             resp.Success,
		Message:             resp.Message,
		SearchResults:       make([]Product, len(resp.Results)),
		TotalResults:        resp.TotalResults,
		Page:                resp.Page,
		PageSize:            resp.PageSize,
		SearchType:          resp.SearchType.String(),
		RelevanceThreshold:  resp.RelevanceThreshold,
		FilteredByRelevance: resp.FilteredByRelevance,
		Fallback:            string(resp.Fallback),
	}
	for i := range resp.Results {
		out.SearchResults[i] = fromScored(&resp.Results[i])
	}
	return out
}

func fromScored(r *result.Scored) Product {
	it := r.Item()
	c := r.Components()
	return Product{
		ID:              it.ID,
		Name:            it.Name,
		Description:     it.Description,
		LongDescription: it.LongDescription,
		Category:        it.Category,
		Brand:           it.Brand,
		ProviderID:      it.ProviderID,
		ProviderName:    it.ProviderName,
		LocationID:      it.LocationID,
		Price:           it.Price,
		Currency:        it.Currency,
		Images:          it.Images,
		Available:       it.Available,
		StockCount:      it.StockCount,
		Returnable:      it.Returnable,
		CODAvailable:    it.CODAvailable,
		Sources:         it.Sources.Labels(),
		APIRank:         rank(it.APIRank),
		VectorRank:      rank(it.VectorRank),
		VectorScore:     it.VectorScore,
		RerankScore:     r.Score(),
		ScoreComponents: ScoreComponents{
			Relevance:    c.Relevance,
			VectorScore:  c.VectorScore,
			ExactMatch:   c.ExactMatch,
			Availability: c.Availability,
			PriceScore:   c.PriceScore,
			Popularity:   c.Popularity,
		},
		Fallback: string(r.Fallback()),
	}
}

func rank(r int) *int {
	if r == product.RankAbsent {
		return nil
	}
	return &r
}

// CategoryListing is the serialized browse response.
type CategoryListing struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Categories []Category `json:"categories"`
}

// Category is one catalog category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	ItemCount   int    `json:"item_count"`
}

// FromListing serializes a category listing.
func FromListing(l *category.Listing) CategoryListing {
	out := CategoryListing{
		Success:    l.Success,
		Message:    l.Message,
		Categories: make([]Category, len(l.Categories)),
	}
	for i, c := range l.Categories {
		out.Categories[i] = Category{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
			ItemCount:   c.ItemCount,
		}
	}
	return out
}

// ErrorResponseCode classifies an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
