package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/result"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

// fallbackQuery is searched when neither a query nor a category is given.
const fallbackQuery = "food"

// categoryKeywords maps catalog category names to search terms that recall them well.
var categoryKeywords = map[string]string{
	"Oil & Ghee":               "oil ghee",
	"Dairy and Cheese":         "milk cheese dairy",
	"Fruits and Vegetables":    "fruits vegetables",
	"Rice and Rice Products":   "rice",
	"Masala & Seasoning":       "masala spice seasoning",
	"Tea and Coffee":           "tea coffee",
	"Snacks, Dry Fruits, Nuts": "snacks nuts",
	"Bakery, Cakes & Dairy":    "bakery cake bread",
	"Atta, Flours and Sooji":   "flour atta",
	"Salt, Sugar and Jaggery":  "salt sugar jaggery",
}

// AdvancedParams are the inputs of a filtered search. Every field is optional.
type AdvancedParams struct {
	Query     string
	Category  string
	Brand     string
	PriceMin  *float64
	PriceMax  *float64
	Latitude  *float64
	Longitude *float64
	Pincode   string
	Page      int
	Limit     int
}

func (p *AdvancedParams) filters() request.Filters {
	f := request.Filters{PriceMin: p.PriceMin, PriceMax: p.PriceMax}
	if c := strings.TrimSpace(p.Category); c != "" {
		f.Categories = []string{c}
	}
	if b := strings.TrimSpace(p.Brand); b != "" {
		f.Brands = []string{b}
	}
	return f
}

// AdvancedSearch over-fetches an unfiltered first page, applies the category, brand
// and price filters to the ranked results and paginates the filtered list.
// TotalResults is the filtered count.
func (s *Service) AdvancedSearch(ctx context.Context, p AdvancedParams) (response.Response, error) {
	if p.Limit == 0 {
		p.Limit = s.cfg.AdvancedLimit
	}
	filters := p.filters()
	query := deriveQuery(p.Query, p.Category)

	// Validates page, limit and the filter values up front.
	page, err := request.New(request.Params{
		Query:   query,
		Page:    p.Page,
		Limit:   p.Limit,
		Filters: filters,
	})
	if err != nil {
		return response.Response{}, fmt.Errorf("advanced search request: %w", err)
	}

	base, err := request.New(request.Params{
		Query:     query,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Pincode:   p.Pincode,
		Page:      request.DefaultPage,
	})
	if err != nil {
		return response.Response{}, fmt.Errorf("advanced search request: %w", err)
	}
	base = base.WithLimit(page.Limit() * s.cfg.OverFetch)

	start := time.Now()
	resp := s.run(ctx, &base)
	ranked := resp.TotalResults

	filtered := make([]result.Scored, 0, len(resp.Results))
	for _, r := range resp.Results {
		it := r.Item()
		if filters.Matches(&it) {
			filtered = append(filtered, r)
		}
	}

	lo := min((page.Page()-1)*page.Limit(), len(filtered))
	hi := min(lo+page.Limit(), len(filtered))

	resp.Results = filtered[lo:hi]
	resp.TotalResults = len(filtered)
	resp.Page = page.Page()
	resp.PageSize = page.Limit()
	if msg := filtersMessage(p); msg != "" {
		resp.Message = msg
	}

	s.logger.Debug("Advanced search filtered",
		zap.String("query", query),
		zap.Int("ranked", ranked),
		zap.Int("matched", len(filtered)),
		zap.Int("page", page.Page()),
	)
	metrics.SearchDuration.WithLabelValues("advanced", resp.SearchType.String()).Observe(time.Since(start).Seconds())
	return resp, nil
}

// deriveQuery picks the search text: the caller's query, else the category's
// keywords, else the category's first word, else a generic fallback.
func deriveQuery(query, category string) string {
	if q := strings.TrimSpace(query); q != "" {
		return q
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return fallbackQuery
	}
	if kw, ok := categoryKeywords[category]; ok {
		return kw
	}
	if fields := strings.Fields(category); len(fields) > 0 {
		return strings.ToLower(fields[0])
	}
	return fallbackQuery
}

func filtersMessage(p AdvancedParams) string {
	var applied []string
	if c := strings.TrimSpace(p.Category); c != "" {
		applied = append(applied, "category: "+c)
	}
	if b := strings.TrimSpace(p.Brand); b != "" {
		applied = append(applied, "brand: "+b)
	}
	if p.PriceMin != nil || p.PriceMax != nil {
		lo, hi := "0", "∞"
		if p.PriceMin != nil {
			lo = formatPrice(*p.PriceMin)
		}
		if p.PriceMax != nil {
			hi = formatPrice(*p.PriceMax)
		}
		applied = append(applied, fmt.Sprintf("price: ₹%s-%s", lo, hi))
	}
	if len(applied) == 0 {
		return ""
	}
	return "Advanced search with " + strings.Join(applied, ", ")
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
