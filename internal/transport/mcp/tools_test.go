package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/result"
	"github.com/kailas-cloud/ondcsearch/internal/transport/wire"
	searchuc "github.com/kailas-cloud/ondcsearch/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	searchFn     func(ctx context.Context, p request.Params) (response.Response, error)
	advancedFn   func(ctx context.Context, p searchuc.AdvancedParams) (response.Response, error)
	categoriesFn func(ctx context.Context) category.Listing
}

func (m *mockSearcher) Search(ctx context.Context, p request.Params) (response.Response, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, p)
	}
	return response.Empty(p.Query, 1, 10, nil), nil
}

func (m *mockSearcher) AdvancedSearch(ctx context.Context, p searchuc.AdvancedParams) (response.Response, error) {
	if m.advancedFn != nil {
		return m.advancedFn(ctx, p)
	}
	return response.Empty(p.Query, 1, 20, nil), nil
}

func (m *mockSearcher) BrowseCategories(ctx context.Context) category.Listing {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return category.Listing{Success: true, Categories: []category.Category{}}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", c)
		return ""
	}
}

// --- Tests ---

func TestSearchProducts_OK(t *testing.T) {
	var got request.Params
	s := NewServer(&mockSearcher{searchFn: func(_ context.Context, p request.Params) (response.Response, error) {
		got = p
		item := product.Item{ID: "A", Name: "Organic Rice 1kg", Price: 120, Sources: product.Sources(product.SourceAPI)}
		return response.Response{
			Success:      true,
			Message:      "Found 1 products",
			Results:      []result.Scored{result.New(item, 0.9, result.Components{Relevance: 0.8}, result.FallbackNone)},
			TotalResults: 1,
			Page:         1,
			PageSize:     5,
			SearchType:   mode.Keyword,
		}, nil
	}}, "ondc-search", "test", nil)

	res, err := s.handleSearchProducts(context.Background(), callTool(toolSearchProducts, map[string]interface{}{
		"query":          "organic rice",
		"latitude":       12.97,
		"longitude":      77.59,
		"limit":          float64(5),
		"brands":         []interface{}{"Farm"},
		"available_only": true,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if got.Query != "organic rice" || got.Limit != 5 || *got.Latitude != 12.97 {
		t.Errorf("params = %+v", got)
	}
	if len(got.Filters.Brands) != 1 || !got.Filters.AvailableOnly {
		t.Errorf("filters = %+v", got.Filters)
	}

	var body wire.SearchResponse
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.SearchResults) != 1 || body.SearchResults[0].ID != "A" {
		t.Errorf("body = %+v", body)
	}
}

func TestSearchProducts_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"query not string", map[string]interface{}{"query": 42.0}, "query must be a string"},
		{"fractional limit", map[string]interface{}{"query": "rice", "limit": 2.5}, "limit must be an integer"},
		{"brands not list", map[string]interface{}{"query": "rice", "brands": "Farm"}, "brands must be a list of strings"},
		{"mixed list", map[string]interface{}{"query": "rice", "categories": []interface{}{"Tea", 1.0}}, "categories must be a list of strings"},
		{"available flag", map[string]interface{}{"query": "rice", "available_only": "yes"}, "available_only must be a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			s := NewServer(&mockSearcher{searchFn: func(context.Context, request.Params) (response.Response, error) {
				called = true
				return response.Response{}, nil
			}}, "ondc-search", "test", nil)

			res, err := s.handleSearchProducts(context.Background(), callTool(toolSearchProducts, tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.IsError || !strings.Contains(resultText(t, res), tt.want) {
				t.Errorf("result = %+v", res)
			}
			if called {
				t.Error("searcher must not be called with bad arguments")
			}
		})
	}
}

func TestSearchProducts_ValidationError(t *testing.T) {
	s := NewServer(&mockSearcher{searchFn: func(context.Context, request.Params) (response.Response, error) {
		return response.Response{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}}, "ondc-search", "test", nil)

	res, err := s.handleSearchProducts(context.Background(), callTool(toolSearchProducts, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "query must not be empty") {
		t.Errorf("result = %+v", res)
	}
}

func TestSearchProducts_InternalErrorHidden(t *testing.T) {
	s := NewServer(&mockSearcher{searchFn: func(context.Context, request.Params) (response.Response, error) {
		return response.Response{}, errors.New("redis: connection refused")
	}}, "ondc-search", "test", nil)

	res, err := s.handleSearchProducts(context.Background(), callTool(toolSearchProducts, map[string]interface{}{"query": "rice"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || resultText(t, res) != "internal error" {
		t.Errorf("result = %q", resultText(t, res))
	}
}

func TestAdvancedSearch_PassesFilters(t *testing.T) {
	var got searchuc.AdvancedParams
	s := NewServer(&mockSearcher{advancedFn: func(_ context.Context, p searchuc.AdvancedParams) (response.Response, error) {
		got = p
		return response.Empty("oil ghee", 2, 20, nil), nil
	}}, "ondc-search", "test", nil)

	res, err := s.handleAdvancedSearch(context.Background(), callTool(toolAdvancedSearch, map[string]interface{}{
		"category":  "Oil & Ghee",
		"price_max": 500.0,
		"page":      2.0,
		"pincode":   "560001",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if got.Category != "Oil & Ghee" || got.PriceMax == nil || *got.PriceMax != 500 || got.Page != 2 || got.Pincode != "560001" {
		t.Errorf("params = %+v", got)
	}
	if got.PriceMin != nil {
		t.Errorf("PriceMin = %v, want nil", *got.PriceMin)
	}
}

func TestAdvancedSearch_InvalidFilter(t *testing.T) {
	s := NewServer(&mockSearcher{advancedFn: func(context.Context, searchuc.AdvancedParams) (response.Response, error) {
		return response.Response{}, fmt.Errorf("%w: price_min exceeds price_max", domain.ErrInvalidFilter)
	}}, "ondc-search", "test", nil)

	res, err := s.handleAdvancedSearch(context.Background(), callTool(toolAdvancedSearch, map[string]interface{}{
		"price_min": 500.0, "price_max": 100.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "price_min exceeds price_max") {
		t.Errorf("result = %q", resultText(t, res))
	}
}

func TestBrowseCategories(t *testing.T) {
	s := NewServer(&mockSearcher{categoriesFn: func(context.Context) category.Listing {
		return category.Listing{
			Success:    true,
			Message:    "Found 1 categories",
			Categories: []category.Category{{ID: "c1", Name: "Tea and Coffee", ItemCount: 4}},
		}
	}}, "ondc-search", "test", nil)

	res, err := s.handleBrowseCategories(context.Background(), callTool(toolBrowseCategories, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body wire.CategoryListing
	if err := json.Unmarshal([]byte(resultText(t, res)), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Categories) != 1 || body.Categories[0].ItemCount != 4 {
		t.Errorf("body = %+v", body)
	}
}

func TestToolSchemas(t *testing.T) {
	tools := []mcp.Tool{searchProductsTool(), advancedSearchTool(), browseCategoriesTool()}
	for _, tool := range tools {
		if tool.InputSchema.Type != "object" {
			t.Errorf("%s: schema type = %q", tool.Name, tool.InputSchema.Type)
		}
	}
	if got := searchProductsTool().InputSchema.Required; len(got) != 1 || got[0] != "query" {
		t.Errorf("search_products required = %v", got)
	}
	if _, ok := advancedSearchTool().InputSchema.Properties["price_min"]; !ok {
		t.Error("advanced_search is missing price_min")
	}
}
