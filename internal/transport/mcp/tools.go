package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/transport/wire"
)

// Tool names.
const (
	toolSearchProducts   = "search_products"
	toolAdvancedSearch   = "advanced_search"
	toolBrowseCategories = "browse_categories"
)

var errBadArgument = errors.New("invalid argument")

func (s *Server) handleSearchProducts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgReader(req)
	body := wire.SearchRequest{
		Query:              a.str("query"),
		Latitude:           a.float("latitude"),
		Longitude:          a.float("longitude"),
		Pincode:            a.str("pincode"),
		Page:               a.int("page"),
		Limit:              a.int("limit"),
		RelevanceThreshold: a.float("relevance_threshold"),
	}
	filters := wire.Filters{
		PriceMin:      a.float("price_min"),
		PriceMax:      a.float("price_max"),
		Categories:    a.strs("categories"),
		Brands:        a.strs("brands"),
		ProviderIDs:   a.strs("provider_ids"),
		AvailableOnly: a.bool("available_only"),
	}
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}
	body.Filters = &filters

	resp, err := s.search.Search(ctx, body.Params())
	if err != nil {
		return s.toolError(toolSearchProducts, err), nil
	}
	return jsonResult(wire.FromResponse(&resp))
}

func (s *Server) handleAdvancedSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a := newArgReader(req)
	body := wire.AdvancedSearchRequest{
		Query:     a.str("query"),
		Category:  a.str("category"),
		Brand:     a.str("brand"),
		PriceMin:  a.float("price_min"),
		PriceMax:  a.float("price_max"),
		Latitude:  a.float("latitude"),
		Longitude: a.float("longitude"),
		Pincode:   a.str("pincode"),
		Page:      a.int("page"),
		Limit:     a.int("limit"),
	}
	if a.err != nil {
		return mcp.NewToolResultError(a.err.Error()), nil
	}

	resp, err := s.search.AdvancedSearch(ctx, body.Params())
	if err != nil {
		return s.toolError(toolAdvancedSearch, err), nil
	}
	return jsonResult(wire.FromResponse(&resp))
}

func (s *Server) handleBrowseCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listing := s.search.BrowseCategories(ctx)
	return jsonResult(wire.FromListing(&listing))
}

// toolError reports contract violations to the caller as tool errors and hides
// anything else behind a generic message.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	for _, sentinel := range []error{
		domain.ErrInvalidQuery, domain.ErrInvalidLimit, domain.ErrInvalidPage,
		domain.ErrInvalidThreshold, domain.ErrInvalidFilter,
	} {
		if errors.Is(err, sentinel) {
			return mcp.NewToolResultError(err.Error())
		}
	}
	s.logger.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError("internal error")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// argReader extracts typed tool arguments and keeps the first type error.
// JSON numbers arrive as float64.
type argReader struct {
	args map[string]interface{}
	err  error
}

func newArgReader(req mcp.CallToolRequest) *argReader {
	args, ok := req.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}
	return &argReader{args: args}
}

func (a *argReader) value(key string) (interface{}, bool) {
	if a.err != nil {
		return nil, false
	}
	v, ok := a.args[key]
	return v, ok && v != nil
}

func (a *argReader) fail(key, kind string) {
	a.err = fmt.Errorf("%w: %s must be %s", errBadArgument, key, kind)
}

func (a *argReader) str(key string) string {
	v, ok := a.value(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		a.fail(key, "a string")
	}
	return s
}

func (a *argReader) strs(key string) []string {
	v, ok := a.value(key)
	if !ok {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		a.fail(key, "a list of strings")
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			a.fail(key, "a list of strings")
			return nil
		}
		out = append(out, s)
	}
	return out
}

func (a *argReader) float(key string) *float64 {
	v, ok := a.value(key)
	if !ok {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		a.fail(key, "a number")
		return nil
	}
	return &f
}

func (a *argReader) int(key string) int {
	f := a.float(key)
	if f == nil {
		return 0
	}
	if *f != math.Trunc(*f) {
		a.fail(key, "an integer")
		return 0
	}
	return int(*f)
}

func (a *argReader) bool(key string) bool {
	v, ok := a.value(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		a.fail(key, "a boolean")
	}
	return b
}
