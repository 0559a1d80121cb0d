// Package mcp exposes product search as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	searchuc "github.com/kailas-cloud/ondcsearch/internal/usecase/search"
)

// Searcher runs product searches.
type Searcher interface {
	Search(ctx context.Context, p request.Params) (response.Response, error)
	AdvancedSearch(ctx context.Context, p searchuc.AdvancedParams) (response.Response, error)
	BrowseCategories(ctx context.Context) category.Listing
}

// Server wraps the MCP server with the search service.
type Server struct {
	mcp    *server.MCPServer
	search Searcher
	logger *zap.Logger
}

// NewServer creates an MCP server with the search tools registered.
func NewServer(search Searcher, name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(name, version),
		search: search,
		logger: logger,
	}
	s.mcp.AddTool(searchProductsTool(), s.handleSearchProducts)
	s.mcp.AddTool(advancedSearchTool(), s.handleAdvancedSearch)
	s.mcp.AddTool(browseCategoriesTool(), s.handleBrowseCategories)
	return s
}

// Serve runs the server on stdin/stdout and blocks until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp) //nolint:wrapcheck // transport error returned to the CLI as-is
}
