package search

import (
	"context"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/usecase/rerank"
)

// Catalog is the keyword search path and the category listing.
type Catalog interface {
	Search(ctx context.Context, q request.Keyword) ([]product.CatalogItem, error)
	Categories(ctx context.Context) ([]category.Category, error)
}

// VectorSearcher runs filtered KNN over the product index.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, filters request.Filters, limit int) ([]product.VectorHit, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Reranker fuses both paths into the final ranking.
type Reranker interface {
	Rerank(api, vector []product.Item, q string, threshold *float64) rerank.Outcome
}
