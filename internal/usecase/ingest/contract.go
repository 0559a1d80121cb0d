package ingest

import (
	"context"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

// Index is the writable side of the product vector index.
type Index interface {
	EnsureIndex(ctx context.Context, recreate bool) (bool, error)
	Upsert(ctx context.Context, points []product.Embedded) (int, error)
}

// Embedder vectorizes document texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
