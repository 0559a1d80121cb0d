package health

import "context"

// StorePinger checks the vector store connection.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// IndexChecker reports whether the product vector index exists.
type IndexChecker interface {
	Available(ctx context.Context) (bool, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
