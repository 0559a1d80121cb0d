package embedding

import (
	"context"
	"crypto/sha256"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
)

// DefaultHashDimensions matches the production embedding model.
const DefaultHashDimensions = 768

// HashEmbedder derives a deterministic pseudo-embedding from the SHA-256 of the text.
// Identical texts get identical vectors; it carries no semantics and is meant for
// tests and offline runs without an embedding provider.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder. dimensions <= 0 selects DefaultHashDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultHashDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Dimensions returns the vector length.
func (h *HashEmbedder) Dimensions() int { return h.dimensions }

// Embed implements domain.Embedder.
func (h *HashEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context errors pass through
	}
	return domain.EmbeddingResult{Embedding: h.vector(text)}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (h *HashEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.BatchEmbeddingResult{}, err //nolint:wrapcheck // context errors pass through
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck always succeeds.
func (h *HashEmbedder) HealthCheck(context.Context) error { return nil }

func (h *HashEmbedder) vector(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, h.dimensions)
	for i := range vec {
		vec[i] = (float32(sum[i%len(sum)]) - 128) / 128
	}
	return vec
}
