package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidLimit signals a non-positive or oversized result limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidPage signals a page number below 1.
	ErrInvalidPage = errors.New("invalid page")
	// ErrInvalidThreshold signals a relevance threshold outside [0, 1].
	ErrInvalidThreshold = errors.New("invalid relevance threshold")
	// ErrInvalidFilter signals a malformed product filter.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorUnavailable signals that the vector index is not provisioned or unreachable.
	ErrVectorUnavailable = errors.New("vector search unavailable")
	// ErrCatalogUnavailable signals that the upstream catalog API failed.
	ErrCatalogUnavailable = errors.New("catalog api unavailable")
	// ErrMalformedPayload signals an upstream payload that matched no known shape.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrUnauthorized signals a missing or unknown API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)

// UpstreamStatusError reports a non-200 response from the catalog API.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrCatalogUnavailable.Error(), e.StatusCode)
}

func (e *UpstreamStatusError) Unwrap() error { return ErrCatalogUnavailable }

// NewUpstreamStatus creates an upstream status error.
func NewUpstreamStatus(code int) error {
	return &UpstreamStatusError{StatusCode: code}
}
