package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

// BrowseCategories lists the catalog categories. A failing catalog yields a
// successful empty listing.
func (s *Service) BrowseCategories(ctx context.Context) category.Listing {
	cats, err := s.catalog.Categories(ctx)
	if err != nil {
		s.logger.Warn("Categories fetch failed", zap.Error(err))
		metrics.SearchPathFailures.WithLabelValues("categories", failureReason(err)).Inc()
	}
	if len(cats) == 0 {
		return category.Listing{
			Success:    true,
			Message:    "No categories available right now",
			Categories: []category.Category{},
		}
	}
	return category.Listing{
		Success:    true,
		Message:    fmt.Sprintf("Found %d categories", len(cats)),
		Categories: cats,
	}
}
