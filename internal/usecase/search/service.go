// Package search orchestrates the hybrid keyword + vector product search.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/location"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/response"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

const (
	pathAPI    = "api"
	pathVector = "vector"
)

// Config tunes the orchestrator.
type Config struct {
	// PathTimeout bounds each search path independently; 0 means no extra bound.
	PathTimeout time.Duration
	// OverFetch multiplies the limit of the base search behind AdvancedSearch.
	OverFetch int
	// AdvancedLimit is the page size of AdvancedSearch when the caller gives none.
	AdvancedLimit int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		PathTimeout:   10 * time.Second,
		OverFetch:     3,
		AdvancedLimit: 20,
	}
}

// Service runs the keyword and vector paths concurrently and reranks the union.
// vector and embed may be nil, in which case the vector path is absent.
type Service struct {
	catalog  Catalog
	vector   VectorSearcher
	embed    Embedder
	reranker Reranker
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service.
func New(
	catalog Catalog, vector VectorSearcher, embed Embedder, reranker Reranker,
	cfg Config, logger *zap.Logger,
) *Service {
	if cfg.OverFetch <= 0 {
		cfg.OverFetch = DefaultConfig().OverFetch
	}
	if cfg.AdvancedLimit <= 0 {
		cfg.AdvancedLimit = DefaultConfig().AdvancedLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:  catalog,
		vector:   vector,
		embed:    embed,
		reranker: reranker,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search validates the parameters and runs one hybrid search. The only errors are
// contract violations, returned before any upstream call; path failures degrade
// into an empty path instead.
func (s *Service) Search(ctx context.Context, p request.Params) (response.Response, error) {
	req, err := request.New(p)
	if err != nil {
		return response.Response{}, fmt.Errorf("search request: %w", err)
	}

	start := time.Now()
	resp := s.run(ctx, &req)
	metrics.SearchDuration.WithLabelValues("search", resp.SearchType.String()).Observe(time.Since(start).Seconds())
	return resp, nil
}

// paths carries the normalized hits of both search paths.
type paths struct {
	api    []product.Item
	vector []product.Item
}

func (s *Service) run(ctx context.Context, req *request.Request) response.Response {
	got := s.fetch(ctx, req)

	searchType := mode.FromPaths(len(got.api) > 0, len(got.vector) > 0)
	if searchType == mode.None {
		s.logger.Info("No products found", zap.String("query", req.Query()))
		return response.Empty(req.Query(), req.Page(), req.Limit(), req.Threshold())
	}

	outcome := s.reranker.Rerank(got.api, got.vector, req.Query(), req.Threshold())
	metrics.RerankDropped.Add(float64(outcome.Dropped))
	if outcome.Fallback != "" {
		metrics.RerankFallbacks.WithLabelValues(string(outcome.Fallback)).Inc()
	}

	results := outcome.Results
	total := len(results)
	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	msg := response.NoResultsMessage(req.Query())
	if total > 0 {
		msg = response.FoundMessage(total, searchType, req.Threshold())
	}

	s.logger.Info("Search completed",
		zap.String("query", req.Query()),
		zap.String("search_type", searchType.String()),
		zap.Int("api_hits", len(got.api)),
		zap.Int("vector_hits", len(got.vector)),
		zap.Int("merged", outcome.Merged),
		zap.Int("dropped", outcome.Dropped),
		zap.Int("total", total),
		zap.String("fallback", string(outcome.Fallback)),
	)

	return response.Response{
		Success:             true,
		Message:             msg,
		Results:             results,
		TotalResults:        total,
		Page:                req.Page(),
		PageSize:            req.Limit(),
		SearchType:          searchType,
		RelevanceThreshold:  req.Threshold(),
		FilteredByRelevance: req.Threshold() != nil,
		Fallback:            outcome.Fallback,
	}
}

// fetch runs both paths concurrently. Each path swallows its own failure so that one
// path failing never cancels or blocks the other.
func (s *Service) fetch(ctx context.Context, req *request.Request) paths {
	var out paths
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out.api = s.keywordPath(gctx, req)
		return nil
	})
	g.Go(func() error {
		out.vector = s.vectorPath(gctx, req)
		return nil
	})
	_ = g.Wait()

	metrics.SearchPathResults.WithLabelValues(pathAPI).Observe(float64(len(out.api)))
	metrics.SearchPathResults.WithLabelValues(pathVector).Observe(float64(len(out.vector)))
	return out
}

func (s *Service) keywordPath(ctx context.Context, req *request.Request) []product.Item {
	ctx, cancel := s.pathContext(ctx)
	defer cancel()

	var lat, lon *float64
	if c := req.Coordinates(); c != nil {
		lat, lon = &c.Latitude, &c.Longitude
	}

	raw, err := s.catalog.Search(ctx, request.Keyword{
		Text:     req.Query(),
		Location: location.Resolve(lat, lon, req.Pincode()),
		Page:     req.Page(),
		Limit:    req.Limit(),
	})
	if err != nil {
		s.pathFailed(pathAPI, err)
		return nil
	}

	filters := req.Filters()
	items := make([]product.Item, 0, len(raw))
	for i := range raw {
		it, bad, err := product.FromCatalog(&raw[i])
		if err != nil {
			s.logger.Warn("Dropped catalog item", zap.Int("position", i), zap.Error(err))
			continue
		}
		if len(bad) > 0 {
			s.logger.Warn("Malformed catalog fields defaulted",
				zap.String("id", it.ID),
				zap.Strings("fields", bad),
			)
		}
		if !filters.Matches(&it) {
			continue
		}
		items = append(items, it)
	}
	return items
}

func (s *Service) vectorPath(ctx context.Context, req *request.Request) []product.Item {
	if s.vector == nil || s.embed == nil {
		return nil
	}
	ctx, cancel := s.pathContext(ctx)
	defer cancel()

	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil || len(emb.Embedding) == 0 {
		if err == nil {
			err = domain.ErrEmbeddingProviderError
		}
		s.pathFailed(pathVector, err)
		return nil
	}

	hits, err := s.vector.Search(ctx, emb.Embedding, req.Filters(), req.Limit())
	if err != nil {
		s.pathFailed(pathVector, err)
		return nil
	}

	filters := req.Filters()
	items := make([]product.Item, 0, len(hits))
	for _, h := range hits {
		it, bad, err := product.FromVectorHit(h)
		if err != nil {
			s.logger.Warn("Dropped vector hit", zap.String("key", h.Key), zap.Error(err))
			continue
		}
		if len(bad) > 0 {
			s.logger.Warn("Malformed vector payload fields defaulted",
				zap.String("id", it.ID),
				zap.Strings("fields", bad),
			)
		}
		if !filters.Matches(&it) {
			continue
		}
		items = append(items, it)
	}
	return items
}

func (s *Service) pathContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.PathTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.PathTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Service) pathFailed(path string, err error) {
	reason := failureReason(err)
	metrics.SearchPathFailures.WithLabelValues(path, reason).Inc()
	s.logger.Warn("Search path failed, continuing without it",
		zap.String("path", path),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		return "embedding"
	case errors.Is(err, domain.ErrVectorUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return "upstream"
	default:
		return "error"
	}
}
