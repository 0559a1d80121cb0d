package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/config"
	"github.com/kailas-cloud/ondcsearch/internal/db"
	dbValkey "github.com/kailas-cloud/ondcsearch/internal/db/valkey"
	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
	"github.com/kailas-cloud/ondcsearch/internal/repository/embcache"
	vectorrepo "github.com/kailas-cloud/ondcsearch/internal/repository/vector"
	"github.com/kailas-cloud/ondcsearch/internal/transport/catalog"
	openaiEmb "github.com/kailas-cloud/ondcsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/ondcsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ondcsearch/internal/usecase/health"
	"github.com/kailas-cloud/ondcsearch/internal/usecase/rerank"
	searchuc "github.com/kailas-cloud/ondcsearch/internal/usecase/search"
)

// deps is the composition root shared by serve and mcp.
type deps struct {
	store    db.Store // nil when the vector path is disabled or unreachable
	storeErr error    // why an enabled store could not be connected
	vector   *vectorrepo.Repo
	embed    *embeddinguc.InstrumentedEmbedder
	search   *searchuc.Service
	health   *healthuc.Service
}

// unreachableStore stands in for a vector store that failed to connect at
// startup so health reports it instead of omitting it.
type unreachableStore struct{ err error }

func (s unreachableStore) Ping(context.Context) error { return s.err }

func (s unreachableStore) Available(context.Context) (bool, error) { return false, s.err }

func (d *deps) Close() {
	if d.store != nil {
		d.store.Close()
	}
}

func (a *app) buildDeps(ctx context.Context) (*deps, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	cfg := a.cfg
	d := &deps{}

	if cfg.Vector.IsEnabled() {
		store, err := a.connectStore(ctx)
		if err != nil {
			a.logger.Warn("Vector store unreachable, serving keyword results only",
				zap.Strings("addrs", cfg.Database.Addrs),
				zap.Error(err),
			)
			d.storeErr = err
		} else {
			d.store = store
			d.vector = newVectorRepo(store, cfg)
		}
	}

	d.embed = buildEmbedder(cfg.Embedding, d.store, a.logger)
	queryEmbedder := withInstruction(d.embed, cfg.Embedding.QueryInstruction)

	cat, err := catalog.New(catalog.Config{
		BaseURL:   cfg.Catalog.BaseURL,
		APIKey:    cfg.Catalog.APIKey,
		UserID:    cfg.Catalog.UserID,
		Timeout:   cfg.Catalog.Timeout(),
		RateLimit: cfg.Catalog.RateLimit,
		Burst:     cfg.Catalog.Burst,
		Logger:    a.logger,
	})
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create catalog client: %w", err)
	}

	reranker, err := rerank.New(rerankConfig(cfg.Rerank), a.logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("create reranker: %w", err)
	}

	searchCfg := searchuc.Config{
		PathTimeout:   cfg.Search.PathTimeout(),
		OverFetch:     cfg.Search.OverFetch,
		AdvancedLimit: cfg.Search.AdvancedLimit,
	}

	// Interfaces stay nil (not typed nil pointers) when the vector path is off.
	var (
		vector searchuc.VectorSearcher
		embed  searchuc.Embedder
		pinger healthuc.StorePinger
		index  healthuc.IndexChecker
	)
	switch {
	case d.vector != nil:
		vector, embed = d.vector, queryEmbedder
		pinger, index = d.store, d.vector
	case d.storeErr != nil:
		down := unreachableStore{err: d.storeErr}
		pinger, index = down, down
	}

	d.search = searchuc.New(cat, vector, embed, reranker, searchCfg, a.logger)
	d.health = healthuc.New(pinger, index, d.embed, a.logger)

	a.logger.Info("Search service ready",
		zap.Bool("vector_enabled", d.vector != nil),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)
	return d, nil
}

func (a *app) connectStore(ctx context.Context) (db.Store, error) {
	cfg := a.cfg.Database
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("valkey not ready: %w", err)
	}
	a.logger.Info("Connected to valkey", zap.Strings("addrs", cfg.Addrs))
	return store, nil
}

func newVectorRepo(store db.Store, cfg config.Config) *vectorrepo.Repo {
	return vectorrepo.New(store, vectorrepo.Config{
		IndexName:           cfg.Vector.IndexName,
		KeyPrefix:           cfg.Vector.KeyPrefix,
		Dimensions:          cfg.Embedding.Dimensions,
		SimilarityThreshold: cfg.Vector.SimilarityThreshold,
		HNSWM:               cfg.Vector.HNSWM,
		HNSWEFConstruct:     cfg.Vector.HNSWEFConstruct,
	})
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented.
// The cache is skipped when there is no store.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	var base domain.Embedder
	switch cfg.Provider {
	case "hash":
		base = embeddinguc.NewHashEmbedder(cfg.Dimensions)
	default:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	}

	embedder := base
	if store != nil {
		embedder = embcache.New(base, store, embcache.Config{
			Prefix: fmt.Sprintf("%s%s:%d:", cfg.CachePrefix, cfg.Model, cfg.Dimensions),
			TTL:    cfg.CacheTTL(),
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, cfg.BatchSize, logger)
}

// withInstruction prefixes query texts. The wrapper sits outside the cache so
// the cache key includes the instruction.
func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// rerankConfig expects c to have defaults applied.
func rerankConfig(c config.RerankConfig) rerank.Config {
	return rerank.Config{
		Weights: rerank.Weights{
			Relevance:    c.Weights.Relevance,
			Vector:       c.Weights.Vector,
			ExactMatch:   c.Weights.ExactMatch,
			Availability: c.Weights.Availability,
			Price:        c.Weights.Price,
			Popularity:   c.Weights.Popularity,
		},
		DefaultThreshold:      *c.DefaultThreshold,
		DiversityBonus:        *c.DiversityBonus,
		FallbackMinSimilarity: *c.FallbackMinSimilarity,
		FallbackLimit:         *c.FallbackLimit,
		EmergencyLimit:        *c.EmergencyLimit,
		EmergencyPenalty:      *c.EmergencyPenalty,
	}
}
