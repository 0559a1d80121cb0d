// Package ingest loads catalog products into the vector index.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

// Defaults.
const (
	DefaultBatchSize   = 50
	DefaultConcurrency = 4
	MaxTextLength      = 2000
)

// Config tunes ingestion.
type Config struct {
	BatchSize   int
	Concurrency int
	// Recreate drops and recreates the index before writing.
	Recreate bool
}

// Report summarizes one ingestion run.
type Report struct {
	Read         int
	Skipped      int
	Written      int
	Failed       int
	IndexCreated bool
}

// Service embeds normalized products and writes them to the index.
type Service struct {
	index  Index
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates an ingestion service.
func New(index Index, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, embed: embed, cfg: cfg, logger: logger}
}

type pending struct {
	item product.Item
	text string
}

// Ingest normalizes raw catalog items, embeds them in batches and upserts them.
// Items without an id or without any text, and repeated ids, are skipped.
// A failing batch is counted and logged; only an index setup failure aborts the run.
func (s *Service) Ingest(ctx context.Context, raw []product.CatalogItem) (Report, error) {
	rep := Report{Read: len(raw)}

	created, err := s.index.EnsureIndex(ctx, s.cfg.Recreate)
	if err != nil {
		return rep, fmt.Errorf("ensure index: %w", err)
	}
	rep.IndexCreated = created

	todo := s.prepare(raw)
	rep.Skipped = rep.Read - len(todo)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(todo); start += s.cfg.BatchSize {
		batch := todo[start:min(start+s.cfg.BatchSize, len(todo))]
		g.Go(func() error {
			written, err := s.writeBatch(gctx, batch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed += len(batch)
				s.logger.Warn("Ingest batch failed",
					zap.String("first_id", batch[0].item.ID),
					zap.Int("size", len(batch)),
					zap.Error(err),
				)
				return nil
			}
			rep.Written += written
			rep.Skipped += len(batch) - written
			return nil
		})
	}
	_ = g.Wait()

	metrics.IngestProducts.WithLabelValues("written").Add(float64(rep.Written))
	metrics.IngestProducts.WithLabelValues("skipped").Add(float64(rep.Skipped))
	metrics.IngestProducts.WithLabelValues("failed").Add(float64(rep.Failed))

	s.logger.Info("Ingest completed",
		zap.Int("read", rep.Read),
		zap.Int("written", rep.Written),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
		zap.Bool("index_created", rep.IndexCreated),
	)

	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("ingest interrupted: %w", err)
	}
	return rep, nil
}

func (s *Service) prepare(raw []product.CatalogItem) []pending {
	seen := make(map[string]struct{}, len(raw))
	out := make([]pending, 0, len(raw))
	for i := range raw {
		it, bad, err := product.FromCatalog(&raw[i])
		if err != nil {
			s.logger.Debug("Skipping catalog item", zap.Int("position", i), zap.Error(err))
			continue
		}
		if len(bad) > 0 {
			s.logger.Debug("Malformed catalog fields defaulted",
				zap.String("id", it.ID),
				zap.Strings("fields", bad),
			)
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		text := DocumentText(&it)
		if text == "" {
			s.logger.Debug("Skipping catalog item without text", zap.String("id", it.ID))
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, pending{item: it, text: text})
	}
	return out
}

func (s *Service) writeBatch(ctx context.Context, batch []pending) (int, error) {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = batch[i].text
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("embed batch: got %d embeddings for %d texts", len(res.Embeddings), len(batch))
	}

	points := make([]product.Embedded, len(batch))
	for i := range batch {
		points[i] = product.Embedded{Item: batch[i].item, Vector: res.Embeddings[i]}
	}

	n, err := s.index.Upsert(ctx, points)
	if err != nil {
		return 0, fmt.Errorf("upsert batch: %w", err)
	}
	return n, nil
}

// DocumentText is the text embedded for a product: name, description, category
// and brand joined by spaces, cut at a word boundary to MaxTextLength bytes.
// The placeholder name of unnamed products is not embedded.
func DocumentText(it *product.Item) string {
	name := it.Name
	if name == product.UnknownName {
		name = ""
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{name, it.Description, it.Category, it.Brand} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	text := strings.Join(parts, " ")
	if len(text) <= MaxTextLength {
		return text
	}
	cut := strings.ToValidUTF8(text[:MaxTextLength], "")
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
