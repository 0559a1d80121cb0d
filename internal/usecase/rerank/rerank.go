// Package rerank fuses keyword and vector hits into one relevance-ordered list.
package rerank

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/result"
)

// Outcome is the reranked result set plus diagnostics.
type Outcome struct {
	Results   []result.Scored
	Fallback  result.Fallback
	Threshold float64
	Merged    int
	Dropped   int
}

// Reranker merges both paths by identity, scores every candidate on six signals,
// filters by threshold and falls back to raw vector hits when nothing survives.
// It holds no per-request state and is safe for concurrent use.
type Reranker struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a reranker. The config must be valid.
func New(cfg Config, logger *zap.Logger) (*Reranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rerank config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reranker{cfg: cfg, logger: logger}, nil
}

// Config returns the active configuration.
func (r *Reranker) Config() Config { return r.cfg }

// Rerank scores api and vector hits for q. A nil threshold uses the configured default.
// Inputs are not modified.
func (r *Reranker) Rerank(api, vector []product.Item, q string, threshold *float64) Outcome {
	effective := r.cfg.DefaultThreshold
	if threshold != nil {
		effective = *threshold
	}
	out := Outcome{Threshold: effective}

	merged := merge(
		sourced{src: product.SourceAPI, items: api},
		sourced{src: product.SourceVector, items: vector},
	)
	out.Merged = len(merged)
	if len(merged) == 0 {
		return out
	}

	pq := parseQuery(q)
	kept := make([]result.Scored, 0, len(merged))
	for i := range merged {
		it := &merged[i]
		score, comps := r.score(pq, it)
		if score < effective {
			out.Dropped++
			r.logger.Debug("Below relevance threshold",
				zap.String("id", it.ID),
				zap.String("name", it.Name),
				zap.Float64("score", score),
				zap.Float64("threshold", effective),
			)
			continue
		}
		kept = append(kept, result.New(*it, score, comps, result.FallbackNone))
	}

	if len(kept) == 0 {
		r.logger.Warn("All candidates filtered out",
			zap.String("query", q),
			zap.Int("candidates", len(merged)),
			zap.Float64("threshold", effective),
		)
		out.Results, out.Fallback = r.fallback(vector)
		return out
	}

	sortByScore(kept)
	out.Results = kept
	return out
}

// score computes the weighted six-signal score plus the diversity bonus, clamped to [0, 1].
func (r *Reranker) score(q query, it *product.Item) (float64, result.Components) {
	t := textOf(it)
	c := result.Components{
		Relevance:    relevance(q, t),
		VectorScore:  product.ClipScore(it.VectorScore),
		ExactMatch:   exactMatch(q, t),
		Availability: availability(it),
		PriceScore:   priceScore(it.Price),
		Popularity:   popularity(it),
	}

	w := r.cfg.Weights
	total := w.Relevance*c.Relevance +
		w.Vector*c.VectorScore +
		w.ExactMatch*c.ExactMatch +
		w.Availability*c.Availability +
		w.Price*c.PriceScore +
		w.Popularity*c.Popularity

	if it.Sources.Both() {
		total += r.cfg.DiversityBonus
	}
	return clamp01(total), c
}

// fallback returns raw vector hits when the threshold removed every candidate:
// hits above the similarity cutoff first, otherwise the top few with a penalty.
func (r *Reranker) fallback(vector []product.Item) ([]result.Scored, result.Fallback) {
	hits := dedupeByID(vector)
	if len(hits) == 0 {
		return nil, result.FallbackNone
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].VectorScore > hits[j].VectorScore
	})

	var strong []product.Item
	for _, h := range hits {
		if h.VectorScore > r.cfg.FallbackMinSimilarity {
			strong = append(strong, h)
		}
	}

	if len(strong) > 0 {
		strong = head(strong, r.cfg.FallbackLimit)
		r.logger.Info("Applying vector bypass fallback", zap.Int("results", len(strong)))
		return tagged(strong, 1, result.FallbackVectorBypass), result.FallbackVectorBypass
	}

	top := head(hits, r.cfg.EmergencyLimit)
	if len(top) == 0 {
		return nil, result.FallbackNone
	}
	r.logger.Info("Applying emergency vector fallback", zap.Int("results", len(top)))
	return tagged(top, r.cfg.EmergencyPenalty, result.FallbackVectorEmergency), result.FallbackVectorEmergency
}

func tagged(items []product.Item, factor float64, tag result.Fallback) []result.Scored {
	out := make([]result.Scored, 0, len(items))
	for _, it := range items {
		sim := product.ClipScore(it.VectorScore)
		it.Sources = product.Sources(product.SourceVector)
		it.APIRank = product.RankAbsent
		out = append(out, result.New(it, clamp01(sim*factor), result.Components{VectorScore: sim}, tag))
	}
	return out
}

func dedupeByID(items []product.Item) []product.Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]product.Item, 0, len(items))
	for i, it := range items {
		if it.ID == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		it.VectorRank = i + 1
		out = append(out, it)
	}
	return out
}

func head(items []product.Item, n int) []product.Item {
	if n < len(items) {
		return items[:n]
	}
	return items
}

// sortByScore orders descending; equal scores keep insertion order.
func sortByScore(rs []result.Scored) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Score() > rs[j].Score()
	})
}
