// Package vector stores product embeddings in a Valkey FT index and runs filtered KNN over them.
package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ondcsearch/internal/db"
	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
)

// store is the consumer interface for the vector index (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// textFilterOverFetch widens K when category or brand filters are applied after the KNN.
const textFilterOverFetch = 3

// pointNamespace seeds deterministic point keys derived from product ids.
var pointNamespace = uuid.MustParse("6f1c2b8e-3d4a-5c6b-9e7f-0a1b2c3d4e5f")

// Config describes the product index.
type Config struct {
	IndexName           string
	KeyPrefix           string
	Dimensions          int
	SimilarityThreshold float64
	HNSWM               int
	HNSWEFConstruct     int
}

// Repo implements the vector similarity client on top of the FT index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a vector repository.
func New(s store, cfg Config) *Repo {
	return &Repo{store: s, cfg: cfg}
}

// Available reports whether the product index exists.
func (r *Repo) Available(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	return ok, nil
}

// Search returns the nearest products at or above the similarity threshold, best
// first. Category and brand filters are not applied here; with either set, up to
// limit*textFilterOverFetch hits are returned for the caller to filter.
// A missing index is reported as domain.ErrVectorUnavailable.
func (r *Repo) Search(
	ctx context.Context, vector []float32, filters request.Filters, limit int,
) ([]product.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrVectorUnavailable)
	}

	expr, err := buildExpression(filters)
	if err != nil {
		return nil, err
	}

	k := limit
	if len(filters.Categories) > 0 || len(filters.Brands) > 0 {
		k = limit * textFilterOverFetch
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		VectorField:  fieldVector,
		Filters:      expr,
		Vector:       vector,
		K:            k,
		ReturnFields: payloadFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: index %s", domain.ErrVectorUnavailable, r.cfg.IndexName)
		}
		return nil, fmt.Errorf("search knn %s: %w", r.cfg.IndexName, err)
	}

	return r.hits(sr), nil
}

func (r *Repo) hits(sr *db.SearchResult) []product.VectorHit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	out := make([]product.VectorHit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.Score < r.cfg.SimilarityThreshold {
			continue
		}
		out = append(out, product.VectorHit{Key: e.Key, Score: e.Score, Payload: e.Fields})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// EnsureIndex creates the product index. With recreate the existing index is
// dropped first; stored hashes are kept and re-indexed by the new definition.
func (r *Repo) EnsureIndex(ctx context.Context, recreate bool) (bool, error) {
	if recreate {
		if err := r.store.DropIndex(ctx, r.cfg.IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("drop index %s: %w", r.cfg.IndexName, err)
		}
	}

	def, err := r.IndexDefinition()
	if err != nil {
		return false, err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	return true, nil
}

// IndexDefinition returns the FT schema of the product index.
func (r *Repo) IndexDefinition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(r.cfg.IndexName).
		Prefix(r.cfg.KeyPrefix).
		TagSeparated(fieldCategory, tagSeparator).
		TagSeparated(fieldBrand, tagSeparator).
		Tag(fieldProviderID).
		Tag(fieldAvailable).
		Numeric(fieldPrice).
		Text(fieldName).
		VectorHNSW(fieldVector, r.cfg.Dimensions, db.DistanceCosine, r.cfg.HNSWM, r.cfg.HNSWEFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// Upsert writes points in one pipelined round-trip. Points without an id are skipped.
func (r *Repo) Upsert(ctx context.Context, points []product.Embedded) (int, error) {
	items := make([]db.HashSetItem, 0, len(points))
	for i := range points {
		p := &points[i]
		if p.Item.ID == "" {
			continue
		}
		if len(p.Vector) != r.cfg.Dimensions {
			return 0, fmt.Errorf("product %s: vector has %d dimensions, index expects %d",
				p.Item.ID, len(p.Vector), r.cfg.Dimensions)
		}
		items = append(items, db.HashSetItem{
			Key:    r.PointKey(p.Item.ID),
			Fields: toHash(&p.Item, p.Vector),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return 0, fmt.Errorf("write %d points: %w", len(items), err)
	}
	return len(items), nil
}

// PointKey maps a product id to its hash key. The mapping is deterministic so
// re-ingesting a product overwrites its previous point.
func (r *Repo) PointKey(id string) string {
	return r.cfg.KeyPrefix + uuid.NewSHA1(pointNamespace, []byte(id)).String()
}
