package vector

import (
	"context"
	"testing"

	"github.com/kailas-cloud/ondcsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return true, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func testConfig() Config {
	return Config{
		IndexName:           "ondc:products:idx",
		KeyPrefix:           "ondc:product:",
		Dimensions:          4,
		SimilarityThreshold: 0.3,
		HNSWM:               16,
		HNSWEFConstruct:     200,
	}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testConfig()), ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}
