package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockIndex struct {
	mu        sync.Mutex
	ensureErr error
	upsertErr error
	recreate  bool
	points    []product.Embedded
}

func (m *mockIndex) EnsureIndex(_ context.Context, recreate bool) (bool, error) {
	m.recreate = recreate
	if m.ensureErr != nil {
		return false, m.ensureErr
	}
	return true, nil
}

func (m *mockIndex) Upsert(_ context.Context, points []product.Embedded) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.points = append(m.points, points...)
	return len(points), nil
}

type mockEmbedder struct {
	mu     sync.Mutex
	calls  [][]string
	failOn string
	short  bool
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, texts)
	m.mu.Unlock()

	for _, t := range texts {
		if m.failOn != "" && strings.Contains(t, m.failOn) {
			return domain.BatchEmbeddingResult{}, domain.ErrEmbeddingProviderError
		}
	}
	n := len(texts)
	if m.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func rawItems(t *testing.T, body string) []product.CatalogItem {
	t.Helper()
	var items []product.CatalogItem
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return items
}

const sampleCatalog = `[
	{"id": "p1", "item_details": {"descriptor": {"name": "Organic Rice 1kg", "short_desc": "Premium", "brand": "Farm"}, "price": 120, "category_id": "Rice and Rice Products"}},
	{"id": "p2", "item_details": {"descriptor": {"name": "Cow Ghee"}, "price": "450.00", "category_id": "Oil & Ghee"}},
	{"id": "p1", "item_details": {"descriptor": {"name": "Organic Rice duplicate"}}},
	{"item_details": {"descriptor": {"name": "No id"}}},
	{"id": "p3", "item_details": {"descriptor": {}}},
	{"id": "p4", "item_details": {"descriptor": {"name": "Green Tea"}, "price": 150}}
]`

// --- Tests ---

func TestIngest_WritesNormalizedProducts(t *testing.T) {
	idx := &mockIndex{}
	emb := &mockEmbedder{}
	svc := New(idx, emb, Config{BatchSize: 2, Concurrency: 1, Recreate: true}, nil)

	rep, err := svc.Ingest(context.Background(), rawItems(t, sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.Read != 6 || rep.Written != 3 || rep.Skipped != 3 || rep.Failed != 0 || !rep.IndexCreated {
		t.Errorf("report = %+v", rep)
	}
	if !idx.recreate {
		t.Error("recreate flag not passed to the index")
	}
	if len(emb.calls) != 2 {
		t.Errorf("expected 2 embed batches, got %d", len(emb.calls))
	}

	byID := map[string]product.Embedded{}
	for _, p := range idx.points {
		byID[p.Item.ID] = p
	}
	if byID["p1"].Item.Name != "Organic Rice 1kg" {
		t.Errorf("first occurrence must win, got %q", byID["p1"].Item.Name)
	}
	if byID["p2"].Item.Price != 450 || byID["p2"].Item.Category != "Oil & Ghee" {
		t.Errorf("p2 = %+v", byID["p2"].Item)
	}
	if len(byID["p4"].Vector) != 2 {
		t.Errorf("p4 vector = %v", byID["p4"].Vector)
	}
}

func TestIngest_FailedBatchDoesNotAbort(t *testing.T) {
	idx := &mockIndex{}
	emb := &mockEmbedder{failOn: "Ghee"}
	svc := New(idx, emb, Config{BatchSize: 1, Concurrency: 2}, nil)

	rep, err := svc.Ingest(context.Background(), rawItems(t, sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Written != 2 || rep.Failed != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestIngest_EmbeddingCountMismatch(t *testing.T) {
	idx := &mockIndex{}
	svc := New(idx, &mockEmbedder{short: true}, Config{BatchSize: 10}, nil)

	rep, err := svc.Ingest(context.Background(), rawItems(t, sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Written != 0 || rep.Failed != 3 || len(idx.points) != 0 {
		t.Errorf("report = %+v, points = %d", rep, len(idx.points))
	}
}

func TestIngest_UpsertFailure(t *testing.T) {
	idx := &mockIndex{upsertErr: errors.New("READONLY")}
	svc := New(idx, &mockEmbedder{}, Config{}, nil)

	rep, err := svc.Ingest(context.Background(), rawItems(t, sampleCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Failed != 3 || rep.Written != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestIngest_EnsureIndexFailureAborts(t *testing.T) {
	emb := &mockEmbedder{}
	svc := New(&mockIndex{ensureErr: errors.New("unknown command")}, emb, Config{}, nil)

	_, err := svc.Ingest(context.Background(), rawItems(t, sampleCatalog))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(emb.calls) != 0 {
		t.Error("nothing should be embedded without an index")
	}
}

func TestIngest_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(&mockIndex{}, &mockEmbedder{}, Config{}, nil)
	if _, err := svc.Ingest(ctx, rawItems(t, sampleCatalog)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDocumentText(t *testing.T) {
	tests := []struct {
		name string
		item product.Item
		want string
	}{
		{"all fields", product.Item{Name: "Rice", Description: "Long grain", Category: "Grains", Brand: "Farm"}, "Rice Long grain Grains Farm"},
		{"skips blanks", product.Item{Name: " Rice ", Brand: "  "}, "Rice"},
		{"placeholder name", product.Item{Name: product.UnknownName, Category: "Tea"}, "Tea"},
		{"empty", product.Item{Name: product.UnknownName}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocumentText(&tt.item); got != tt.want {
				t.Errorf("DocumentText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocumentText_TruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 600)
	got := DocumentText(&product.Item{Name: "Rice", Description: long})

	if len(got) > MaxTextLength {
		t.Fatalf("len = %d, exceeds %d", len(got), MaxTextLength)
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "wor") {
		t.Errorf("cut mid-word: %q", got[len(got)-10:])
	}
}
