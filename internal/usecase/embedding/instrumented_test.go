package embedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result      domain.EmbeddingResult
	err         error
	batchResult domain.BatchEmbeddingResult
	batchErr    error
	batchCalls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	if m.batchResult.Embeddings != nil {
		return m.batchResult, nil
	}
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = m.result.Embedding
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding: []float32{0.1, 0.2, 0.3},
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", 0, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
}

func TestInstrumentedEmbedder_WithUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 100,
		TotalTokens:  100,
	}}
	p := NewInstrumentedEmbedder(inner, "test-usage", "test-model-u", 0, zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 2 {
		t.Fatalf("expected 2 dimensions, got %d", len(result.Embedding))
	}
	if result.TotalTokens != 100 {
		t.Fatalf("expected 100 total tokens, got %d", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	inner := &mockEmbedder{err: fmt.Errorf("api error")}
	p := NewInstrumentedEmbedder(inner, "test-err", "test-model-e", 0, zap.NewNop())

	_, err := p.Embed(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- BatchEmbed tests ---

func TestInstrumentedEmbedder_BatchEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	p := NewInstrumentedEmbedder(inner, "test-batch", "test-model-b", 0, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if inner.batchCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", inner.batchCalls)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_Empty(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", 0, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil for empty input")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{
		result:   domain.EmbeddingResult{Embedding: []float32{0.1}},
		batchErr: fmt.Errorf("api error"),
	}
	p := NewInstrumentedEmbedder(inner, "test-err", "model", 0, zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestInstrumentedEmbedder_BatchEmbed_FallbackToSingle(t *testing.T) {
	inner := &plainMockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1},
		PromptTokens: 5,
		TotalTokens:  5,
	}}
	p := NewInstrumentedEmbedder(inner, "test-fb", "model", 0, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 fallback Embed calls, got %d", inner.calls)
	}
}

// plainMockEmbedder implements only Embedder, not BatchEmbedder.
type plainMockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *plainMockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestInstrumentedEmbedder_BatchEmbed_Chunks(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.5},
		PromptTokens: 1,
		TotalTokens:  1,
	}}
	p := NewInstrumentedEmbedder(inner, "test-chunk", "model", 2, zap.NewNop())

	res, err := p.BatchEmbed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 5 {
		t.Fatalf("expected 5 embeddings, got %d", len(res.Embeddings))
	}
	if inner.batchCalls != 3 {
		t.Errorf("expected 3 chunked calls, got %d", inner.batchCalls)
	}
	if res.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", res.TotalTokens)
	}
}

func TestInstrumentedEmbedder_BatchEmbed_ShortChunk(t *testing.T) {
	inner := &mockEmbedder{batchResult: domain.BatchEmbeddingResult{
		Embeddings: [][]float32{{0.1}},
	}}
	p := NewInstrumentedEmbedder(inner, "test-short", "model", 0, zap.NewNop())

	_, err := p.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	p := NewInstrumentedEmbedder(&plainMockEmbedder{}, "p", "m", 0, nil)
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck on embedder without checker = %v, want nil", err)
	}

	h := NewInstrumentedEmbedder(NewHashEmbedder(4), "hash", "sha256", 0, nil)
	if err := h.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck = %v", err)
	}
}
