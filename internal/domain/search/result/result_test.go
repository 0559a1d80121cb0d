package result

import (
	"testing"

	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

func TestNew(t *testing.T) {
	item := product.Item{ID: "A", Name: "Organic Rice 1kg"}
	comps := Components{Relevance: 0.8, VectorScore: 0.85}

	r := New(item, 0.91, comps, FallbackNone)

	if r.ID() != "A" || r.Item().Name != "Organic Rice 1kg" {
		t.Errorf("item = %+v", r.Item())
	}
	if r.Score() != 0.91 {
		t.Errorf("Score() = %f", r.Score())
	}
	if r.Components().VectorScore != 0.85 {
		t.Errorf("Components() = %+v", r.Components())
	}
	if r.Fallback() != FallbackNone {
		t.Errorf("Fallback() = %q", r.Fallback())
	}
}

func TestFallbackTags(t *testing.T) {
	r := New(product.Item{ID: "B"}, 0.6, Components{}, FallbackVectorEmergency)
	if r.Fallback() != "vector_emergency" {
		t.Errorf("Fallback() = %q", r.Fallback())
	}
	if FallbackVectorBypass != "vector_bypass" {
		t.Errorf("bypass tag = %q", FallbackVectorBypass)
	}
}
