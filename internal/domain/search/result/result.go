package result

import "github.com/kailas-cloud/ondcsearch/internal/domain/product"

// Fallback tags results that bypassed the rerank threshold.
type Fallback string

// Fallback tags.
const (
	FallbackNone            Fallback = ""
	FallbackVectorBypass    Fallback = "vector_bypass"
	FallbackVectorEmergency Fallback = "vector_emergency"
)

// Components are the per-signal scores that make up a rerank score.
type Components struct {
	Relevance    float64
	VectorScore  float64
	ExactMatch   float64
	Availability float64
	PriceScore   float64
	Popularity   float64
}

// Scored is a normalized item with its fused rerank score.
type Scored struct {
	item       product.Item
	score      float64
	components Components
	fallback   Fallback
}

// New creates a scored result.
func New(item product.Item, score float64, components Components, fallback Fallback) Scored {
	return Scored{item: item, score: score, components: components, fallback: fallback}
}

// Item returns the normalized product.
func (s *Scored) Item() product.Item { return s.item }

// ID returns the product identity key.
func (s *Scored) ID() string { return s.item.ID }

// Score returns the rerank score in [0, 1].
func (s *Scored) Score() float64 { return s.score }

// Components returns the score breakdown.
func (s *Scored) Components() Components { return s.components }

// Fallback returns the fallback tag, empty for regularly ranked results.
func (s *Scored) Fallback() Fallback { return s.fallback }
