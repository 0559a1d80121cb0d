package rerank

import (
	"errors"
	"fmt"
	"math"
)

// Weights are the per-signal weights of the fused score. They must sum to 1.
type Weights struct {
	Relevance    float64
	Vector       float64
	ExactMatch   float64
	Availability float64
	Price        float64
	Popularity   float64
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Relevance + w.Vector + w.ExactMatch + w.Availability + w.Price + w.Popularity
}

// Config holds the reranker's tunables. The fallback values are behavioral
// defaults and are expected to be tuned per catalog.
type Config struct {
	Weights          Weights
	DefaultThreshold float64
	DiversityBonus   float64

	// Bypass fallback: vector hits above FallbackMinSimilarity, at most FallbackLimit.
	FallbackMinSimilarity float64
	FallbackLimit         int

	// Emergency fallback: top EmergencyLimit vector hits, score scaled by EmergencyPenalty.
	EmergencyLimit   int
	EmergencyPenalty float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Relevance:    0.35,
			Vector:       0.40,
			ExactMatch:   0.15,
			Availability: 0.04,
			Price:        0.03,
			Popularity:   0.03,
		},
		DefaultThreshold:      0.4,
		DiversityBonus:        0.1,
		FallbackMinSimilarity: 0.5,
		FallbackLimit:         5,
		EmergencyLimit:        3,
		EmergencyPenalty:      0.8,
	}
}

const weightTolerance = 1e-6

// Validate checks that weights sum to 1 and every tunable is in range.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"relevance": w.Relevance, "vector": w.Vector, "exact_match": w.ExactMatch,
		"availability": w.Availability, "price": w.Price, "popularity": w.Popularity,
	} {
		if !(v >= 0) {
			return fmt.Errorf("weight %s must be >= 0", name)
		}
	}
	if math.Abs(w.Sum()-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %.4f", w.Sum())
	}
	if !inUnit(c.DefaultThreshold) {
		return errors.New("default threshold must be between 0 and 1")
	}
	if !inUnit(c.DiversityBonus) {
		return errors.New("diversity bonus must be between 0 and 1")
	}
	if !inUnit(c.FallbackMinSimilarity) {
		return errors.New("fallback min similarity must be between 0 and 1")
	}
	if c.FallbackLimit < 0 || c.EmergencyLimit < 0 {
		return errors.New("fallback limits must be >= 0")
	}
	if !inUnit(c.EmergencyPenalty) {
		return errors.New("emergency penalty must be between 0 and 1")
	}
	return nil
}

// inUnit reports whether v is in [0, 1]. NaN is not.
func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
