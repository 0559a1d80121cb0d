// Package product holds the canonical catalog record shared by both search paths
// and the raw upstream shapes it is normalized from.
package product

import "math"

// UnknownName is the display name used when the upstream item has none.
const UnknownName = "Unknown Product"

// DefaultCurrency is assumed when the upstream price carries no currency.
const DefaultCurrency = "INR"

// RankAbsent is the rank of an item in a source that did not return it.
const RankAbsent = math.MaxInt

// Source identifies which search path surfaced an item.
type Source uint8

const (
	// SourceAPI is the keyword catalog API path.
	SourceAPI Source = 1 << iota
	// SourceVector is the vector similarity path.
	SourceVector
)

// String returns the wire label of a single source.
func (s Source) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceVector:
		return "vector"
	default:
		return "unknown"
	}
}

// Sources is a set of Source flags.
type Sources uint8

// Has reports whether s contains src.
func (s Sources) Has(src Source) bool { return s&Sources(src) != 0 }

// With returns s extended by src.
func (s Sources) With(src Source) Sources { return s | Sources(src) }

// Both reports whether the item was found by the keyword and the vector path.
func (s Sources) Both() bool { return s.Has(SourceAPI) && s.Has(SourceVector) }

// Labels returns the set as sorted wire labels.
func (s Sources) Labels() []string {
	out := make([]string, 0, 2)
	if s.Has(SourceAPI) {
		out = append(out, SourceAPI.String())
	}
	if s.Has(SourceVector) {
		out = append(out, SourceVector.String())
	}
	return out
}

// Item is the canonical record used for scoring. ID is the join key across sources.
type Item struct {
	ID              string
	Name            string
	Description     string
	LongDescription string
	Category        string
	Brand           string
	ProviderID      string
	ProviderName    string
	LocationID      string
	Price           float64
	Currency        string
	Images          []string
	Available       bool
	StockCount      int
	Returnable      bool
	CODAvailable    bool

	Sources     Sources
	APIRank     int
	VectorRank  int
	VectorScore float64
}

// Embedded is a product with its document embedding, ready to be indexed.
type Embedded struct {
	Item   Item
	Vector []float32
}

// HasAPIRank reports whether the keyword path ranked the item.
func (it *Item) HasAPIRank() bool { return it.APIRank != RankAbsent }

// HasVectorRank reports whether the vector path ranked the item.
func (it *Item) HasVectorRank() bool { return it.VectorRank != RankAbsent }

// BrandOrProvider returns the brand, falling back to the provider name.
func (it *Item) BrandOrProvider() string {
	if it.Brand != "" {
		return it.Brand
	}
	return it.ProviderName
}
