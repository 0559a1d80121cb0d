package product

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// ErrMissingID signals an upstream item without any usable identity key.
var ErrMissingID = errors.New("item has no identity key")

// Malformed lists fields that were present upstream but unparseable and fell back to defaults.
type Malformed []string

// FromCatalog normalizes a keyword API hit. Identity prefers the full composite
// top-level ID, then item_details.id, then item_details.local_id.
func FromCatalog(raw *CatalogItem) (Item, Malformed, error) {
	d := raw.ItemDetails()
	f := fieldReader{bad: append(Malformed(nil), raw.mistyped...)}

	id := firstNonEmpty(f.id("id", raw.ID), f.id("item_details.id", d.ID), f.id("item_details.local_id", d.LocalID))
	if id == "" {
		return Item{}, nil, ErrMissingID
	}

	price, ok := ParsePrice(d.Price)
	if !ok {
		f.bad = append(f.bad, "price")
	}

	category, ok := ParseCategory(d.CategoryID)
	if !ok {
		f.bad = append(f.bad, "category_id")
	}
	if category == "" {
		if c, ok := ParseCategory(d.Category); ok {
			category = c
		} else {
			f.bad = append(f.bad, "category")
		}
	}

	item := Item{
		ID:              id,
		Name:            displayName(f.text("descriptor.name", d.Descriptor.Name)),
		Description:     f.text("descriptor.short_desc", d.Descriptor.ShortDesc),
		LongDescription: f.text("descriptor.long_desc", d.Descriptor.LongDesc),
		Category:        category,
		Brand:           f.text("descriptor.brand", d.Descriptor.Brand),
		ProviderID: providerID(
			f.id("provider_details.local_id", raw.Provider.LocalID),
			f.id("provider_details.id", raw.Provider.ID),
		),
		ProviderName: f.text("provider_details.descriptor.name", raw.Provider.Descriptor.Name),
		LocationID: firstNonEmpty(
			f.id("location_details.local_id", raw.Location.LocalID),
			f.id("location_details.id", raw.Location.ID),
		),
		Price:        price.Value,
		Currency:     currencyOr(price.Currency),
		Images:       ParseImages(d.Descriptor.Images),
		Available:    true,
		StockCount:   ParseCount(d.Quantity.Available.Count),
		Returnable:   ParseBool(d.Returnable),
		CODAvailable: ParseBool(d.COD),
		Sources:      Sources(SourceAPI),
		APIRank:      RankAbsent,
		VectorRank:   RankAbsent,
	}
	return item, f.bad, nil
}

// fieldReader parses raw scalars with defaults and records the ones it rejected.
type fieldReader struct {
	bad Malformed
}

func (f *fieldReader) text(name string, raw json.RawMessage) string {
	s, ok := ParseText(raw)
	if !ok {
		f.bad = append(f.bad, name)
	}
	return s
}

func (f *fieldReader) id(name string, raw json.RawMessage) string {
	s, ok := ParseID(raw)
	if !ok {
		f.bad = append(f.bad, name)
	}
	return s
}

// FromVectorHit normalizes a vector index hit. Identity is the stored id field,
// then original_id, then local_id.
func FromVectorHit(hit VectorHit) (Item, Malformed, error) {
	p := hit.Payload

	id := firstNonEmpty(p["id"], p["original_id"], p["local_id"])
	if id == "" {
		return Item{}, nil, ErrMissingID
	}

	var bad Malformed

	price, ok := ParsePriceString(p["price"])
	if !ok {
		bad = append(bad, "price")
	}

	available := true
	if v, ok := p["available"]; ok {
		available = ParseBoolString(v)
	}

	item := Item{
		ID:              id,
		Name:            displayName(p["name"]),
		Description:     firstNonEmpty(p["description"], p["short_desc"], p["desc"], p["short_description"]),
		LongDescription: firstNonEmpty(p["long_description"], p["long_desc"], p["detailed_description"]),
		Category:        firstNonEmpty(ParseCategoryString(p["category"]), p["category_id"]),
		Brand:           p["brand"],
		ProviderID:      p["provider_id"],
		ProviderName:    firstNonEmpty(p["provider_name"], p["provider"]),
		LocationID:      p["location_id"],
		Price:           price.Value,
		Currency:        currencyOr(firstNonEmpty(p["currency"], price.Currency)),
		Images:          splitImages(p["images"]),
		Available:       available,
		StockCount:      ParseCountString(p["stock_count"]),
		Returnable:      ParseBoolString(p["returnable"]),
		CODAvailable:    ParseBoolString(p["cod_available"]),
		Sources:         Sources(SourceVector),
		APIRank:         RankAbsent,
		VectorRank:      RankAbsent,
		VectorScore:     ClipScore(hit.Score),
	}
	return item, bad, nil
}

// ClipScore bounds a similarity score to [0, 1].
func ClipScore(s float64) float64 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

// providerID prefers local_id; composite ONDC ids ("domain_ONDC:RET10_uuid") keep the last segment.
func providerID(localID, id string) string {
	if localID != "" {
		return localID
	}
	if parts := strings.Split(id, "_"); len(parts) >= 3 {
		return parts[len(parts)-1]
	}
	return id
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return UnknownName
	}
	return name
}

func currencyOr(c string) string {
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func splitImages(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		return ParseImages(json.RawMessage(s))
	}
	var out []string
	for _, u := range strings.Split(s, ",") {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
