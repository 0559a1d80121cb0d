package rerank

import (
	"strings"

	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

// Field weights inside the relevance signal.
const (
	nameFieldWeight     = 0.40
	descFieldWeight     = 0.25
	categoryFieldWeight = 0.20
	brandFieldWeight    = 0.15

	phraseBoost        = 1.5
	fullCoverage       = 0.6
	partialCoverage    = 0.3
	coverageBoostScale = 0.3
	partialBoost       = 1.1
	minImportantLen    = 3
)

var stopwords = map[string]struct{}{
	"for": {}, "the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "from": {}, "with": {}, "by": {}, "of": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "can": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// query is the lowercased, tokenized search text.
type query struct {
	text      string
	tokens    []string
	important []string
}

func parseQuery(q string) query {
	text := strings.ToLower(q)
	tokens := strings.Fields(text)
	var important []string
	for _, t := range tokens {
		if _, stop := stopwords[t]; stop || len(t) < minImportantLen {
			continue
		}
		important = append(important, t)
	}
	return query{text: text, tokens: tokens, important: important}
}

// itemText is the lowercased text of an item's searchable fields.
// desc joins short and long descriptions; short is the short one alone.
type itemText struct {
	name     string
	desc     string
	short    string
	category string
	brand    string
	provider string
}

func textOf(it *product.Item) itemText {
	name := it.Name
	if name == product.UnknownName {
		name = ""
	}
	return itemText{
		name:     strings.ToLower(name),
		desc:     strings.ToLower(strings.TrimSpace(it.Description + " " + it.LongDescription)),
		short:    strings.ToLower(it.Description),
		category: strings.ToLower(it.Category),
		brand:    strings.ToLower(it.BrandOrProvider()),
		provider: strings.ToLower(providerOrBrand(it)),
	}
}

func providerOrBrand(it *product.Item) string {
	if it.ProviderName != "" {
		return it.ProviderName
	}
	return it.Brand
}

// relevance scores token overlap across name, description, category and brand,
// boosted by an exact phrase hit in the name and by coverage of important tokens.
func relevance(q query, t itemText) float64 {
	n := len(q.tokens)
	if n == 0 {
		return 0
	}

	var nameHits, descHits, catHits, brandHits float64
	for _, tok := range q.tokens {
		if strings.Contains(t.name, tok) {
			if isWordMatch(t.name, tok) {
				nameHits++
			} else {
				nameHits += 0.5
			}
		}
		if strings.Contains(t.desc, tok) {
			descHits++
		}
		if strings.Contains(t.category, tok) {
			catHits++
		}
		if strings.Contains(t.brand, tok) {
			brandHits++
		}
	}

	score := fraction(nameHits, n)*nameFieldWeight +
		fraction(descHits, n)*descFieldWeight +
		fraction(catHits, n)*categoryFieldWeight +
		fraction(brandHits, n)*brandFieldWeight

	if t.name != "" && strings.Contains(t.name, q.text) {
		score = capOne(score * phraseBoost)
	}

	if len(q.important) > 0 {
		searchable := strings.Join([]string{t.name, t.desc, t.category, t.brand}, " ")
		found := 0
		for _, tok := range q.important {
			if strings.Contains(searchable, tok) {
				found++
			}
		}
		coverage := float64(found) / float64(len(q.important))
		switch {
		case coverage >= fullCoverage:
			score = capOne(score * (1 + coverage*coverageBoostScale))
		case coverage >= partialCoverage:
			score = capOne(score * partialBoost)
		}
	}

	return score
}

// isWordMatch reports whether tok occurs in s as a whole word or at either end.
func isWordMatch(s, tok string) bool {
	return strings.Contains(" "+s+" ", " "+tok+" ") ||
		strings.HasPrefix(s, tok) || strings.HasSuffix(s, tok)
}

// exactMatch is the fraction of query terms found in name, short description, category and provider.
func exactMatch(q query, t itemText) float64 {
	if len(q.tokens) == 0 {
		return 0
	}
	text := strings.Join([]string{t.name, t.short, t.category, t.provider}, " ")
	hits := 0
	for _, tok := range q.tokens {
		if strings.Contains(text, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(q.tokens))
}

func availability(it *product.Item) float64 {
	switch {
	case it.StockCount > 0:
		return 1.0
	case it.CODAvailable:
		return 0.8
	default:
		return 0.5
	}
}

// priceScore bands price coarsely; cheaper scores higher.
func priceScore(price float64) float64 {
	switch {
	case price <= 100:
		return 1.0
	case price <= 500:
		return 0.8
	case price <= 1000:
		return 0.6
	case price <= 5000:
		return 0.4
	default:
		return 0.2
	}
}

// popularity uses returnability as a stand-in until ratings are available upstream.
func popularity(it *product.Item) float64 {
	if it.Returnable {
		return 0.8
	}
	return 0.5
}

func fraction(hits float64, n int) float64 {
	return capOne(hits / float64(n))
}

func capOne(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
