package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/category"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

// envelopeParser extracts the element list from one known response shape.
// ok is false when the body does not have that shape.
type envelopeParser func(body []byte) (elems []json.RawMessage, ok bool)

// Search responses: a bare list, {"data": [...]} or {"response": {"data": [...]}}.
var itemEnvelopes = []envelopeParser{
	bareList,
	keyedList("data"),
	nestedList("response", "data"),
}

// Category responses additionally come wrapped by the tRPC gateway.
var categoryEnvelopes = []envelopeParser{
	trpcCategories,
	bareList,
	keyedList("data"),
	keyedList("categories"),
	nestedList("result", "data"),
	singleKeyResult,
}

// ParseItems decodes a search response. skipped counts elements that were not
// decodable catalog items.
func ParseItems(body []byte) (items []product.CatalogItem, skipped int, err error) {
	elems, err := unwrap(body, itemEnvelopes)
	if err != nil {
		return nil, 0, err
	}
	items = make([]product.CatalogItem, 0, len(elems))
	for _, raw := range elems {
		var it product.CatalogItem
		if json.Unmarshal(raw, &it) != nil {
			skipped++
			continue
		}
		items = append(items, it)
	}
	return items, skipped, nil
}

// ParseCategories decodes a categories response, resolving field aliases.
func ParseCategories(body []byte) ([]category.Category, error) {
	elems, err := unwrap(body, categoryEnvelopes)
	if err != nil {
		return nil, err
	}
	out := make([]category.Category, 0, len(elems))
	for _, raw := range elems {
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) != nil {
			continue
		}
		name := stringField(fields, "name", "title", "categoryName")
		desc := stringField(fields, "description")
		if desc == "" {
			desc = category.DefaultDescription(name)
		}
		out = append(out, category.Category{
			ID:          stringField(fields, "id", "_id", "categoryId"),
			Name:        name,
			Description: desc,
			Image:       stringField(fields, "image", "imageUrl", "icon"),
			ItemCount:   countField(fields, "productCount", "item_count", "count"),
		})
	}
	return out, nil
}

func unwrap(body []byte, parsers []envelopeParser) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", domain.ErrMalformedPayload)
	}
	for _, p := range parsers {
		if elems, ok := p(body); ok {
			return elems, nil
		}
	}
	return nil, fmt.Errorf("%w: unrecognized envelope", domain.ErrMalformedPayload)
}

func bareList(body []byte) ([]json.RawMessage, bool) {
	var elems []json.RawMessage
	if json.Unmarshal(body, &elems) != nil {
		return nil, false
	}
	return elems, true
}

func keyedList(key string) envelopeParser {
	return func(body []byte) ([]json.RawMessage, bool) {
		var obj map[string]json.RawMessage
		if json.Unmarshal(body, &obj) != nil {
			return nil, false
		}
		raw, ok := obj[key]
		if !ok {
			return nil, false
		}
		return bareList(raw)
	}
}

func nestedList(outer, inner string) envelopeParser {
	innerList := keyedList(inner)
	return func(body []byte) ([]json.RawMessage, bool) {
		var obj map[string]json.RawMessage
		if json.Unmarshal(body, &obj) != nil {
			return nil, false
		}
		raw, ok := obj[outer]
		if !ok {
			return nil, false
		}
		return innerList(raw)
	}
}

// trpcCategories matches [{"result": {"data": {"json": {"categories": [...]}}}}].
func trpcCategories(body []byte) ([]json.RawMessage, bool) {
	var batch []struct {
		Result *struct {
			Data struct {
				JSON struct {
					Categories []json.RawMessage `json:"categories"`
				} `json:"json"`
			} `json:"data"`
		} `json:"result"`
	}
	if json.Unmarshal(body, &batch) != nil || len(batch) == 0 || batch[0].Result == nil {
		return nil, false
	}
	return batch[0].Result.Data.JSON.Categories, true
}

// singleKeyResult matches {"<procedure>": {"result": {"data": [...]}}}.
func singleKeyResult(body []byte) ([]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if json.Unmarshal(body, &obj) != nil || len(obj) != 1 {
		return nil, false
	}
	for _, raw := range obj {
		return nestedList("result", "data")(raw)
	}
	return nil, false
}

func stringField(fields map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil {
			return n.String()
		}
	}
	return ""
}

func countField(fields map[string]json.RawMessage, keys ...string) int {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		return product.ParseCount(raw)
	}
	return 0
}
