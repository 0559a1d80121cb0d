package rerank

import "github.com/kailas-cloud/ondcsearch/internal/domain/product"

// sourced is one path's ranked result list.
type sourced struct {
	src   product.Source
	items []product.Item
}

type entry struct {
	api     *product.Item
	vec     *product.Item
	apiRank int
	vecRank int
}

// merge folds ranked lists into one record per identity key. Lists may be given in
// any order: display fields come from the keyword record when there is one (gaps
// filled from the vector record), the vector score and rank from the vector record.
// Within one list the first occurrence of an id wins. Output order is first appearance.
func merge(lists ...sourced) []product.Item {
	byID := make(map[string]*entry)
	var order []string

	for _, l := range lists {
		for i := range l.items {
			it := &l.items[i]
			if it.ID == "" {
				continue
			}
			e, ok := byID[it.ID]
			if !ok {
				e = &entry{apiRank: product.RankAbsent, vecRank: product.RankAbsent}
				byID[it.ID] = e
				order = append(order, it.ID)
			}
			switch l.src {
			case product.SourceAPI:
				if e.api == nil {
					e.api, e.apiRank = it, i+1
				}
			case product.SourceVector:
				if e.vec == nil {
					e.vec, e.vecRank = it, i+1
				}
			}
		}
	}

	out := make([]product.Item, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id].record())
	}
	return out
}

func (e *entry) record() product.Item {
	var rec product.Item
	switch {
	case e.api != nil:
		rec = *e.api
		if e.vec != nil {
			fillGaps(&rec, e.vec)
		}
	default:
		rec = *e.vec
	}

	rec.Sources = 0
	rec.VectorScore = 0
	if e.api != nil {
		rec.Sources = rec.Sources.With(product.SourceAPI)
	}
	if e.vec != nil {
		rec.Sources = rec.Sources.With(product.SourceVector)
		rec.VectorScore = product.ClipScore(e.vec.VectorScore)
	}
	rec.APIRank = e.apiRank
	rec.VectorRank = e.vecRank
	return rec
}

func fillGaps(dst, src *product.Item) {
	if dst.Name == product.UnknownName && src.Name != product.UnknownName {
		dst.Name = src.Name
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if dst.LongDescription == "" {
		dst.LongDescription = src.LongDescription
	}
	if dst.Category == "" {
		dst.Category = src.Category
	}
	if dst.Brand == "" {
		dst.Brand = src.Brand
	}
	if dst.ProviderName == "" {
		dst.ProviderName = src.ProviderName
	}
	if dst.StockCount == 0 {
		dst.StockCount = src.StockCount
	}
	if dst.Price == 0 {
		dst.Price = src.Price
	}
}
