package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/ondcsearch/internal/domain/search/request"
)

// Hash field names of a stored product point.
const (
	fieldID              = "id"
	fieldName            = "name"
	fieldDescription     = "description"
	fieldLongDescription = "long_description"
	fieldCategory        = "category"
	fieldBrand           = "brand"
	fieldProviderID      = "provider_id"
	fieldProviderName    = "provider_name"
	fieldLocationID      = "location_id"
	fieldPrice           = "price"
	fieldCurrency        = "currency"
	fieldAvailable       = "available"
	fieldStockCount      = "stock_count"
	fieldReturnable      = "returnable"
	fieldCODAvailable    = "cod_available"
	fieldImages          = "images"
	fieldVector          = "vector"

	tagSeparator = "|"
)

// payloadFields are returned with every KNN hit; the raw vector is not.
var payloadFields = []string{
	fieldID, fieldName, fieldDescription, fieldLongDescription, fieldCategory, fieldBrand,
	fieldProviderID, fieldProviderName, fieldLocationID, fieldPrice, fieldCurrency,
	fieldAvailable, fieldStockCount, fieldReturnable, fieldCODAvailable, fieldImages,
}

func toHash(it *product.Item, vec []float32) map[string]string {
	h := map[string]string{
		fieldID:           it.ID,
		fieldName:         it.Name,
		fieldPrice:        strconv.FormatFloat(it.Price, 'f', -1, 64),
		fieldCurrency:     it.Currency,
		fieldAvailable:    strconv.FormatBool(it.Available),
		fieldReturnable:   strconv.FormatBool(it.Returnable),
		fieldCODAvailable: strconv.FormatBool(it.CODAvailable),
		fieldStockCount:   strconv.Itoa(it.StockCount),
		fieldVector:       vectorToBytes(vec),
	}
	optional := map[string]string{
		fieldDescription:     it.Description,
		fieldLongDescription: it.LongDescription,
		fieldCategory:        it.Category,
		fieldBrand:           it.Brand,
		fieldProviderID:      it.ProviderID,
		fieldProviderName:    it.ProviderName,
		fieldLocationID:      it.LocationID,
		fieldImages:          strings.Join(it.Images, ","),
	}
	for k, v := range optional {
		if v != "" {
			h[k] = v
		}
	}
	return h
}

// buildExpression maps product filters onto index pre-filter conditions.
// Only conditions the index evaluates exactly like request.Filters.Matches are
// pushed down: price range, provider ids and availability. Category and brand
// match by case-insensitive substring (brand also against the provider name),
// which TAG fields cannot express, so they are left to the caller's Matches pass.
func buildExpression(f request.Filters) (filter.Expression, error) {
	if f.PriceMin == nil && f.PriceMax == nil && len(f.ProviderIDs) == 0 && !f.AvailableOnly {
		return filter.Expression{}, nil
	}

	var must []filter.Condition
	add := func(c filter.Condition, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
		must = append(must, c)
		return nil
	}

	if f.PriceMin != nil || f.PriceMax != nil {
		r, err := filter.Between(f.PriceMin, f.PriceMax)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
		if err := add(filter.NewRange(fieldPrice, r)); err != nil {
			return filter.Expression{}, err
		}
	}
	if len(f.ProviderIDs) > 0 {
		if err := add(filter.NewMatchAny(fieldProviderID, f.ProviderIDs...)); err != nil {
			return filter.Expression{}, err
		}
	}
	if f.AvailableOnly {
		if err := add(filter.NewMatch(fieldAvailable, "true")); err != nil {
			return filter.Expression{}, err
		}
	}

	expr, err := filter.NewExpression(must, nil)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	return expr, nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
