package product

import (
	"encoding/json"
	"errors"
)

// CatalogItem is one hit from the keyword catalog API. Most responses nest the
// product under item_details; some return the item_details fields at the top level.
//
// Scalar fields are kept raw and parsed with defaults during normalization, so
// one field of an unexpected type never drops the whole item.
type CatalogItem struct {
	ID       json.RawMessage `json:"id"`
	Details  *ItemDetails    `json:"item_details"`
	Provider ProviderDetails `json:"provider_details"`
	Location LocationDetails `json:"location_details"`

	flat ItemDetails
	// mistyped holds paths of nested values whose JSON type did not match.
	mistyped []string
}

// ItemDetails is the ONDC item body.
type ItemDetails struct {
	ID         json.RawMessage `json:"id"`
	LocalID    json.RawMessage `json:"local_id"`
	Descriptor Descriptor      `json:"descriptor"`
	Price      json.RawMessage `json:"price"`
	CategoryID json.RawMessage `json:"category_id"`
	Category   json.RawMessage `json:"category"`
	Quantity   Quantity        `json:"quantity"`
	Returnable json.RawMessage `json:"@ondc/org/returnable"`
	COD        json.RawMessage `json:"@ondc/org/available_on_cod"`
}

// Descriptor carries display fields.
type Descriptor struct {
	Name      json.RawMessage `json:"name"`
	ShortDesc json.RawMessage `json:"short_desc"`
	LongDesc  json.RawMessage `json:"long_desc"`
	Brand     json.RawMessage `json:"brand"`
	Images    json.RawMessage `json:"images"`
}

// Quantity carries stock information.
type Quantity struct {
	Available struct {
		Count json.RawMessage `json:"count"`
	} `json:"available"`
}

// ProviderDetails identifies the seller.
type ProviderDetails struct {
	ID         json.RawMessage `json:"id"`
	LocalID    json.RawMessage `json:"local_id"`
	Descriptor struct {
		Name json.RawMessage `json:"name"`
	} `json:"descriptor"`
}

// LocationDetails identifies the seller location.
type LocationDetails struct {
	ID      json.RawMessage `json:"id"`
	LocalID json.RawMessage `json:"local_id"`
}

// UnmarshalJSON decodes both the nested and the flat item shape. A nested value
// of the wrong JSON type (a descriptor sent as a string, say) is left at its zero
// value and recorded; only input that is not a JSON object is an error.
func (c *CatalogItem) UnmarshalJSON(b []byte) error {
	type alias CatalogItem
	var a alias
	mistyped, err := decodeTolerant(b, &a)
	if err != nil {
		return err
	}
	var flat ItemDetails
	flatMistyped, err := decodeTolerant(b, &flat)
	if err != nil {
		return err
	}
	*c = CatalogItem(a)
	c.flat = flat
	c.mistyped = mistyped
	if c.Details == nil {
		c.mistyped = append(c.mistyped, flatMistyped...)
	}
	return nil
}

// decodeTolerant unmarshals b into v. encoding/json keeps decoding past a type
// mismatch and reports only the first one, so a type error is returned as a
// mistyped path instead of failing the decode.
func decodeTolerant(b []byte, v any) ([]string, error) {
	err := json.Unmarshal(b, v)
	var typeErr *json.UnmarshalTypeError
	switch {
	case err == nil:
		return nil, nil
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return []string{typeErr.Field}, nil
	default:
		return nil, err //nolint:wrapcheck // json errors are reported as-is by the envelope parser
	}
}

// ItemDetails returns the nested body, or the flat top-level fields when absent.
func (c *CatalogItem) ItemDetails() *ItemDetails {
	if c.Details != nil {
		return c.Details
	}
	return &c.flat
}

// VectorHit is one nearest-neighbour hit from the vector index.
// Payload holds the stored product fields as strings.
type VectorHit struct {
	Key     string
	Score   float64
	Payload map[string]string
}
