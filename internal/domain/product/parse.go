package product

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price is a flattened price with its currency.
type Price struct {
	Value    float64
	Currency string
}

var jsonNull = []byte("null")

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, jsonNull)
}

// ParsePrice flattens a bare number, a numeric string or a {value, currency} object.
// Absent input yields a zero price and ok=true; input of any other shape yields a
// zero price and ok=false.
func ParsePrice(raw json.RawMessage) (Price, bool) {
	if isAbsent(raw) {
		return Price{}, true
	}
	if v, ok := parseNumber(raw); ok {
		return Price{Value: v}, true
	}

	var obj struct {
		Value    json.RawMessage `json:"value"`
		Currency string          `json:"currency"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Price{}, false
	}
	if isAbsent(obj.Value) {
		return Price{Currency: obj.Currency}, true
	}
	v, ok := parseNumber(obj.Value)
	if !ok {
		return Price{Currency: obj.Currency}, false
	}
	return Price{Value: v, Currency: obj.Currency}, true
}

// ParsePriceString parses a price stored as text: a number or a JSON object.
func ParsePriceString(s string) (Price, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, true
	}
	if strings.HasPrefix(s, "{") {
		return ParsePrice(json.RawMessage(s))
	}
	v, ok := parseFloat(s)
	if !ok {
		return Price{}, false
	}
	return Price{Value: v}, true
}

// ParseCategory extracts a category name from a string or a {name, id} object.
func ParseCategory(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var obj struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	if obj.Name != "" {
		return obj.Name, true
	}
	return obj.ID, true
}

// ParseCategoryString parses a category stored as text: plain or a JSON object.
func ParseCategoryString(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		if c, ok := ParseCategory(json.RawMessage(s)); ok {
			return c
		}
		return ""
	}
	return s
}

// ParseText extracts a JSON string. Absent input yields "" and ok=true; any
// other JSON type yields "" and ok=false.
func ParseText(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ParseID extracts an identifier given as a JSON string or a JSON number. Numbers
// keep their literal text so 1024 and "1024" name the same product.
func ParseID(raw json.RawMessage) (string, bool) {
	if s, ok := ParseText(raw); ok {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

// ParseCount parses a stock count given as a number or a numeric string. Defaults to 0.
func ParseCount(raw json.RawMessage) int {
	if isAbsent(raw) {
		return 0
	}
	v, ok := parseNumber(raw)
	if !ok {
		return 0
	}
	return clampInt(v)
}

// ParseCountString parses a stock count stored as text. Defaults to 0.
func ParseCountString(s string) int {
	v, ok := parseFloat(strings.TrimSpace(s))
	if !ok {
		return 0
	}
	return clampInt(v)
}

// ParseBool accepts JSON booleans and the strings/numbers ONDC sellers send instead.
func ParseBool(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseBoolString(s)
	}
	if v, ok := parseNumber(raw); ok {
		return v != 0
	}
	return false
}

// ParseBoolString parses a flag stored as text.
func ParseBoolString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// ParseImages accepts a list of URLs or a list of {url} objects.
func ParseImages(raw json.RawMessage) []string {
	if isAbsent(raw) {
		return nil
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return urls
	}
	var objs []struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil
	}
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.URL != "" {
			out = append(out, o.URL)
		}
	}
	return out
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseFloat(strings.TrimSpace(s))
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampInt(v float64) int {
	if v <= 0 {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
