package filter

import (
	"fmt"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 16

// MaxValuesPerCondition bounds the size of a match-any tag set.
const MaxValuesPerCondition = 64

// Expression is a conjunction of index pre-filter conditions with optional exclusions.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, mustNot []Condition) (Expression, error) {
	if len(must) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must conditions (max %d)", MaxConditionsPerGroup)
	}
	if len(mustNot) > MaxConditionsPerGroup {
		return Expression{}, fmt.Errorf("too many must_not conditions (max %d)", MaxConditionsPerGroup)
	}
	return Expression{must: must, mustNot: mustNot}, nil
}

// Must returns the conditions every hit has to satisfy.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the conditions no hit may satisfy.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Condition is a single filter clause: a match-any tag set or a numeric range.
type Condition struct {
	key       string
	values    []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, value string) (Condition, error) {
	return NewMatchAny(key, value)
}

// NewMatchAny creates a tag condition satisfied when the field equals any of values.
// Blank and duplicate values are dropped; at least one value must remain.
func NewMatchAny(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerCondition)
	}

	seen := make(map[string]struct{}, len(values))
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, values: cleaned}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted tag values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	lower, upper := gt, lt
	if lower == nil {
		lower = gte
	}
	if upper == nil {
		upper = lte
	}
	if lower != nil && upper != nil && *lower > *upper {
		return Range{}, fmt.Errorf("lower bound %g exceeds upper bound %g", *lower, *upper)
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Between creates an inclusive range; nil bounds are open.
func Between(minV, maxV *float64) (Range, error) {
	return NewRangeFilter(nil, minV, nil, maxV)
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.gt != nil && v <= *r.gt {
		return false
	}
	if r.gte != nil && v < *r.gte {
		return false
	}
	if r.lt != nil && v >= *r.lt {
		return false
	}
	if r.lte != nil && v > *r.lte {
		return false
	}
	return true
}
