package discovery

import (
	"fmt"
	"strings"
	"time"
)

// Expression represents a composable structured filter.
type Expression interface {
	// expr is a marker method to distinguish expressions from other values.
	expr()
}

// baseExpr provides the expr marker method for all expression types.
type baseExpr struct{}

func (baseExpr) expr() {}

// AndExpr matches when every inner expression matches.
type AndExpr struct {
	baseExpr
	Exprs []Expression
}

// And creates an AND expression combining multiple expressions.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// EqExpr represents an equality comparison. Strings compare case-insensitively.
type EqExpr struct {
	baseExpr
	Field string
	Value any
}

// Eq creates an equality comparison expression.
func Eq(field string, value any) Expression {
	return EqExpr{Field: field, Value: value}
}

// GteExpr represents a greater-than-or-equal comparison expression.
type GteExpr struct {
	baseExpr
	Field string
	Value any
}

// Gte creates a greater-than-or-equal comparison expression.
func Gte(field string, value any) Expression {
	return GteExpr{Field: field, Value: value}
}

// LteExpr represents a less-than-or-equal comparison expression.
type LteExpr struct {
	baseExpr
	Field string
	Value any
}

// Lte creates a less-than-or-equal comparison expression.
func Lte(field string, value any) Expression {
	return LteExpr{Field: field, Value: value}
}

// RangeExpr represents an inclusive range. A nil bound is open.
type RangeExpr struct {
	baseExpr
	Field string
	Min   any
	Max   any
}

// Range creates a range comparison expression.
func Range(field string, min, max any) Expression {
	return RangeExpr{Field: field, Min: min, Max: max}
}

// AnyOfExpr matches when a set-valued field shares at least one member with
// Values.
type AnyOfExpr struct {
	baseExpr
	Field  string
	Values []string
}

// AnyOf creates a set-membership expression.
func AnyOf(field string, values ...string) Expression {
	return AnyOfExpr{Field: field, Values: values}
}

// Matches reports whether f satisfies every expression. An empty list
// matches everything.
func Matches(f Fielder, exprs ...Expression) bool {
	for _, e := range exprs {
		if !evaluate(f, e) {
			return false
		}
	}
	return true
}

func evaluate(f Fielder, expr Expression) bool {
	switch e := expr.(type) {
	case AndExpr:
		return Matches(f, e.Exprs...)
	case EqExpr:
		v, ok := f.Field(e.Field)
		return ok && compareEqual(v, e.Value)
	case GteExpr:
		v, ok := f.Field(e.Field)
		return ok && compareValues(v, e.Value) >= 0
	case LteExpr:
		v, ok := f.Field(e.Field)
		return ok && compareValues(v, e.Value) <= 0
	case RangeExpr:
		v, ok := f.Field(e.Field)
		if !ok {
			return false
		}
		if e.Min != nil && compareValues(v, e.Min) < 0 {
			return false
		}
		return e.Max == nil || compareValues(v, e.Max) <= 0
	case AnyOfExpr:
		v, ok := f.Field(e.Field)
		return ok && intersects(v, e.Values)
	default:
		// Unknown expression type, return true to not filter out
		return true
	}
}

func intersects(v any, values []string) bool {
	if len(values) == 0 {
		return true
	}
	members, ok := v.([]string)
	if !ok {
		return false
	}
	for _, m := range members {
		for _, want := range values {
			if strings.EqualFold(m, want) {
				return true
			}
		}
	}
	return false
}

// compareEqual checks if two values are equal.
func compareEqual(v1, v2 any) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}
	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			return f1 == f2
		}
	}
	if b1, ok1 := v1.(bool); ok1 {
		b2, ok2 := v2.(bool)
		return ok2 && b1 == b2
	}
	return strings.EqualFold(fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}

// compareValues orders two values: numbers numerically, times
// chronologically, anything else by its string form.
func compareValues(v1, v2 any) int {
	if v1 == nil && v2 == nil {
		return 0
	}
	if v1 == nil {
		return -1
	}
	if v2 == nil {
		return 1
	}

	if f1, ok1 := toFloat64(v1); ok1 {
		if f2, ok2 := toFloat64(v2); ok2 {
			switch {
			case f1 < f2:
				return -1
			case f1 > f2:
				return 1
			}
			return 0
		}
	}

	if t1, ok1 := v1.(time.Time); ok1 {
		if t2, ok2 := v2.(time.Time); ok2 {
			return t1.Compare(t2)
		}
	}

	return strings.Compare(fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}

// toFloat64 attempts to convert a value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
