package algolia

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

// FilterString converts expressions into Algolia filter syntax, ANDed
// together. Expressions that cannot be expressed yield nothing.
func FilterString(exprs ...discovery.Expression) string {
	return convertAndExpression(discovery.AndExpr{Exprs: exprs})
}

// convertExpressionToFilter converts one expression to an Algolia filter string
func convertExpressionToFilter(expr discovery.Expression) string {
	switch e := expr.(type) {
	case discovery.AndExpr:
		return convertAndExpression(e)
	case discovery.EqExpr:
		return fmt.Sprintf("%s:%s", escapeField(e.Field), escapeValue(e.Value))
	case discovery.GteExpr:
		return fmt.Sprintf("%s >= %s", escapeField(e.Field), escapeNumericValue(e.Value))
	case discovery.LteExpr:
		return fmt.Sprintf("%s <= %s", escapeField(e.Field), escapeNumericValue(e.Value))
	case discovery.RangeExpr:
		return convertRangeExpression(e)
	case discovery.AnyOfExpr:
		return convertAnyOfExpression(e)
	default:
		return ""
	}
}

func convertAndExpression(expr discovery.AndExpr) string {
	filters := make([]string, 0, len(expr.Exprs))
	for _, e := range expr.Exprs {
		if filter := convertExpressionToFilter(e); filter != "" {
			filters = append(filters, filter)
		}
	}
	if len(filters) == 1 {
		return filters[0]
	}
	for i, f := range filters {
		filters[i] = "(" + f + ")"
	}
	return strings.Join(filters, " AND ")
}

func convertRangeExpression(expr discovery.RangeExpr) string {
	var filters []string
	if expr.Min != nil {
		filters = append(filters, fmt.Sprintf("%s >= %s", escapeField(expr.Field), escapeNumericValue(expr.Min)))
	}
	if expr.Max != nil {
		filters = append(filters, fmt.Sprintf("%s <= %s", escapeField(expr.Field), escapeNumericValue(expr.Max)))
	}
	return strings.Join(filters, " AND ")
}

func convertAnyOfExpression(expr discovery.AnyOfExpr) string {
	if len(expr.Values) == 0 {
		return ""
	}
	filters := make([]string, len(expr.Values))
	for i, v := range expr.Values {
		filters[i] = fmt.Sprintf("%s:%s", escapeField(expr.Field), escapeValue(v))
	}
	return strings.Join(filters, " OR ")
}

// escapeField quotes field names with special characters.
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

func escapeValue(value any) string {
	if value == nil {
		return "null"
	}
	switch v := value.(type) {
	case string:
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	case discovery.Kind:
		return escapeValue(string(v))
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf(`"%v"`, value)
	}
}

// escapeNumericValue renders numbers as is and times as Unix seconds, the
// way numeric date attributes are stored in the index.
func escapeNumericValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	case time.Time:
		return strconv.FormatInt(v.Unix(), 10)
	default:
		if str := fmt.Sprintf("%v", value); str != "" {
			if _, err := strconv.ParseFloat(str, 64); err == nil {
				return str
			}
		}
		return escapeValue(value)
	}
}
