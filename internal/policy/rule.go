package policy

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finopsguard/guardrail/internal/model"
)

// evaluateExpression reports whether expr is TRUE against ctx: all rules
// true when Operator is "and" (the default for an empty/unset operator),
// any rule true when "or". An expression with no rules is vacuously true.
func evaluateExpression(expr *model.PolicyExpression, ctx evalContext) bool {
	if len(expr.Rules) == 0 {
		return true
	}
	if expr.Operator == model.OperatorOr {
		for _, r := range expr.Rules {
			if evaluateRule(r, ctx) {
				return true
			}
		}
		return false
	}
	for _, r := range expr.Rules {
		if !evaluateRule(r, ctx) {
			return false
		}
	}
	return true
}

// failedRules returns the subset of expr.Rules that individually evaluate
// TRUE against ctx, used to populate a violation's Details.
func failedRules(expr *model.PolicyExpression, ctx evalContext) []model.PolicyRule {
	var out []model.PolicyRule
	for _, r := range expr.Rules {
		if evaluateRule(r, ctx) {
			out = append(out, r)
		}
	}
	return out
}

// evaluateRule applies one PolicyRule's operator to the field it names.
// Numeric operators coerce to
// float with a false fallback on coercion failure, "in" requires a list
// value, "contains" is a case-insensitive substring match.
func evaluateRule(rule model.PolicyRule, ctx evalContext) bool {
	fieldVal := fieldValue(ctx, rule.Field)

	switch rule.Operator {
	case model.OpEquals:
		return looseEqual(fieldVal, rule.Value)
	case model.OpNotEquals:
		return !looseEqual(fieldVal, rule.Value)
	case model.OpGreaterThan:
		return compareNumeric(fieldVal, rule.Value, func(a, b float64) bool { return a > b })
	case model.OpGreaterEq:
		return compareNumeric(fieldVal, rule.Value, func(a, b float64) bool { return a >= b })
	case model.OpLessThan:
		return compareNumeric(fieldVal, rule.Value, func(a, b float64) bool { return a < b })
	case model.OpLessEq:
		return compareNumeric(fieldVal, rule.Value, func(a, b float64) bool { return a <= b })
	case model.OpIn:
		return inList(fieldVal, rule.Value)
	case model.OpContains:
		return strings.Contains(strings.ToLower(toStringForMatch(fieldVal)), strings.ToLower(toStringForMatch(rule.Value)))
	case model.OpStartsWith:
		return strings.HasPrefix(toStringForMatch(fieldVal), toStringForMatch(rule.Value))
	case model.OpEndsWith:
		return strings.HasSuffix(toStringForMatch(fieldVal), toStringForMatch(rule.Value))
	default:
		return false
	}
}

// looseEqual compares a context field value against a rule literal,
// coercing decimal.Decimal to its literal numeric form so "resource.count
// == 3" matches whether count arrived as int or decimal.
func looseEqual(fieldVal, literal interface{}) bool {
	if fa, aok := toFloat(fieldVal); aok {
		if fb, bok := toFloat(literal); bok {
			return fa == fb
		}
	}
	return toStringForMatch(fieldVal) == toStringForMatch(literal)
}

// compareNumeric implements the numeric operators' fallback-false-on-
// coercion-failure rule.
func compareNumeric(fieldVal, literal interface{}, cmp func(a, b float64) bool) bool {
	a, aok := toFloat(fieldVal)
	b, bok := toFloat(literal)
	if !aok || !bok {
		return false
	}
	return cmp(a, b)
}

// toFloat coerces the handful of numeric shapes that flow through the
// evaluation context (decimal.Decimal, int, float64, and numeric strings)
// to float64.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// inList requires literal to be a list (of strings); a
// non-list literal makes the rule false rather than panicking.
func inList(fieldVal, literal interface{}) bool {
	needle := toStringForMatch(fieldVal)
	switch list := literal.(type) {
	case []string:
		for _, v := range list {
			if v == needle {
				return true
			}
		}
		return false
	case []interface{}:
		for _, v := range list {
			if toStringForMatch(v) == needle {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// toStringForMatch renders a context value as a string for the
// string-oriented operators (==/!=/contains/starts_with/ends_with),
// without quoting or formatting noise.
func toStringForMatch(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case decimal.Decimal:
		return s.String()
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
