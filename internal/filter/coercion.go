// internal/filter/coercion.go
package filter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Type coercion for filter evaluation.
 *
 * Each operator compares in one domain: text, number, date or tag set.
 * Coerce converts a resolved field value into the domain the operator
 * needs; operands are converted once at compile time by the operand*
 * helpers below.
 *
 * Key distinction: null vs coercion failure. A nil field value is null and
 * only the emptiness operators can match it. A value that cannot be
 * converted (e.g. "n/a" for greater_than) fails coercion and the comparison
 * is a non-match. Neither case is an error to the caller.
 *
 * Domains:
 *   - Text: lenient, every scalar stringifies, then lowercases
 *   - Numeric: strict, numbers and numeric strings only; NaN is a failure
 *   - Date: time.Time or strings in one of dateLayouts
 *   - Tags: []string only, lowercased element-wise
 */

// FieldType is the comparison domain an operator works in.
type FieldType int

const (
	FieldTypeAny FieldType = iota
	FieldTypeText
	FieldTypeNumeric
	FieldTypeDate
	FieldTypeTags
)

// dateLayouts are tried in order when a string must be read as a date.
var dateLayouts = []string{
	types.DateLayout,
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
}

// CoercionResult holds the coerced value or indicates null.
type CoercionResult struct {
	Value  any  // coerced value (valid only if !IsNull)
	IsNull bool // true if input was nil
}

// Coerce converts value into the domain of fieldType.
// Returns CoercionResult with IsNull=true for nil input.
// Returns ErrCoercionFailed for impossible coercions.
func Coerce(value any, fieldType FieldType) (CoercionResult, error) {
	if value == nil {
		return CoercionResult{IsNull: true}, nil
	}

	switch fieldType {
	case FieldTypeText:
		s, err := toText(value)
		if err != nil {
			return CoercionResult{}, err
		}
		return CoercionResult{Value: strings.ToLower(s)}, nil
	case FieldTypeNumeric:
		f, err := toNumber(value)
		if err != nil {
			return CoercionResult{}, err
		}
		return CoercionResult{Value: f}, nil
	case FieldTypeDate:
		t, err := toDate(value)
		if err != nil {
			return CoercionResult{}, err
		}
		return CoercionResult{Value: t}, nil
	case FieldTypeTags:
		tags, ok := value.([]string)
		if !ok {
			return CoercionResult{}, types.ErrCoercionFailed
		}
		lowered := make([]string, len(tags))
		for i, t := range tags {
			lowered[i] = strings.ToLower(t)
		}
		return CoercionResult{Value: lowered}, nil
	case FieldTypeAny:
		return CoercionResult{Value: value}, nil
	default:
		return CoercionResult{}, types.ErrCoercionFailed
	}
}

// toText stringifies a scalar. String slices join with "," so a single-tag
// list compares like its only element.
func toText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case decimal.Decimal:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(types.DateLayout), nil
	case []string:
		return strings.Join(v, ","), nil
	default:
		return "", types.ErrCoercionFailed
	}
}

// toNumber converts numbers and numeric strings to float64.
// Booleans, blank strings and NaN fail.
func toNumber(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case decimal.Decimal:
		f = v.InexactFloat64()
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, types.ErrCoercionFailed
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, types.ErrCoercionFailed
		}
		f = parsed
	default:
		return 0, types.ErrCoercionFailed
	}
	if math.IsNaN(f) {
		return 0, types.ErrCoercionFailed
	}
	return f, nil
}

// toDate reads a calendar date, normalised to UTC midnight.
func toDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return types.Date(v).Date, nil
	case string:
		v = strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return types.Date(t).Date, nil
			}
		}
	}
	return time.Time{}, types.ErrCoercionFailed
}

// isEmpty reports whether a resolved value counts as empty: nil, "", false,
// numeric zero, NaN, or a collection with no elements.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case float64:
		return v == 0 || math.IsNaN(v)
	case decimal.Decimal:
		return v.IsZero()
	case time.Time:
		return v.IsZero()
	case []string:
		return len(v) == 0
	case []types.Record:
		return len(v) == 0
	default:
		return false
	}
}

// operandTexts returns the lowercased text candidates of an operand. A set
// operand yields one candidate per element.
func operandTexts(v types.Value) ([]string, error) {
	switch v.Kind {
	case types.KindText:
		return []string{strings.ToLower(v.Text)}, nil
	case types.KindSet:
		if len(v.Set) == 0 {
			return nil, types.ErrMissingOperand
		}
		out := make([]string, len(v.Set))
		for i, s := range v.Set {
			out[i] = strings.ToLower(s)
		}
		return out, nil
	case types.KindNumber:
		return []string{strconv.FormatFloat(v.Number, 'f', -1, 64)}, nil
	case types.KindBool:
		return []string{strconv.FormatBool(v.Bool)}, nil
	case types.KindDate:
		return []string{v.Date.Format(types.DateLayout)}, nil
	default:
		return nil, types.ErrMissingOperand
	}
}

// operandNumber converts an operand for numeric comparison.
func operandNumber(v types.Value) (float64, error) {
	switch v.Kind {
	case types.KindNumber:
		if math.IsNaN(v.Number) {
			return 0, types.ErrCoercionFailed
		}
		return v.Number, nil
	case types.KindText:
		return toNumber(v.Text)
	case types.KindNull:
		return 0, types.ErrMissingOperand
	default:
		return 0, types.ErrCoercionFailed
	}
}

// operandDate converts an operand for calendar comparison.
func operandDate(v types.Value) (time.Time, error) {
	switch v.Kind {
	case types.KindDate:
		return v.Date, nil
	case types.KindText:
		return toDate(v.Text)
	case types.KindNull:
		return time.Time{}, types.ErrMissingOperand
	default:
		return time.Time{}, types.ErrCoercionFailed
	}
}
