// internal/filter/operators.go
package filter

import (
	"strings"
	"time"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Implements the 12 filter operators. Field values must already be coerced
 * via Coerce() into the domain returned by operatorFieldType; operands are
 * pre-converted into an operand at compile time.
 *
 * Operators:
 *   - is_empty/is_not_empty: emptiness checks, no operand (cost 1)
 *   - equals: case-insensitive exact text match (cost 5)
 *   - greater_than/less_than: numeric comparison (cost 7)
 *   - between: inclusive range over numbers or dates (cost 8)
 *   - before/after: calendar ordering (cost 7)
 *   - has_tag: case-insensitive set membership (cost 8)
 *   - contains/starts_with/ends_with: case-insensitive substring (cost 10)
 *
 * Set operands: a text operator given a set operand matches if any element
 * matches, which is how multi-select fields are expressed.
 */

// operand is a condition value converted once for its operator's domain.
type operand struct {
	texts       []string  // lowercased text candidates
	low, high   float64   // numeric operand; high only for between
	from, until time.Time // date operand; until only for between
	dateRange   bool      // between compares dates instead of numbers
}

// operatorFieldType returns the comparison domain of op.
func operatorFieldType(op types.Operator, dateRange bool) FieldType {
	switch op {
	case types.OpContains, types.OpEquals, types.OpStartsWith, types.OpEndsWith:
		return FieldTypeText
	case types.OpGreaterThan, types.OpLessThan:
		return FieldTypeNumeric
	case types.OpBetween:
		if dateRange {
			return FieldTypeDate
		}
		return FieldTypeNumeric
	case types.OpBefore, types.OpAfter:
		return FieldTypeDate
	case types.OpHasTag:
		return FieldTypeTags
	default:
		return FieldTypeAny
	}
}

// Compare applies op to an already coerced field value.
func Compare(op types.Operator, value any, target operand) bool {
	switch op {
	case types.OpIsEmpty:
		return isEmpty(value)
	case types.OpIsNotEmpty:
		return !isEmpty(value)
	case types.OpContains:
		return anyText(value, target.texts, strings.Contains)
	case types.OpEquals:
		return anyText(value, target.texts, func(s, t string) bool { return s == t })
	case types.OpStartsWith:
		return anyText(value, target.texts, strings.HasPrefix)
	case types.OpEndsWith:
		return anyText(value, target.texts, strings.HasSuffix)
	case types.OpGreaterThan:
		n, ok := value.(float64)
		return ok && n > target.low
	case types.OpLessThan:
		n, ok := value.(float64)
		return ok && n < target.low
	case types.OpBetween:
		return compareBetween(value, target)
	case types.OpBefore:
		t, ok := value.(time.Time)
		return ok && t.Before(target.from)
	case types.OpAfter:
		t, ok := value.(time.Time)
		return ok && t.After(target.from)
	case types.OpHasTag:
		return compareHasTag(value, target.texts)
	default:
		return false
	}
}

// anyText reports whether match(value, candidate) holds for some candidate.
// value must be a lowercased string.
func anyText(value any, candidates []string, match func(s, t string) bool) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, c := range candidates {
		if match(s, c) {
			return true
		}
	}
	return false
}

// compareBetween checks low <= value <= high, inclusive at both bounds.
func compareBetween(value any, target operand) bool {
	if target.dateRange {
		t, ok := value.(time.Time)
		return ok && !t.Before(target.from) && !t.After(target.until)
	}
	n, ok := value.(float64)
	return ok && n >= target.low && n <= target.high
}

// compareHasTag checks that some lowercased tag equals some candidate.
func compareHasTag(value any, candidates []string) bool {
	tags, ok := value.([]string)
	if !ok {
		return false
	}
	for _, tag := range tags {
		for _, c := range candidates {
			if tag == c {
				return true
			}
		}
	}
	return false
}
