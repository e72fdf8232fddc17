// internal/filter/evaluate.go
package filter

import (
	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Filter evaluation.
 *
 * Evaluates a compiled Program against one record.
 *
 * Evaluation flow:
 *   1. Group: AND needs every child true, OR needs one (short-circuit)
 *   2. Empty AND is true, empty OR is false
 *   3. Condition: resolve path -> coerce per value -> compare
 *   4. Projection: the condition holds if any reached value satisfies it
 *
 * Failure handling: an invalid condition, an unknown field or a failed
 * coercion all evaluate to false for that condition only. Evaluation never
 * returns an error and never mutates its input.
 */

// Matches reports whether rec satisfies the program.
func (p *Program) Matches(rec types.Record) bool {
	return evaluateNode(&p.Root, rec)
}

// Match compiles node and evaluates it once. Use Compile directly when the
// same tree is applied to many records.
func Match(rec types.Record, node types.Node) bool {
	return Compile(node).Matches(rec)
}

// evaluateNode dispatches a leaf or combines group children.
func evaluateNode(n *CompiledNode, rec types.Record) bool {
	if n.Condition != nil {
		return evaluateCondition(n.Condition, rec)
	}

	if n.Logical == types.Or {
		for i := range n.Children {
			if evaluateNode(&n.Children[i], rec) {
				return true
			}
		}
		return false
	}

	for i := range n.Children {
		if !evaluateNode(&n.Children[i], rec) {
			return false
		}
	}
	return true
}

// evaluateCondition resolves the path and ORs the comparison across every
// reached value. Zero reached values (empty projection) is a non-match.
func evaluateCondition(cond *CompiledCondition, rec types.Record) bool {
	if cond.Err != nil {
		return false
	}

	resolved, err := Resolve(cond.Path, rec)
	if err != nil {
		return false
	}

	for _, v := range resolved.Values {
		if evaluateValue(cond, v) {
			return true
		}
	}
	return false
}

// evaluateValue compares one resolved value. Null only satisfies is_empty.
func evaluateValue(cond *CompiledCondition, value any) bool {
	switch cond.Operator {
	case types.OpIsEmpty, types.OpIsNotEmpty:
		return Compare(cond.Operator, value, cond.Operand)
	}

	coerced, err := Coerce(value, cond.FieldType)
	if err != nil || coerced.IsNull {
		return false
	}
	return Compare(cond.Operator, coerced.Value, cond.Operand)
}
