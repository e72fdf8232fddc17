// internal/filter/compile.go
package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Filter compilation.
 *
 * Compiles a types.Node tree into a Program: paths pre-split, operands
 * pre-converted, and every group's children ordered by ascending cost.
 *
 * Compilation workflow:
 *   1. Wrap a bare condition root in an AND group
 *   2. Per condition: parse path, check it against the customer schema,
 *      validate operator, convert operand
 *   3. Calculate condition and group costs
 *   4. Stable-sort each group's children by cost
 *
 * Leniency: the UI edits conditions one keystroke at a time, so a condition
 * with a bad path, unknown operator or missing operand compiles into a
 * never-matching leaf and is reported through Program.Problems instead of
 * failing the whole tree. Validate turns those problems into an error for
 * callers that want strict input.
 *
 * Stable sort: equal-cost children keep their original order so repeated
 * evaluations of the same tree visit nodes identically. Ordering never
 * changes results, only how early AND/OR short-circuit.
 */

// Problem records a condition that compiled into a never-matching leaf.
type Problem struct {
	NodeID types.NodeID
	Field  string
	Err    error
}

func (p Problem) Error() string {
	return fmt.Sprintf("condition %s (%s): %v", p.NodeID, p.Field, p.Err)
}

func (p Problem) Unwrap() error { return p.Err }

// CompiledCondition is a pre-processed condition ready for evaluation.
type CompiledCondition struct {
	ID        types.NodeID
	Path      Path
	Operator  types.Operator
	FieldType FieldType
	Operand   operand
	Cost      int
	Err       error // non-nil: condition never matches
}

// CompiledNode is either a condition leaf or a group with ordered children.
type CompiledNode struct {
	Condition *CompiledCondition
	Logical   types.LogicalOperator
	Children  []CompiledNode // ordered by ascending cost
	Cost      int
}

// Program is a compiled filter tree.
type Program struct {
	Root     CompiledNode
	problems []Problem
}

// Problems returns the conditions that could not be compiled.
func (p *Program) Problems() []Problem {
	return p.problems
}

// Compile pre-processes a filter tree for evaluation. It never fails;
// malformed conditions are reported by Problems.
func Compile(root types.Node) *Program {
	p := &Program{}

	switch {
	case root.Group != nil:
		p.Root = p.compileGroup(root.Group)
	case root.Condition != nil:
		p.Root = p.compileGroup(&types.Group{LogicalOperator: types.And, Children: []types.Node{root}})
	default:
		p.Root = CompiledNode{Logical: types.And}
	}
	return p
}

// Validate compiles root and returns every problem joined, or nil.
func Validate(root types.Node) error {
	problems := Compile(root).Problems()
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, pr := range problems {
		errs[i] = pr
	}
	return errors.Join(errs...)
}

// compileGroup compiles children recursively and orders them by cost.
// An invalid logical operator compiles as AND and is reported.
func (p *Program) compileGroup(g *types.Group) CompiledNode {
	logical := g.LogicalOperator
	if logical == "" {
		logical = types.And
	}
	if !logical.Valid() {
		p.problems = append(p.problems, Problem{NodeID: g.ID, Err: types.ErrInvalidLogicalOperator})
		logical = types.And
	}

	node := CompiledNode{
		Logical:  logical,
		Children: make([]CompiledNode, 0, len(g.Children)),
	}

	for _, child := range g.Children {
		var cn CompiledNode
		switch {
		case child.Group != nil:
			cn = p.compileGroup(child.Group)
		case child.Condition != nil:
			cc := p.compileCondition(child.Condition)
			cn = CompiledNode{Condition: &cc, Cost: cc.Cost}
		default:
			continue
		}
		node.Children = append(node.Children, cn)
		node.Cost += cn.Cost
	}

	// Stable sort: equal-cost children maintain original order
	sort.SliceStable(node.Children, func(i, j int) bool {
		return node.Children[i].Cost < node.Children[j].Cost
	})

	node.Cost += GroupOverhead
	return node
}

// compileCondition converts one condition. Failures are recorded and the
// condition is marked never-matching with zero cost.
func (p *Program) compileCondition(c *types.Condition) CompiledCondition {
	cc := CompiledCondition{ID: c.ID, Operator: c.Operator}

	fail := func(err error) CompiledCondition {
		p.problems = append(p.problems, Problem{NodeID: c.ID, Field: c.Field, Err: err})
		cc.Err = err
		cc.Cost = 0
		return cc
	}

	path, err := ParsePath(c.Field)
	if err != nil {
		return fail(err)
	}
	cc.Path = path

	if !KnownField(path.String()) {
		return fail(fmt.Errorf("%w: %s", types.ErrFieldNotFound, c.Field))
	}

	if !c.Operator.Valid() {
		return fail(fmt.Errorf("%w: %q", types.ErrInvalidOperator, c.Operator))
	}

	op, err := compileOperand(c)
	if err != nil {
		return fail(err)
	}
	cc.Operand = op
	cc.FieldType = operatorFieldType(c.Operator, op.dateRange)
	cc.Cost = CalculateConditionCost(path, c.Operator)
	return cc
}

// compileOperand converts value/secondValue for the condition's operator.
func compileOperand(c *types.Condition) (operand, error) {
	var op operand
	var err error

	switch c.Operator {
	case types.OpIsEmpty, types.OpIsNotEmpty:
		return op, nil

	case types.OpContains, types.OpEquals, types.OpStartsWith, types.OpEndsWith, types.OpHasTag:
		op.texts, err = operandTexts(c.Value)
		return op, err

	case types.OpGreaterThan, types.OpLessThan:
		op.low, err = operandNumber(c.Value)
		return op, err

	case types.OpBefore, types.OpAfter:
		op.from, err = operandDate(c.Value)
		return op, err

	case types.OpBetween:
		if c.SecondValue == nil || c.SecondValue.IsNull() || c.Value.IsNull() {
			return op, fmt.Errorf("%w: between needs value and secondValue", types.ErrMissingOperand)
		}
		return compileRange(c.Value, *c.SecondValue)
	}
	return op, types.ErrInvalidOperator
}

// compileRange picks the numeric domain when both bounds are numeric and the
// date domain otherwise.
func compileRange(lo, hi types.Value) (operand, error) {
	if lo.Kind != types.KindDate && hi.Kind != types.KindDate {
		low, errLo := operandNumber(lo)
		high, errHi := operandNumber(hi)
		if errLo == nil && errHi == nil {
			return operand{low: low, high: high}, nil
		}
	}
	from, err := operandDate(lo)
	if err != nil {
		return operand{}, fmt.Errorf("%w: between bounds must both be numbers or dates", types.ErrCoercionFailed)
	}
	until, err := operandDate(hi)
	if err != nil {
		return operand{}, fmt.Errorf("%w: between bounds must both be numbers or dates", types.ErrCoercionFailed)
	}
	return operand{from: from, until: until, dateRange: true}, nil
}
