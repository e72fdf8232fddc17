// internal/filter/cost.go
package filter

import "github.com/solatis/bulkmsg/internal/types"

/*
 * Cost model for condition ordering.
 *
 * Cost formula: lookup_cost + (operator_cost * 8^projections)
 *
 * Evaluating cheaper children first lets AND groups stop at the first
 * false child and OR groups at the first true one sooner on average. A
 * projection fans out over every element of a sub-entity collection, so
 * each collection segment multiplies the operator cost by 8.
 *
 * Invalid conditions have cost 0: they never match, so under AND they
 * settle the group immediately.
 */

const (
	// Operator base costs
	CostIsEmpty  = 1
	CostEquals   = 5
	CostCompare  = 7
	CostBetween  = 8
	CostHasTag   = 8
	CostSubstr   = 10
	CostFallback = 10

	// Field lookup cost per path segment
	CostLookupPerSegment = 16

	// Fan-out multiplier per projected segment
	ProjectionMultiplier = 8

	// GroupOverhead is added once per group on top of its children
	GroupOverhead = 2
)

// collectionFields are the path segments that land on sub-entity collections.
var collectionFields = map[string]bool{
	"services": true,
	"routes":   true,
	"invoices": true,
	"fees":     true,
}

// CalculateConditionCost computes cost for a single condition.
func CalculateConditionCost(path Path, op types.Operator) int {
	lookup := 0
	mult := 1
	for i, seg := range path {
		lookup += CostLookupPerSegment
		// A collection only projects when segments follow it
		if collectionFields[seg] && i < len(path)-1 {
			mult *= ProjectionMultiplier
		}
	}
	return lookup + operatorCost(op)*mult
}

// operatorCost returns base cost for operator execution.
func operatorCost(op types.Operator) int {
	switch op {
	case types.OpIsEmpty, types.OpIsNotEmpty:
		return CostIsEmpty
	case types.OpEquals:
		return CostEquals
	case types.OpGreaterThan, types.OpLessThan, types.OpBefore, types.OpAfter:
		return CostCompare
	case types.OpBetween:
		return CostBetween
	case types.OpHasTag:
		return CostHasTag
	case types.OpContains, types.OpStartsWith, types.OpEndsWith:
		return CostSubstr
	default:
		return CostFallback
	}
}
