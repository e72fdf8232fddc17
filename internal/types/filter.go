// internal/types/filter.go
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

/*
 * Domain types for filter trees.
 *
 * A filter is a tree of Node values. A node is either a leaf Condition
 * (field path, operator, operand) or a Group combining its direct children
 * with AND/OR. The root of every filter is a Group.
 *
 * Key types:
 *   - Value: tagged union for operands (null, text, number, bool, set, date)
 *   - Condition: single comparison, optional secondValue for ranges
 *   - Group: logical composition, recursive through Node
 *   - Node: exactly one of Condition or Group
 *
 * Wire format: conditions and groups share one JSON object shape. Groups
 * carry "isGroup": true and their children under "conditions".
 */

// NodeID identifies a condition or group within a filter tree.
type NodeID string

// Operator names a comparison applied by a Condition.
type Operator string

const (
	OpContains    Operator = "contains"
	OpEquals      Operator = "equals"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
	OpHasTag      Operator = "has_tag"
	OpBefore      Operator = "before"
	OpAfter       Operator = "after"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

// Operators lists every supported operator in display order.
var Operators = []Operator{
	OpContains, OpEquals, OpStartsWith, OpEndsWith,
	OpGreaterThan, OpLessThan, OpBetween,
	OpHasTag, OpBefore, OpAfter,
	OpIsEmpty, OpIsNotEmpty,
}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	for _, known := range Operators {
		if o == known {
			return true
		}
	}
	return false
}

// Unary reports whether o consumes no operand.
func (o Operator) Unary() bool {
	return o == OpIsEmpty || o == OpIsNotEmpty
}

// LogicalOperator combines the children of a Group.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

// Valid reports whether l is AND or OR.
func (l LogicalOperator) Valid() bool {
	return l == And || l == Or
}

// ValueKind discriminates the Value union.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindBool
	KindSet
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindSet:
		return "set"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Value is a filter operand. Only the field selected by Kind is meaningful.
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	Bool   bool
	Set    []string
	Date   time.Time
}

// Null returns the null operand.
func Null() Value { return Value{} }

// Text returns a text operand.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number returns a numeric operand.
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// Bool returns a boolean operand.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Set returns a string-set operand.
func Set(items ...string) Value { return Value{Kind: KindSet, Set: items} }

// Date returns a calendar date operand truncated to UTC midnight.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{Kind: KindDate, Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// IsNull reports whether v carries no operand.
func (v Value) IsNull() bool { return v.Kind == KindNull }

func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return fmt.Sprintf("%g", v.Number)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindSet:
		return fmt.Sprintf("%v", v.Set)
	case KindDate:
		return v.Date.Format(DateLayout)
	default:
		return ""
	}
}

type dateValue struct {
	Date string `json:"date"`
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindText:
		return json.Marshal(v.Text)
	case KindNumber:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.Number)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindSet:
		if v.Set == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Set)
	case KindDate:
		return json.Marshal(dateValue{Date: v.Date.Format(DateLayout)})
	default:
		return nil, fmt.Errorf("%w: unknown value kind %d", ErrInvalidValue, int(v.Kind))
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: set elements must be strings", ErrInvalidValue)
		}
		*v = Set(items...)
	case '{':
		var d dateValue
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		t, err := time.Parse(DateLayout, d.Date)
		if err != nil {
			return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidValue)
		}
		*v = Date(t)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		*v = Number(f)
	}
	return nil
}

// Condition is a single field/operator/value comparison.
type Condition struct {
	ID          NodeID   `json:"id"`
	Field       string   `json:"field"`
	Operator    Operator `json:"operator"`
	Value       Value    `json:"value"`
	SecondValue *Value   `json:"secondValue,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// Group is a boolean composition of its direct children.
type Group struct {
	ID              NodeID          `json:"id"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
	Children        []Node          `json:"conditions"`
}

// Node holds exactly one of Condition or Group.
type Node struct {
	Condition *Condition
	Group     *Group
}

// ConditionNode wraps c in a Node.
func ConditionNode(c Condition) Node { return Node{Condition: &c} }

// GroupNode builds a group node over children.
func GroupNode(id NodeID, op LogicalOperator, children ...Node) Node {
	return Node{Group: &Group{ID: id, LogicalOperator: op, Children: children}}
}

// IsGroup reports whether n is a group.
func (n Node) IsGroup() bool { return n.Group != nil }

// ID returns the id of whichever variant is set.
func (n Node) ID() NodeID {
	if n.Group != nil {
		return n.Group.ID
	}
	if n.Condition != nil {
		return n.Condition.ID
	}
	return ""
}

type groupWire struct {
	ID              NodeID          `json:"id"`
	IsGroup         bool            `json:"isGroup"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
	Children        []Node          `json:"conditions"`
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	switch {
	case n.Group != nil:
		children := n.Group.Children
		if children == nil {
			children = []Node{}
		}
		return json.Marshal(groupWire{
			ID:              n.Group.ID,
			IsGroup:         true,
			LogicalOperator: n.Group.LogicalOperator,
			Children:        children,
		})
	case n.Condition != nil:
		return json.Marshal(n.Condition)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var head struct {
		IsGroup bool `json:"isGroup"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	if head.IsGroup {
		var g groupWire
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		op := g.LogicalOperator
		if op == "" {
			op = And
		}
		*n = Node{Group: &Group{ID: g.ID, LogicalOperator: op, Children: g.Children}}
		return nil
	}

	var c Condition
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*n = Node{Condition: &c}
	return nil
}
