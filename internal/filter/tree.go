// internal/filter/tree.go
package filter

import (
	"fmt"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Editable filter tree.
 *
 * Tree keeps the filter flattened in an arena: a map from node id to entry,
 * each entry holding its parent id and, for groups, the ordered ids of its
 * children. Edits look the node up by id and touch only that entry and its
 * parent, instead of rewriting the nested structure.
 *
 * The root is always a group. Its id is fixed for the life of the tree and
 * it cannot be removed; Clear drops its children but keeps its operator.
 *
 * Node() rebuilds the nested types.Node form for compilation, persistence
 * and the wire. Tree is not safe for concurrent use.
 */

type entry struct {
	parent   types.NodeID
	cond     *types.Condition // nil for groups
	logical  types.LogicalOperator
	children []types.NodeID
}

func (e *entry) isGroup() bool { return e.cond == nil }

// Tree is an arena-backed filter tree.
type Tree struct {
	root  types.NodeID
	nodes map[types.NodeID]*entry
}

// NewTree returns a tree holding an empty AND root group.
func NewTree() *Tree {
	root := types.NewNodeID()
	return &Tree{
		root:  root,
		nodes: map[types.NodeID]*entry{root: {logical: types.And}},
	}
}

// RootID returns the id of the root group.
func (t *Tree) RootID() types.NodeID {
	return t.root
}

// Len returns the number of conditions in the tree.
func (t *Tree) Len() int {
	n := 0
	for _, e := range t.nodes {
		if !e.isGroup() {
			n++
		}
	}
	return n
}

// group returns the entry for a group id; "" addresses the root.
func (t *Tree) group(id types.NodeID) (types.NodeID, *entry, error) {
	if id == "" {
		id = t.root
	}
	e, ok := t.nodes[id]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
	}
	if !e.isGroup() {
		return "", nil, fmt.Errorf("%w: %s", types.ErrNotAGroup, id)
	}
	return id, e, nil
}

// condition returns the entry for a condition id.
func (t *Tree) condition(id types.NodeID) (*entry, error) {
	e, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
	}
	if e.isGroup() {
		return nil, fmt.Errorf("%w: %s", types.ErrNotACondition, id)
	}
	return e, nil
}

// claimID returns id, or a fresh one if empty. Existing ids are rejected.
func (t *Tree) claimID(id types.NodeID) (types.NodeID, error) {
	if id == "" {
		return types.NewNodeID(), nil
	}
	if _, exists := t.nodes[id]; exists {
		return "", fmt.Errorf("%w: duplicate node id %s", types.ErrInvalidValue, id)
	}
	return id, nil
}

// AddCondition appends c under parent ("" for root) and returns its id.
func (t *Tree) AddCondition(parent types.NodeID, c types.Condition) (types.NodeID, error) {
	pid, pe, err := t.group(parent)
	if err != nil {
		return "", err
	}
	id, err := t.claimID(c.ID)
	if err != nil {
		return "", err
	}
	c.ID = id
	t.nodes[id] = &entry{parent: pid, cond: &c}
	pe.children = append(pe.children, id)
	return id, nil
}

// AddGroup appends an empty group under parent ("" for root) and returns its id.
func (t *Tree) AddGroup(parent types.NodeID, op types.LogicalOperator) (types.NodeID, error) {
	if !op.Valid() {
		return "", types.ErrInvalidLogicalOperator
	}
	pid, pe, err := t.group(parent)
	if err != nil {
		return "", err
	}
	id := types.NewNodeID()
	t.nodes[id] = &entry{parent: pid, logical: op}
	pe.children = append(pe.children, id)
	return id, nil
}

// Remove deletes a node and its whole subtree.
func (t *Tree) Remove(id types.NodeID) error {
	if id == t.root {
		return fmt.Errorf("%w: the root group cannot be removed", types.ErrInvalidValue)
	}
	e, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
	}

	parent := t.nodes[e.parent]
	for i, cid := range parent.children {
		if cid == id {
			parent.children = append(parent.children[:i:i], parent.children[i+1:]...)
			break
		}
	}
	t.dropSubtree(id)
	return nil
}

func (t *Tree) dropSubtree(id types.NodeID) {
	e := t.nodes[id]
	for _, cid := range e.children {
		t.dropSubtree(cid)
	}
	delete(t.nodes, id)
}

// Clear removes every node below the root. The root operator is kept.
func (t *Tree) Clear() {
	root := t.nodes[t.root]
	t.nodes = map[types.NodeID]*entry{t.root: {logical: root.logical}}
}

// Condition returns a copy of the condition with the given id.
func (t *Tree) Condition(id types.NodeID) (types.Condition, error) {
	e, err := t.condition(id)
	if err != nil {
		return types.Condition{}, err
	}
	return *e.cond, nil
}

// Parent returns the id of the group containing id.
func (t *Tree) Parent(id types.NodeID) (types.NodeID, error) {
	e, ok := t.nodes[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrNodeNotFound, id)
	}
	return e.parent, nil
}

// UpdateOperator changes the operator of a condition. Operands are kept.
func (t *Tree) UpdateOperator(id types.NodeID, op types.Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidOperator, op)
	}
	e, err := t.condition(id)
	if err != nil {
		return err
	}
	e.cond.Operator = op
	return nil
}

// UpdateValue replaces the operands of a condition.
func (t *Tree) UpdateValue(id types.NodeID, value types.Value, second *types.Value) error {
	e, err := t.condition(id)
	if err != nil {
		return err
	}
	e.cond.Value = value
	if second != nil {
		v := *second
		second = &v
	}
	e.cond.SecondValue = second
	return nil
}

// SetField changes the field path of a condition.
func (t *Tree) SetField(id types.NodeID, field string) error {
	e, err := t.condition(id)
	if err != nil {
		return err
	}
	e.cond.Field = field
	return nil
}

// SetLogicalOperator changes the operator of a group ("" for root).
func (t *Tree) SetLogicalOperator(id types.NodeID, op types.LogicalOperator) error {
	if !op.Valid() {
		return types.ErrInvalidLogicalOperator
	}
	_, e, err := t.group(id)
	if err != nil {
		return err
	}
	e.logical = op
	return nil
}

// LogicalOperator returns the operator of a group ("" for root).
func (t *Tree) LogicalOperator(id types.NodeID) (types.LogicalOperator, error) {
	_, e, err := t.group(id)
	if err != nil {
		return "", err
	}
	return e.logical, nil
}

// Node rebuilds the nested form rooted at the root group.
func (t *Tree) Node() types.Node {
	return t.build(t.root)
}

func (t *Tree) build(id types.NodeID) types.Node {
	e := t.nodes[id]
	if !e.isGroup() {
		c := *e.cond
		return types.Node{Condition: &c}
	}
	children := make([]types.Node, 0, len(e.children))
	for _, cid := range e.children {
		children = append(children, t.build(cid))
	}
	return types.GroupNode(id, e.logical, children...)
}

// Load replaces the tree contents with n. A condition root is wrapped in an
// AND group. Missing ids are generated; duplicate ids are rejected and leave
// the tree unchanged.
func (t *Tree) Load(n types.Node) error {
	next := &Tree{nodes: make(map[types.NodeID]*entry)}

	root := n.Group
	if root == nil {
		root = &types.Group{LogicalOperator: types.And}
		if n.Condition != nil {
			root.Children = []types.Node{n}
		}
	}
	op := root.LogicalOperator
	if op == "" {
		op = types.And
	}
	if !op.Valid() {
		return types.ErrInvalidLogicalOperator
	}

	rootID, err := next.claimID(root.ID)
	if err != nil {
		return err
	}
	next.root = rootID
	next.nodes[rootID] = &entry{logical: op}
	if err := next.loadChildren(rootID, root.Children); err != nil {
		return err
	}

	*t = *next
	return nil
}

func (t *Tree) loadChildren(parent types.NodeID, children []types.Node) error {
	for _, child := range children {
		switch {
		case child.Condition != nil:
			if _, err := t.AddCondition(parent, *child.Condition); err != nil {
				return err
			}
		case child.Group != nil:
			op := child.Group.LogicalOperator
			if op == "" {
				op = types.And
			}
			if !op.Valid() {
				return types.ErrInvalidLogicalOperator
			}
			id, err := t.claimID(child.Group.ID)
			if err != nil {
				return err
			}
			t.nodes[id] = &entry{parent: parent, logical: op}
			t.nodes[parent].children = append(t.nodes[parent].children, id)
			if err := t.loadChildren(id, child.Group.Children); err != nil {
				return err
			}
		}
	}
	return nil
}
