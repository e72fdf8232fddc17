package filter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/solatis/bulkmsg/internal/types"
)

func TestTree_AddAndBuild(t *testing.T) {
	tree := NewTree()

	id1, err := tree.AddCondition("", types.Condition{Field: "accountGroup", Operator: types.OpEquals, Value: types.Text("VIP")})
	if err != nil {
		t.Fatalf("AddCondition() error = %v", err)
	}
	gid, err := tree.AddGroup("", types.Or)
	if err != nil {
		t.Fatalf("AddGroup() error = %v", err)
	}
	id2, err := tree.AddCondition(gid, types.Condition{Field: "tags", Operator: types.OpHasTag, Value: types.Text("Recycling")})
	if err != nil {
		t.Fatalf("AddCondition(group) error = %v", err)
	}

	if id1 == "" || id2 == "" || id1 == id2 {
		t.Fatalf("generated ids = %q, %q, want distinct non-empty", id1, id2)
	}
	if parent, _ := tree.Parent(id2); parent != gid {
		t.Errorf("Parent(%s) = %s, want %s", id2, parent, gid)
	}
	if parent, _ := tree.Parent(gid); parent != tree.RootID() {
		t.Errorf("Parent(group) = %s, want root", parent)
	}
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}

	root := tree.Node()
	if root.Group == nil || root.Group.ID != tree.RootID() || root.Group.LogicalOperator != types.And {
		t.Fatalf("Node() root = %+v, want AND group with root id", root)
	}
	if len(root.Group.Children) != 2 {
		t.Fatalf("Node() children = %d, want 2", len(root.Group.Children))
	}
	if root.Group.Children[0].ID() != id1 || root.Group.Children[1].ID() != gid {
		t.Errorf("Node() child order = %s, %s, want %s, %s", root.Group.Children[0].ID(), root.Group.Children[1].ID(), id1, gid)
	}
	inner := root.Group.Children[1].Group
	if inner == nil || inner.LogicalOperator != types.Or || len(inner.Children) != 1 || inner.Children[0].ID() != id2 {
		t.Errorf("Node() inner group = %+v, want OR group holding %s", inner, id2)
	}
}

func TestTree_AddUnderCondition(t *testing.T) {
	tree := NewTree()
	id, _ := tree.AddCondition("", types.Condition{Field: "name", Operator: types.OpContains, Value: types.Text("a")})

	if _, err := tree.AddCondition(id, types.Condition{Field: "email"}); !errors.Is(err, types.ErrNotAGroup) {
		t.Errorf("AddCondition(under condition) error = %v, want ErrNotAGroup", err)
	}
	if _, err := tree.AddGroup("missing", types.And); !errors.Is(err, types.ErrNodeNotFound) {
		t.Errorf("AddGroup(missing parent) error = %v, want ErrNodeNotFound", err)
	}
	if _, err := tree.AddGroup("", "XOR"); !errors.Is(err, types.ErrInvalidLogicalOperator) {
		t.Errorf("AddGroup(XOR) error = %v, want ErrInvalidLogicalOperator", err)
	}
	if _, err := tree.AddCondition("", types.Condition{ID: id, Field: "email"}); !errors.Is(err, types.ErrInvalidValue) {
		t.Errorf("AddCondition(duplicate id) error = %v, want ErrInvalidValue", err)
	}
}

func TestTree_RemoveSubtree(t *testing.T) {
	tree := NewTree()
	keep, _ := tree.AddCondition("", types.Condition{Field: "name", Operator: types.OpContains, Value: types.Text("a")})
	gid, _ := tree.AddGroup("", types.Or)
	inner, _ := tree.AddCondition(gid, types.Condition{Field: "email", Operator: types.OpContains, Value: types.Text("b")})
	nested, _ := tree.AddGroup(gid, types.And)
	deep, _ := tree.AddCondition(nested, types.Condition{Field: "phone", Operator: types.OpContains, Value: types.Text("5")})

	if err := tree.Remove(gid); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	for _, id := range []types.NodeID{gid, inner, nested, deep} {
		if _, err := tree.Parent(id); !errors.Is(err, types.ErrNodeNotFound) {
			t.Errorf("Parent(%s) after Remove error = %v, want ErrNodeNotFound", id, err)
		}
	}
	root := tree.Node()
	if len(root.Group.Children) != 1 || root.Group.Children[0].ID() != keep {
		t.Errorf("Node() after Remove = %+v, want only %s", root.Group.Children, keep)
	}

	if err := tree.Remove(tree.RootID()); !errors.Is(err, types.ErrInvalidValue) {
		t.Errorf("Remove(root) error = %v, want ErrInvalidValue", err)
	}
	if err := tree.Remove(gid); !errors.Is(err, types.ErrNodeNotFound) {
		t.Errorf("Remove(removed) error = %v, want ErrNodeNotFound", err)
	}
}

func TestTree_Updates(t *testing.T) {
	tree := NewTree()
	id, _ := tree.AddCondition("", types.Condition{Field: "invoices.daysLate", Operator: types.OpGreaterThan, Value: types.Number(5)})

	if err := tree.UpdateOperator(id, types.OpBetween); err != nil {
		t.Fatalf("UpdateOperator() error = %v", err)
	}
	hi := types.Number(30)
	if err := tree.UpdateValue(id, types.Number(10), &hi); err != nil {
		t.Fatalf("UpdateValue() error = %v", err)
	}
	hi = types.Number(99) // tree keeps its own copy

	c, err := tree.Condition(id)
	if err != nil {
		t.Fatalf("Condition() error = %v", err)
	}
	if c.Operator != types.OpBetween || c.Value.Number != 10 || c.SecondValue == nil || c.SecondValue.Number != 30 {
		t.Errorf("Condition() = %+v, want between 10..30", c)
	}

	if err := tree.SetField(id, "arBalance"); err != nil {
		t.Fatalf("SetField() error = %v", err)
	}
	if c, _ := tree.Condition(id); c.Field != "arBalance" {
		t.Errorf("Field = %s, want arBalance", c.Field)
	}

	if err := tree.UpdateOperator(id, "approximately"); !errors.Is(err, types.ErrInvalidOperator) {
		t.Errorf("UpdateOperator(unknown) error = %v, want ErrInvalidOperator", err)
	}
	if err := tree.UpdateValue(tree.RootID(), types.Text("x"), nil); !errors.Is(err, types.ErrNotACondition) {
		t.Errorf("UpdateValue(group) error = %v, want ErrNotACondition", err)
	}
	if err := tree.UpdateOperator("missing", types.OpEquals); !errors.Is(err, types.ErrNodeNotFound) {
		t.Errorf("UpdateOperator(missing) error = %v, want ErrNodeNotFound", err)
	}
}

func TestTree_RootOperatorSurvivesClear(t *testing.T) {
	tree := NewTree()
	_, _ = tree.AddCondition("", types.Condition{Field: "name", Operator: types.OpContains, Value: types.Text("a")})

	if err := tree.SetLogicalOperator("", types.Or); err != nil {
		t.Fatalf("SetLogicalOperator() error = %v", err)
	}
	rootID := tree.RootID()
	tree.Clear()

	if tree.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", tree.Len())
	}
	if op, _ := tree.LogicalOperator(""); op != types.Or {
		t.Errorf("LogicalOperator() after Clear = %s, want OR", op)
	}
	if tree.RootID() != rootID {
		t.Errorf("RootID() changed across Clear")
	}
}

func TestTree_LoadRoundTrip(t *testing.T) {
	src := `{
		"id": "root", "isGroup": true, "logicalOperator": "OR",
		"conditions": [
			{"id": "c1", "field": "accountGroup", "operator": "equals", "value": "VIP"},
			{"id": "g1", "isGroup": true, "logicalOperator": "AND", "conditions": [
				{"id": "c2", "field": "invoices.daysLate", "operator": "between", "value": 1, "secondValue": 30},
				{"field": "tags", "operator": "has_tag", "value": ["Recycling", "Paperless"]}
			]}
		]
	}`
	var node types.Node
	if err := json.Unmarshal([]byte(src), &node); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	tree := NewTree()
	if err := tree.Load(node); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tree.RootID() != "root" || tree.Len() != 3 {
		t.Fatalf("Load() root = %s, len = %d, want root/3", tree.RootID(), tree.Len())
	}
	if parent, _ := tree.Parent("c2"); parent != "g1" {
		t.Errorf("Parent(c2) = %s, want g1", parent)
	}

	out, err := json.Marshal(tree.Node())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var again types.Node
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("Unmarshal(round trip) error = %v", err)
	}
	inner := again.Group.Children[1].Group
	if again.Group.LogicalOperator != types.Or || inner == nil || len(inner.Children) != 2 {
		t.Fatalf("round trip = %s, want OR root with nested AND of 2", out)
	}
	tagCond := inner.Children[1].Condition
	if tagCond.ID == "" || tagCond.Value.Kind != types.KindSet || len(tagCond.Value.Set) != 2 {
		t.Errorf("round trip tag condition = %+v, want generated id and 2-element set", tagCond)
	}
}

func TestTree_LoadRejectsDuplicates(t *testing.T) {
	tree := NewTree()
	keep, _ := tree.AddCondition("", types.Condition{Field: "name", Operator: types.OpContains, Value: types.Text("a")})

	dup := types.GroupNode("r", types.And,
		types.ConditionNode(types.Condition{ID: "x", Field: "name", Operator: types.OpEquals, Value: types.Text("a")}),
		types.ConditionNode(types.Condition{ID: "x", Field: "email", Operator: types.OpEquals, Value: types.Text("b")}),
	)
	if err := tree.Load(dup); !errors.Is(err, types.ErrInvalidValue) {
		t.Fatalf("Load(duplicate ids) error = %v, want ErrInvalidValue", err)
	}
	if _, err := tree.Condition(keep); err != nil {
		t.Errorf("tree changed after failed Load: %v", err)
	}
}
