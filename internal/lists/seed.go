package lists

import (
	"github.com/solatis/bulkmsg/internal/types"
)

func seedCondition(id, field string, op types.Operator, v types.Value) *types.Node {
	n := types.GroupNode(types.NodeID("seed-"+id), types.And,
		types.ConditionNode(types.Condition{ID: types.NodeID("seed-" + id + "-1"), Field: field, Operator: op, Value: v}),
	)
	return &n
}

// Seeds returns the lists present before any user change. Counts are the
// published snapshot figures; membership is derived from the filters.
func Seeds() []types.CustomerList {
	all := types.GroupNode("seed-all", types.And)
	return []types.CustomerList{
		{ID: 1, Name: "All Customers", Count: 1248, Type: types.ListSystem, LastUpdated: "Auto-updated", Filter: &all},
		{ID: 2, Name: "Active Customers", Count: 876, Type: types.ListSystem, LastUpdated: "Auto-updated",
			Filter: seedCondition("active", "status", types.OpEquals, types.Text(string(types.StatusActive)))},
		{ID: 3, Name: "Commercial Clients", Count: 98, Type: types.ListCustom, LastUpdated: "2 days ago",
			Filter: seedCondition("commercial", "type", types.OpEquals, types.Text(string(types.CustomerCommercial)))},
		{ID: 4, Name: "Residential Clients", Count: 782, Type: types.ListCustom, LastUpdated: "2 days ago",
			Filter: seedCondition("residential", "type", types.OpEquals, types.Text(string(types.CustomerResidential)))},
		{ID: 5, Name: "New Customers", Count: 124, Type: types.ListSystem, LastUpdated: "Auto-updated",
			Filter: seedCondition("new", "tags", types.OpHasTag, types.Text("New Customer"))},
		{ID: 6, Name: "Premium Subscribers", Count: 67, Type: types.ListCustom, LastUpdated: "1 week ago",
			Filter: seedCondition("premium", "accountGroup", types.OpEquals, types.Text("VIP"))},
		{ID: 7, Name: "Quarterly Pickup", Count: 215, Type: types.ListCustom, LastUpdated: "3 days ago",
			Filter: seedCondition("quarterly", "services.recurrence", types.OpEquals, types.Text("Quarterly"))},
	}
}
