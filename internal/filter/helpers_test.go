package filter

import (
	"github.com/shopspring/decimal"
	"github.com/solatis/bulkmsg/internal/types"
)

func cond(field string, op types.Operator, v types.Value) types.Node {
	return types.ConditionNode(types.Condition{ID: types.NodeID(field + "-" + string(op)), Field: field, Operator: op, Value: v})
}

func between(field string, lo, hi types.Value) types.Node {
	return types.ConditionNode(types.Condition{ID: "between-" + types.NodeID(field), Field: field, Operator: types.OpBetween, Value: lo, SecondValue: &hi})
}

func and(children ...types.Node) types.Node {
	return types.GroupNode("and", types.And, children...)
}

func or(children ...types.Node) types.Node {
	return types.GroupNode("or", types.Or, children...)
}

// sampleCustomer returns a residential customer with one of everything.
func sampleCustomer() types.Customer {
	price := decimal.RequireFromString("30.50")
	return types.Customer{
		ID:           "c-1",
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "(555) 000-0001",
		Type:         types.CustomerResidential,
		Status:       types.StatusActive,
		Tags:         []string{"Recycling", "Paperless"},
		AccountGroup: "Standard",
		ARBalance:    decimal.RequireFromString("120.75"),
		BillGroup:    "Monthly",
		PricingZone:  "Zone A",
		Location:     types.Location{Address: "1 Elm St", City: "Springfield", State: "IL", Zip: "62701"},
		Services: []types.CustomerService{
			{
				ID: "s-1", Name: "Weekly Trash Pickup", Recurrence: "Weekly", BusinessLine: "Residential",
				Method: "Curbside", Material: "Trash", Price: decimal.RequireFromString("25.99"),
			},
			{
				ID: "s-2", Name: "Recycling Pickup", Recurrence: "Bi-Weekly", BusinessLine: "Residential",
				Method: "Curbside", Material: "Recycling", Price: price, ConfiguredPrice: &price,
				Fees: []types.Fee{{Name: "Environmental Fee", Amount: decimal.RequireFromString("3.25")}},
			},
		},
		Routes: []types.CustomerRoute{
			{ID: "r-1", Name: "Springfield North", DayOfWeek: "Monday", Services: []string{"s-1", "s-2"}},
		},
		Invoices: []types.CustomerInvoice{
			{ID: "i-1", Amount: decimal.RequireFromString("41.98"), DueDate: "2025-04-15", Status: types.InvoiceOverdue, DaysLate: 10},
		},
	}
}
