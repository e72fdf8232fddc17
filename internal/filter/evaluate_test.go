package filter

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/solatis/bulkmsg/internal/types"
)

func TestMatch_Operators(t *testing.T) {
	c := sampleCustomer()

	tests := []struct {
		name string
		node types.Node
		want bool
	}{
		{name: "contains case-insensitive", node: cond("name", types.OpContains, types.Text("DOE")), want: true},
		{name: "contains miss", node: cond("name", types.OpContains, types.Text("smith")), want: false},
		{name: "equals case-insensitive", node: cond("accountGroup", types.OpEquals, types.Text("standard")), want: true},
		{name: "equals is exact", node: cond("accountGroup", types.OpEquals, types.Text("stand")), want: false},
		{name: "equals any of set", node: cond("billGroup", types.OpEquals, types.Set("Annual", "Monthly")), want: true},
		{name: "equals none of set", node: cond("billGroup", types.OpEquals, types.Set("Annual", "Custom")), want: false},
		{name: "starts_with", node: cond("email", types.OpStartsWith, types.Text("JANE@")), want: true},
		{name: "ends_with", node: cond("email", types.OpEndsWith, types.Text(".com")), want: true},
		{name: "greater_than decimal", node: cond("arBalance", types.OpGreaterThan, types.Number(100)), want: true},
		{name: "greater_than text operand", node: cond("arBalance", types.OpGreaterThan, types.Text("200")), want: false},
		{name: "less_than", node: cond("arBalance", types.OpLessThan, types.Number(200)), want: true},
		{name: "greater_than non-numeric operand", node: cond("arBalance", types.OpGreaterThan, types.Text("lots")), want: false},
		{name: "greater_than non-numeric field", node: cond("name", types.OpGreaterThan, types.Number(0)), want: false},
		{name: "has_tag case-insensitive", node: cond("tags", types.OpHasTag, types.Text("recycling")), want: true},
		{name: "has_tag set", node: cond("tags", types.OpHasTag, types.Set("Municipal", "PAPERLESS")), want: true},
		{name: "has_tag miss", node: cond("tags", types.OpHasTag, types.Text("Municipal")), want: false},
		{name: "has_tag needs a tag list", node: cond("name", types.OpHasTag, types.Text("jane doe")), want: false},
		{name: "before", node: cond("invoices.dueDate", types.OpBefore, types.Date(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))), want: true},
		{name: "after", node: cond("invoices.dueDate", types.OpAfter, types.Text("2025-05-01")), want: false},
		{name: "after same day", node: cond("invoices.dueDate", types.OpAfter, types.Text("2025-04-15")), want: false},
		{name: "is_empty on blank notes", node: cond("notes", types.OpIsEmpty, types.Null()), want: true},
		{name: "is_not_empty", node: cond("name", types.OpIsNotEmpty, types.Null()), want: true},
		{name: "is_empty on tags", node: cond("tags", types.OpIsEmpty, types.Null()), want: false},
		{name: "unknown field never matches", node: cond("colour", types.OpIsEmpty, types.Null()), want: false},
		{name: "unknown operator never matches", node: cond("name", types.Operator("sounds_like"), types.Text("jane")), want: false},
		{name: "missing operand never matches", node: cond("arBalance", types.OpGreaterThan, types.Null()), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(&c, tt.node); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_BetweenInclusive(t *testing.T) {
	c := sampleCustomer() // daysLate = 10

	tests := []struct {
		name   string
		lo, hi types.Value
		want   bool
	}{
		{name: "min bound", lo: types.Number(10), hi: types.Number(20), want: true},
		{name: "max bound", lo: types.Number(1), hi: types.Number(10), want: true},
		{name: "inside", lo: types.Number(5), hi: types.Number(15), want: true},
		{name: "below", lo: types.Number(11), hi: types.Number(20), want: false},
		{name: "above", lo: types.Number(1), hi: types.Number(9), want: false},
		{name: "text bounds", lo: types.Text("10"), hi: types.Text("10"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(&c, between("invoices.daysLate", tt.lo, tt.hi)); got != tt.want {
				t.Errorf("Match(between %v..%v) = %v, want %v", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestMatch_BetweenDates(t *testing.T) {
	c := sampleCustomer() // dueDate = 2025-04-15

	if !Match(&c, between("invoices.dueDate", types.Text("2025-04-15"), types.Text("2025-04-30"))) {
		t.Errorf("Match(between dates at min bound) = false, want true")
	}
	if Match(&c, between("invoices.dueDate", types.Text("2025-04-16"), types.Text("2025-04-30"))) {
		t.Errorf("Match(between dates after field) = true, want false")
	}
}

func TestMatch_BetweenMissingSecondValue(t *testing.T) {
	c := sampleCustomer()
	node := types.ConditionNode(types.Condition{ID: "b", Field: "invoices.daysLate", Operator: types.OpBetween, Value: types.Number(0)})

	if Match(&c, node) {
		t.Errorf("Match(between without secondValue) = true, want false")
	}
}

func TestMatch_ExistentialProjection(t *testing.T) {
	c := sampleCustomer()
	services := c.Services
	services[0].Material = "Trash"
	services[1].Material = "Recycling"

	if !Match(&c, cond("services.material", types.OpEquals, types.Text("Recycling"))) {
		t.Errorf("Match(services.material equals Recycling) = false, want true")
	}
	if !Match(&c, cond("services.fees.name", types.OpContains, types.Text("environmental"))) {
		t.Errorf("Match(services.fees.name contains environmental) = false, want true")
	}

	c.Services = nil
	for _, node := range []types.Node{
		cond("services.material", types.OpEquals, types.Text("Recycling")),
		cond("services.name", types.OpContains, types.Text("")),
		cond("services.configuredPrice", types.OpIsEmpty, types.Null()),
		cond("services.configuredPrice", types.OpIsNotEmpty, types.Null()),
	} {
		if Match(&c, node) {
			t.Errorf("Match(%s %s) on customer without services = true, want false", node.Condition.Field, node.Condition.Operator)
		}
	}
}

func TestMatch_ConfiguredPricePresence(t *testing.T) {
	c := sampleCustomer()
	c.Services = c.Services[:1] // only the service without an override

	if !Match(&c, cond("services.configuredPrice", types.OpIsEmpty, types.Null())) {
		t.Errorf("Match(configuredPrice is_empty) = false, want true")
	}
	if Match(&c, cond("services.configuredPrice", types.OpIsNotEmpty, types.Null())) {
		t.Errorf("Match(configuredPrice is_not_empty) = true, want false")
	}
}

func TestMatch_EmptyGroups(t *testing.T) {
	c := sampleCustomer()

	if !Match(&c, types.GroupNode("g", types.And)) {
		t.Errorf("Match(empty AND) = false, want true")
	}
	if Match(&c, types.GroupNode("g", types.Or)) {
		t.Errorf("Match(empty OR) = true, want false")
	}
	if !Match(&c, types.Node{}) {
		t.Errorf("Match(zero node) = false, want true")
	}
	if !Match(&c, types.GroupNode("g", "")) {
		t.Errorf("Match(group without operator) = false, want AND semantics")
	}
}

func TestMatch_NestedGroups(t *testing.T) {
	c := sampleCustomer()

	// Standard AND (VIP OR Recycling tag)
	node := and(
		cond("accountGroup", types.OpEquals, types.Text("Standard")),
		or(
			cond("accountGroup", types.OpEquals, types.Text("VIP")),
			cond("tags", types.OpHasTag, types.Text("Recycling")),
		),
	)
	if !Match(&c, node) {
		t.Errorf("Match(nested) = false, want true")
	}

	node = and(
		cond("accountGroup", types.OpEquals, types.Text("Standard")),
		or(
			cond("accountGroup", types.OpEquals, types.Text("VIP")),
			types.GroupNode("inner", types.Or),
		),
	)
	if Match(&c, node) {
		t.Errorf("Match(nested with empty OR) = true, want false")
	}
}

func TestMatch_BareConditionRoot(t *testing.T) {
	c := sampleCustomer()
	if !Match(&c, cond("location.state", types.OpEquals, types.Text("il"))) {
		t.Errorf("Match(bare condition) = false, want true")
	}
}

func TestMatch_DelinquentScenario(t *testing.T) {
	customers := []types.Customer{
		{ID: "a", AccountGroup: "Delinquent", Invoices: []types.CustomerInvoice{{ID: "i1", DaysLate: 10}}},
		{ID: "b", AccountGroup: "VIP", Invoices: []types.CustomerInvoice{{ID: "i2", DaysLate: 0}}},
	}
	node := and(
		cond("accountGroup", types.OpEquals, types.Text("Delinquent")),
		cond("invoices.daysLate", types.OpGreaterThan, types.Number(5)),
	)

	got := Apply(customers, Compile(node), Query{})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Apply() = %v, want only customer a", IDs(got))
	}
}

func TestMatch_RootOrUnion(t *testing.T) {
	customers := []types.Customer{
		{ID: "vip", AccountGroup: "VIP"},
		{ID: "seasonal", AccountGroup: "Seasonal"},
		{ID: "standard", AccountGroup: "Standard"},
	}
	node := or(
		cond("accountGroup", types.OpEquals, types.Text("VIP")),
		cond("accountGroup", types.OpEquals, types.Text("Seasonal")),
	)

	got := IDs(Apply(customers, Compile(node), Query{}))
	if len(got) != 2 || got[0] != "vip" || got[1] != "seasonal" {
		t.Errorf("Apply(OR) = %v, want [vip seasonal]", got)
	}
}

func TestMatch_InvalidChildDoesNotAbortGroup(t *testing.T) {
	c := sampleCustomer()
	node := or(
		cond("no.such.field", types.OpEquals, types.Text("x")),
		cond("name", types.OpContains, types.Text("jane")),
	)
	if !Match(&c, node) {
		t.Errorf("Match(OR with invalid child) = false, want true")
	}
}

// Property: evaluation is pure, the same tree gives the same verdict
func TestMatch_PropertyPure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated evaluation is stable", prop.ForAll(
		func(daysLate int, threshold int, useOr bool) bool {
			c := sampleCustomer()
			c.Invoices[0].DaysLate = daysLate
			op := types.And
			if useOr {
				op = types.Or
			}
			node := types.GroupNode("root", op,
				cond("invoices.daysLate", types.OpGreaterThan, types.Number(float64(threshold))),
				cond("tags", types.OpHasTag, types.Text("recycling")),
			)
			prog := Compile(node)
			first := prog.Matches(&c)
			for i := 0; i < 3; i++ {
				if prog.Matches(&c) != first || Match(&c, node) != first {
					return false
				}
			}
			return c.Invoices[0].DaysLate == daysLate
		},
		gen.IntRange(0, 120),
		gen.IntRange(-10, 130),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Property: greater_than agrees with float comparison for any balance
func TestMatch_PropertyGreaterThan(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("greater_than matches numeric ordering", prop.ForAll(
		func(cents int64, threshold float64) bool {
			c := sampleCustomer()
			c.ARBalance = decimal.New(cents, -2)
			got := Match(&c, cond("arBalance", types.OpGreaterThan, types.Number(threshold)))
			return got == (c.ARBalance.InexactFloat64() > threshold)
		},
		gen.Int64Range(-100000, 100000),
		gen.Float64Range(-1000, 1000),
	))

	properties.TestingRun(t)
}
