package filter

import (
	"errors"
	"testing"

	"github.com/solatis/bulkmsg/internal/types"
)

func TestCatalog_EveryFieldResolves(t *testing.T) {
	c := sampleCustomer()
	for _, d := range Catalog("") {
		path, err := ParsePath(d.Field)
		if err != nil {
			t.Fatalf("%s: ParsePath(%s) error = %v", d.ID, d.Field, err)
		}
		if _, err := Resolve(path, &c); err != nil {
			t.Errorf("%s: Resolve(%s) error = %v", d.ID, d.Field, err)
		}
		if d.Kind == "" {
			t.Errorf("%s: field %s has no kind", d.ID, d.Field)
		}
		for _, op := range d.Operators {
			if err := CheckOperator(d.Field, op); err != nil {
				t.Errorf("%s: catalog offers %s but CheckOperator() = %v", d.ID, op, err)
			}
		}
	}
}

func TestCatalog_ByCategory(t *testing.T) {
	total := 0
	for _, cat := range Categories {
		defs := Catalog(cat)
		if len(defs) == 0 {
			t.Errorf("Catalog(%s) is empty", cat)
		}
		for _, d := range defs {
			if d.Category != cat {
				t.Errorf("Catalog(%s) returned %s from %s", cat, d.ID, d.Category)
			}
		}
		total += len(defs)
	}
	if total != len(Catalog("")) {
		t.Errorf("category totals = %d, want %d", total, len(Catalog("")))
	}

	if d, ok := LookupDef("invoice-days-late"); !ok || d.Field != "invoices.daysLate" {
		t.Errorf("LookupDef(invoice-days-late) = %+v, %v", d, ok)
	}
}

func TestCheckOperator(t *testing.T) {
	tests := []struct {
		field   string
		op      types.Operator
		wantErr error
	}{
		{field: "tags", op: types.OpHasTag},
		{field: "tags", op: types.OpContains, wantErr: types.ErrInvalidOperator},
		{field: "invoices.daysLate", op: types.OpBetween},
		{field: "invoices.daysLate", op: types.OpStartsWith, wantErr: types.ErrInvalidOperator},
		{field: "invoices.dueDate", op: types.OpBefore},
		{field: "services.configuredPrice", op: types.OpIsEmpty},
		{field: "accountGroup", op: types.OpEquals},
		{field: "shoeSize", op: types.OpEquals, wantErr: types.ErrFieldNotFound},
	}

	for _, tt := range tests {
		err := CheckOperator(tt.field, tt.op)
		if tt.wantErr == nil && err != nil {
			t.Errorf("CheckOperator(%s, %s) = %v, want nil", tt.field, tt.op, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("CheckOperator(%s, %s) = %v, want %v", tt.field, tt.op, err, tt.wantErr)
		}
	}
}

func TestDefaultOperator(t *testing.T) {
	tests := map[string]types.Operator{
		"accountGroup":             types.OpEquals,
		"invoices.daysLate":        types.OpGreaterThan,
		"routes.name":              types.OpContains,
		"tags":                     types.OpHasTag,
		"services.configuredPrice": types.OpIsNotEmpty,
	}
	for field, want := range tests {
		got, err := DefaultOperator(field)
		if err != nil || got != want {
			t.Errorf("DefaultOperator(%s) = %s, %v, want %s", field, got, err, want)
		}
	}
	if _, err := DefaultOperator("unknown"); !errors.Is(err, types.ErrFieldNotFound) {
		t.Errorf("DefaultOperator(unknown) error = %v, want ErrFieldNotFound", err)
	}
}
