package filter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/solatis/bulkmsg/internal/types"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    Path
		wantErr bool
	}{
		{name: "scalar", field: "accountGroup", want: Path{"accountGroup"}},
		{name: "nested", field: "location.city", want: Path{"location", "city"}},
		{name: "two projections", field: "services.fees.name", want: Path{"services", "fees", "name"}},
		{name: "empty", field: "", wantErr: true},
		{name: "blank", field: "   ", wantErr: true},
		{name: "empty segment", field: "location..city", wantErr: true},
		{name: "trailing dot", field: "location.", wantErr: true},
		{name: "too deep", field: strings.Repeat("a.", MaxPathDepth) + "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.field)
			if tt.wantErr {
				if !errors.Is(err, types.ErrFieldNotFound) {
					t.Fatalf("ParsePath() error = %v, want ErrFieldNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath() error = %v, want nil", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePath() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Test normal path resolution cases
func TestResolve_Normal(t *testing.T) {
	c := sampleCustomer()

	tests := []struct {
		name          string
		field         string
		want          []any
		wantProjected bool
	}{
		{name: "scalar", field: "accountGroup", want: []any{"Standard"}},
		{name: "enum as string", field: "type", want: []any{"residential"}},
		{name: "nested object", field: "location.city", want: []any{"Springfield"}},
		{name: "decimal", field: "arBalance", want: []any{decimal.RequireFromString("120.75")}},
		{name: "tags returned whole", field: "tags", want: []any{[]string{"Recycling", "Paperless"}}},
		{
			name:          "projection over services",
			field:         "services.material",
			want:          []any{"Trash", "Recycling"},
			wantProjected: true,
		},
		{
			name:          "nested projection over fees",
			field:         "services.fees.name",
			want:          []any{"Environmental Fee"},
			wantProjected: true,
		},
		{
			name:          "projection reaching null",
			field:         "services.configuredPrice",
			want:          []any{nil, decimal.RequireFromString("30.50")},
			wantProjected: true,
		},
		{name: "invoice int", field: "invoices.daysLate", want: []any{10}, wantProjected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ParsePath(tt.field)
			if err != nil {
				t.Fatalf("ParsePath() error = %v", err)
			}
			result, err := Resolve(path, &c)
			if err != nil {
				t.Fatalf("Resolve() error = %v, want nil", err)
			}
			if result.Projected != tt.wantProjected {
				t.Errorf("Resolve() Projected = %v, want %v", result.Projected, tt.wantProjected)
			}
			if len(result.Values) != len(tt.want) {
				t.Fatalf("Resolve() Values = %v, want %v", result.Values, tt.want)
			}
			for i := range tt.want {
				if d, ok := tt.want[i].(decimal.Decimal); ok {
					got, ok := result.Values[i].(decimal.Decimal)
					if !ok || !got.Equal(d) {
						t.Errorf("Resolve() Values[%d] = %v, want %v", i, result.Values[i], d)
					}
					continue
				}
				if !reflect.DeepEqual(result.Values[i], tt.want[i]) {
					t.Errorf("Resolve() Values[%d] = %v, want %v", i, result.Values[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolve_EmptyCollection(t *testing.T) {
	c := sampleCustomer()
	c.Services = nil

	result, err := Resolve(Path{"services", "material"}, &c)
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if len(result.Values) != 0 {
		t.Errorf("Resolve() Values = %v, want none", result.Values)
	}
	if !result.Projected {
		t.Errorf("Resolve() Projected = false, want true")
	}
}

func TestResolve_NotFound(t *testing.T) {
	c := sampleCustomer()

	tests := []struct {
		name string
		path Path
	}{
		{name: "unknown top-level field", path: Path{"favouriteColour"}},
		{name: "unknown nested field", path: Path{"location", "country"}},
		{name: "unknown projected field", path: Path{"services", "colour"}},
		{name: "descend into scalar", path: Path{"name", "first"}},
		{name: "descend into tags", path: Path{"tags", "0"}},
		{name: "empty path", path: Path{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.path, &c)
			if !errors.Is(err, types.ErrFieldNotFound) {
				t.Errorf("Resolve() error = %v, want ErrFieldNotFound", err)
			}
		})
	}
}

// Property: Resolve never panics on arbitrary paths
func TestResolve_PropertyNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	c := sampleCustomer()
	segments := gen.OneConstOf("services", "routes", "invoices", "fees", "name", "tags", "location", "city", "x", "")

	properties.Property("resolve never panics", prop.ForAll(
		func(segs []string) bool {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Resolve panicked on %v: %v", segs, r)
				}
			}()
			_, _ = Resolve(Path(segs), &c)
			return true
		},
		gen.SliceOfN(4, segments, reflect.TypeOf("")),
	))

	properties.TestingRun(t)
}
