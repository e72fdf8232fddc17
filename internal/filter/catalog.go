// internal/filter/catalog.go
package filter

import (
	"fmt"
	"strings"

	"github.com/solatis/bulkmsg/internal/types"
)

/*
 * Filter catalog.
 *
 * Describes every filter the UI offers, grouped by campaign category, and
 * the customer schema the evaluator accepts:
 *   - fieldKinds: every filterable leaf path and its input kind
 *   - kindOperators: which operators apply to each kind, default first
 *   - schemaPaths: fieldKinds plus collection prefixes and id leaves
 *
 * Compile rejects paths outside schemaPaths. Operator applicability is
 * enforced by the session when a condition is added or edited, not by the
 * evaluator.
 */

// Category groups filters and message templates by campaign purpose.
type Category string

const (
	CategoryInvoiceReminders Category = "Invoice Reminders"
	CategoryRouteChanges     Category = "Route Changes"
	CategoryPriceChanges     Category = "Price/Rate Changes"
	CategoryOfficeNotes      Category = "General Office Notes"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryInvoiceReminders,
	CategoryRouteChanges,
	CategoryPriceChanges,
	CategoryOfficeNotes,
}

// Kind is the input kind of a filterable field.
type Kind string

const (
	KindText     Kind = "text"
	KindSelect   Kind = "multiSelect"
	KindNumber   Kind = "number"
	KindTags     Kind = "tags"
	KindDate     Kind = "date"
	KindPresence Kind = "boolean"
)

// kindOperators is the operator applicability table. The first entry is the
// default for a newly added condition.
var kindOperators = map[Kind][]types.Operator{
	KindText:     {types.OpContains, types.OpEquals, types.OpStartsWith, types.OpEndsWith, types.OpIsEmpty, types.OpIsNotEmpty},
	KindSelect:   {types.OpEquals, types.OpIsEmpty, types.OpIsNotEmpty},
	KindNumber:   {types.OpGreaterThan, types.OpLessThan, types.OpBetween, types.OpIsEmpty, types.OpIsNotEmpty},
	KindTags:     {types.OpHasTag, types.OpIsEmpty, types.OpIsNotEmpty},
	KindDate:     {types.OpBefore, types.OpAfter, types.OpBetween, types.OpIsEmpty, types.OpIsNotEmpty},
	KindPresence: {types.OpIsNotEmpty, types.OpIsEmpty},
}

// fieldKinds covers every path the resolver understands.
var fieldKinds = map[string]Kind{
	"name":                     KindText,
	"email":                    KindText,
	"phone":                    KindText,
	"type":                     KindSelect,
	"status":                   KindSelect,
	"lastOrder":                KindText,
	"notes":                    KindText,
	"tags":                     KindTags,
	"accountGroup":             KindSelect,
	"arBalance":                KindNumber,
	"billGroup":                KindSelect,
	"pricingZone":              KindSelect,
	"location.address":         KindText,
	"location.city":            KindText,
	"location.state":           KindText,
	"location.zip":             KindText,
	"services.name":            KindText,
	"services.recurrence":      KindSelect,
	"services.businessLine":    KindSelect,
	"services.method":          KindSelect,
	"services.material":        KindSelect,
	"services.price":           KindNumber,
	"services.configuredPrice": KindPresence,
	"services.fees.name":       KindText,
	"services.fees.amount":     KindNumber,
	"routes.name":              KindText,
	"routes.dayOfWeek":         KindSelect,
	"invoices.amount":          KindNumber,
	"invoices.dueDate":         KindDate,
	"invoices.status":          KindSelect,
	"invoices.daysLate":        KindNumber,
}

// schemaPaths is every path Resolve can reach on a Customer.
var schemaPaths = func() map[string]bool {
	paths := map[string]bool{
		"id":              true,
		"services.id":     true,
		"routes.id":       true,
		"routes.services": true,
		"invoices.id":     true,
	}
	for field := range fieldKinds {
		segs := strings.Split(field, ".")
		for i := 1; i <= len(segs); i++ {
			paths[strings.Join(segs[:i], ".")] = true
		}
	}
	return paths
}()

// KnownField reports whether field names a path in the customer schema.
func KnownField(field string) bool {
	return schemaPaths[field]
}

// FieldDef describes one filter offered in the UI.
type FieldDef struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Category  Category         `json:"category"`
	Kind      Kind             `json:"type"`
	Field     string           `json:"field"`
	Operators []types.Operator `json:"operators"`
	Options   []string         `json:"options,omitempty"`
}

var (
	accountGroups = []string{"VIP", "Standard", "New", "Delinquent", "Seasonal"}
	billGroups    = []string{"Monthly", "Quarterly", "Annual", "Pre-paid", "Custom"}
	pricingZones  = []string{"Zone A", "Zone B", "Zone C", "Zone D"}
	weekdays      = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	tagOptions    = []string{
		"New Customer", "Recycling", "Paperless", "Large Account", "Multi-Location",
		"Former Customer", "Hazardous Waste", "Yard Waste", "E-Waste", "Municipal", "Seasonal",
	}
)

func def(id, label string, cat Category, field string, ops []types.Operator, options ...string) FieldDef {
	kind := fieldKinds[field]
	if ops == nil {
		ops = kindOperators[kind]
	}
	return FieldDef{ID: id, Label: label, Category: cat, Kind: kind, Field: field, Operators: ops, Options: options}
}

var (
	textEqContains = []types.Operator{types.OpContains, types.OpEquals}
	textEquals     = []types.Operator{types.OpEquals}
	numberRange    = []types.Operator{types.OpGreaterThan, types.OpLessThan, types.OpBetween}
)

var catalog = []FieldDef{
	def("invoice-account-groups", "Account Groups", CategoryInvoiceReminders, "accountGroup", nil, accountGroups...),
	def("invoice-days-late", "# of Days Late", CategoryInvoiceReminders, "invoices.daysLate", numberRange),
	def("invoice-ar-balance", "AR Balance", CategoryInvoiceReminders, "arBalance", numberRange),
	def("invoice-bill-group", "Bill Group", CategoryInvoiceReminders, "billGroup", nil, billGroups...),
	def("invoice-tags", "Tags", CategoryInvoiceReminders, "tags", nil, tagOptions...),

	def("route-name", "Route Name", CategoryRouteChanges, "routes.name", textEqContains),
	def("route-day-of-week", "Route Day of Week", CategoryRouteChanges, "routes.dayOfWeek", nil, weekdays...),
	def("route-service-name", "Service Name", CategoryRouteChanges, "services.name", textEqContains),
	def("route-service-recurrence", "Service Recurrence", CategoryRouteChanges, "services.recurrence", nil, "Weekly", "Bi-Weekly", "Monthly", "Quarterly", "Annually"),
	def("route-business-line", "Business Line", CategoryRouteChanges, "services.businessLine", nil, "Residential", "Commercial", "Industrial", "Municipal"),
	def("route-method", "Method", CategoryRouteChanges, "services.method", nil, "Curbside", "Driveway", "Alley", "Container"),
	def("route-material", "Material", CategoryRouteChanges, "services.material", nil, "Trash", "Recycling", "Yard Waste", "Bulk", "Hazardous"),
	def("route-bill-group", "Bill Group", CategoryRouteChanges, "billGroup", nil, billGroups...),
	def("route-tags", "Tags", CategoryRouteChanges, "tags", nil, tagOptions...),
	def("route-location-state", "Location State", CategoryRouteChanges, "location.state", textEquals),
	def("route-location-zip", "Location ZIP", CategoryRouteChanges, "location.zip", []types.Operator{types.OpEquals, types.OpContains}),

	def("price-bill-group", "Bill Group", CategoryPriceChanges, "billGroup", nil, billGroups...),
	def("price-priced-services", "Priced Services", CategoryPriceChanges, "services.name", textEqContains),
	def("price-configured-service-price", "Configured Service Price", CategoryPriceChanges, "services.configuredPrice", nil),
	def("price-fees", "Fees", CategoryPriceChanges, "services.fees.name", textEqContains),
	def("price-pricing-zone", "Pricing Zone", CategoryPriceChanges, "pricingZone", nil, pricingZones...),
	def("price-tags", "Tags", CategoryPriceChanges, "tags", nil, tagOptions...),
	def("price-location-state", "Location State", CategoryPriceChanges, "location.state", textEquals),
	def("price-location-zip", "Location ZIP", CategoryPriceChanges, "location.zip", []types.Operator{types.OpEquals, types.OpContains}),

	def("notes-account-groups", "Account Groups", CategoryOfficeNotes, "accountGroup", nil, accountGroups...),
	def("notes-bill-group", "Bill Group", CategoryOfficeNotes, "billGroup", nil, billGroups...),
	def("notes-tags", "Tags", CategoryOfficeNotes, "tags", nil, tagOptions...),
	def("notes-account-city", "Account City", CategoryOfficeNotes, "location.city", []types.Operator{types.OpEquals, types.OpContains}),
	def("notes-account-state", "Account State", CategoryOfficeNotes, "location.state", textEquals),
	def("notes-pricing-zone", "Pricing Zone", CategoryOfficeNotes, "pricingZone", nil, pricingZones...),
}

// Catalog returns the filter definitions, optionally restricted to one
// category ("" for all).
func Catalog(cat Category) []FieldDef {
	out := make([]FieldDef, 0, len(catalog))
	for _, d := range catalog {
		if cat == "" || d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// LookupDef returns the catalog entry with the given id.
func LookupDef(id string) (FieldDef, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return FieldDef{}, false
}

// FieldKind returns the input kind of a field path.
func FieldKind(field string) (Kind, bool) {
	k, ok := fieldKinds[field]
	return k, ok
}

// DefaultOperator returns the operator a new condition on field starts with.
func DefaultOperator(field string) (types.Operator, error) {
	kind, ok := fieldKinds[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrFieldNotFound, field)
	}
	return kindOperators[kind][0], nil
}

// CheckOperator reports whether op may be applied to field.
// Returns ErrFieldNotFound for unknown fields and ErrInvalidOperator when
// the operator does not apply to the field's kind.
func CheckOperator(field string, op types.Operator) error {
	kind, ok := fieldKinds[field]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrFieldNotFound, field)
	}
	for _, allowed := range kindOperators[kind] {
		if allowed == op {
			return nil
		}
	}
	return fmt.Errorf("%w: %s does not apply to %s", types.ErrInvalidOperator, op, field)
}
