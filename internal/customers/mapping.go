package customers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/solatis/bulkmsg/internal/types"
)

// Feed column names.
const (
	colName             = "Name"
	colEmail            = "Email"
	colPhone            = "Phone"
	colType             = "Type"
	colTags             = "Tags"
	colAccountGroup     = "Account Group"
	colARBalance        = "AR Balance"
	colBillGroup        = "Bill Group"
	colPricingZone      = "Pricing Zone"
	colAccountCity      = "Account City"
	colAccountState     = "Account State"
	colLocationState    = "Location State"
	colLocationZip      = "Location Zip"
	colServiceName      = "Service Name"
	colPricedServices   = "Priced Services"
	colRecurrence       = "Service Recurrence"
	colBusinessLine     = "Business Line"
	colMethod           = "Method"
	colMaterial         = "Material"
	colConfiguredPrice  = "Configured Service Price"
	colFees             = "Fees"
	colRouteName        = "Route Name"
	colRouteDayOfWeek   = "Route Day of Week"
	colNumberOfDaysLate = "Number of Days Late"
)

var (
	defaultServicePrice  = decimal.RequireFromString("25.99")
	defaultInvoiceAmount = decimal.RequireFromString("41.98")
)

// DefaultDueDate is the due date given to every synthesized invoice.
const DefaultDueDate = "2025-04-15"

// MapRows converts feed rows to customers. Missing columns fall back to
// fixed defaults so every customer is fully populated.
func MapRows(rows []Row) []types.Customer {
	out := make([]types.Customer, len(rows))
	for i, row := range rows {
		out[i] = mapRow(i, row)
	}
	return out
}

func mapRow(index int, r Row) types.Customer {
	n := index + 1
	name := or(r[colName], fmt.Sprintf("Customer %d", n))
	serviceID := fmt.Sprintf("s-%d-1", index)

	service := types.CustomerService{
		ID:           serviceID,
		Name:         or(r[colServiceName], r[colPricedServices], "Weekly Trash Pickup"),
		Recurrence:   or(r[colRecurrence], "Weekly"),
		BusinessLine: or(r[colBusinessLine], "Residential"),
		Method:       or(r[colMethod], "Curbside"),
		Material:     or(r[colMaterial], "Trash"),
		Price:        defaultServicePrice,
		Fees:         []types.Fee{},
	}
	if price, ok := parseAmount(r[colConfiguredPrice]); ok {
		service.Price = price
		service.ConfiguredPrice = &price
	}
	if r[colFees] != "" {
		amount, _ := parseAmount(r[colFees])
		service.Fees = append(service.Fees, types.Fee{Name: "Environmental Fee", Amount: amount})
	}

	balance, hasBalance := parseAmount(r[colARBalance])
	invoiceAmount := defaultInvoiceAmount
	if hasBalance {
		invoiceAmount = balance
	}

	daysLate := parseDays(r[colNumberOfDaysLate])
	invoiceStatus := types.InvoiceUnpaid
	if daysLate > 0 {
		invoiceStatus = types.InvoiceOverdue
	}

	customerType := types.CustomerResidential
	if strings.EqualFold(r[colType], string(types.CustomerCommercial)) {
		customerType = types.CustomerCommercial
	}

	tags := splitTags(r[colTags])
	if len(tags) == 0 {
		tags = []string{"New Customer"}
	}

	return types.Customer{
		ID:           fmt.Sprintf("csv-%d", n),
		Name:         name,
		Email:        or(r[colEmail], fmt.Sprintf("customer%d@example.com", n)),
		Phone:        or(r[colPhone], fmt.Sprintf("(555) 000-%04d", index)),
		Type:         customerType,
		Status:       types.StatusActive,
		LastOrder:    "2 days ago",
		Tags:         tags,
		AccountGroup: or(r[colAccountGroup], "Standard"),
		ARBalance:    balance,
		BillGroup:    or(r[colBillGroup], "Monthly"),
		PricingZone:  or(r[colPricingZone], "Zone A"),
		Location: types.Location{
			Address: "123 Main St",
			City:    or(r[colAccountCity], "Springfield"),
			State:   or(r[colAccountState], r[colLocationState], "IL"),
			Zip:     or(r[colLocationZip], "62701"),
		},
		Services: []types.CustomerService{service},
		Routes: []types.CustomerRoute{{
			ID:        fmt.Sprintf("r-%d-1", index),
			Name:      or(r[colRouteName], "Springfield North"),
			DayOfWeek: or(r[colRouteDayOfWeek], "Monday"),
			Services:  []string{serviceID},
		}},
		Invoices: []types.CustomerInvoice{{
			ID:       fmt.Sprintf("i-%d-1", index),
			Amount:   invoiceAmount,
			DueDate:  DefaultDueDate,
			Status:   invoiceStatus,
			DaysLate: daysLate,
		}},
		Notes: "Customer notes for " + name,
	}
}

// or returns the first non-empty value.
func or(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseAmount reads a currency cell. Zero and unparsable cells report false.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}
	return d, true
}

// maxDaysLate caps the days late column so huge feed values stay positive.
const maxDaysLate = math.MaxInt32

// parseDays reads a whole number of days; fractions are truncated, values
// above maxDaysLate are capped and anything unparsable, NaN or negative is 0.
func parseDays(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return min(max(n, 0), maxDaysLate)
	}
	f, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) && f > 0 {
		return maxDaysLate
	}
	if err != nil || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f >= maxDaysLate {
		return maxDaysLate
	}
	return int(f)
}

// splitTags splits a semicolon separated tag cell.
func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ";") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
