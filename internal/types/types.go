// Package types provides domain models shared across bulkmsg components.
//
// Customer records, filter trees and customer lists live here so that the
// filter engine, the list store and the transport layers agree on one
// representation. ID utilities in ids.go are the only part that imports uuid.
package types

import (
	"github.com/shopspring/decimal"
)

// CustomerType distinguishes residential from commercial accounts.
type CustomerType string

const (
	CustomerResidential CustomerType = "residential"
	CustomerCommercial  CustomerType = "commercial"
)

// CustomerStatus is the account status.
type CustomerStatus string

const (
	StatusActive   CustomerStatus = "active"
	StatusInactive CustomerStatus = "inactive"
)

// InvoiceStatus is the payment state of a single invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "Paid"
	InvoiceUnpaid  InvoiceStatus = "Unpaid"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// Record is implemented by every entity a dotted field path can walk through.
// Field reports ok=false for keys the entity does not define; a defined key
// may still hold a nil value (e.g. an unset configured price).
type Record interface {
	Field(key string) (any, bool)
}

// Location is the service address of a customer.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Field implements Record.
func (l Location) Field(key string) (any, bool) {
	switch key {
	case "address":
		return l.Address, true
	case "city":
		return l.City, true
	case "state":
		return l.State, true
	case "zip":
		return l.Zip, true
	}
	return nil, false
}

// Fee is a named surcharge attached to a service.
type Fee struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Field implements Record.
func (f Fee) Field(key string) (any, bool) {
	switch key {
	case "name":
		return f.Name, true
	case "amount":
		return f.Amount, true
	}
	return nil, false
}

// CustomerService is one recurring service on an account.
type CustomerService struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Recurrence      string           `json:"recurrence"`
	BusinessLine    string           `json:"businessLine"`
	Method          string           `json:"method"`
	Material        string           `json:"material"`
	Price           decimal.Decimal  `json:"price"`
	ConfiguredPrice *decimal.Decimal `json:"configuredPrice,omitempty"`
	Fees            []Fee            `json:"fees"`
}

// Field implements Record. fees is returned as a []Record for projection.
func (s CustomerService) Field(key string) (any, bool) {
	switch key {
	case "id":
		return s.ID, true
	case "name":
		return s.Name, true
	case "recurrence":
		return s.Recurrence, true
	case "businessLine":
		return s.BusinessLine, true
	case "method":
		return s.Method, true
	case "material":
		return s.Material, true
	case "price":
		return s.Price, true
	case "configuredPrice":
		if s.ConfiguredPrice == nil {
			return nil, true
		}
		return *s.ConfiguredPrice, true
	case "fees":
		out := make([]Record, len(s.Fees))
		for i := range s.Fees {
			out[i] = s.Fees[i]
		}
		return out, true
	}
	return nil, false
}

// CustomerRoute is a collection route covering some of the customer's services.
type CustomerRoute struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	DayOfWeek string   `json:"dayOfWeek"`
	Services  []string `json:"services"`
}

// Field implements Record.
func (r CustomerRoute) Field(key string) (any, bool) {
	switch key {
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "dayOfWeek":
		return r.DayOfWeek, true
	case "services":
		return r.Services, true
	}
	return nil, false
}

// CustomerInvoice is one billed invoice.
type CustomerInvoice struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	DueDate  string          `json:"dueDate"`
	Status   InvoiceStatus   `json:"status"`
	DaysLate int             `json:"daysLate"`
}

// Field implements Record.
func (i CustomerInvoice) Field(key string) (any, bool) {
	switch key {
	case "id":
		return i.ID, true
	case "amount":
		return i.Amount, true
	case "dueDate":
		return i.DueDate, true
	case "status":
		return string(i.Status), true
	case "daysLate":
		return i.DaysLate, true
	}
	return nil, false
}

// Customer is the denormalized unit of record the filter engine evaluates.
type Customer struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Type         CustomerType      `json:"type"`
	Status       CustomerStatus    `json:"status"`
	LastOrder    string            `json:"lastOrder"`
	Tags         []string          `json:"tags"`
	AccountGroup string            `json:"accountGroup"`
	ARBalance    decimal.Decimal   `json:"arBalance"`
	BillGroup    string            `json:"billGroup"`
	PricingZone  string            `json:"pricingZone"`
	Location     Location          `json:"location"`
	Services     []CustomerService `json:"services"`
	Routes       []CustomerRoute   `json:"routes"`
	Invoices     []CustomerInvoice `json:"invoices"`
	Notes        string            `json:"notes"`
}

// Field implements Record. Sub-entity collections come back as []Record and
// tags as the raw []string.
func (c *Customer) Field(key string) (any, bool) {
	switch key {
	case "id":
		return c.ID, true
	case "name":
		return c.Name, true
	case "email":
		return c.Email, true
	case "phone":
		return c.Phone, true
	case "type":
		return string(c.Type), true
	case "status":
		return string(c.Status), true
	case "lastOrder":
		return c.LastOrder, true
	case "tags":
		return c.Tags, true
	case "accountGroup":
		return c.AccountGroup, true
	case "arBalance":
		return c.ARBalance, true
	case "billGroup":
		return c.BillGroup, true
	case "pricingZone":
		return c.PricingZone, true
	case "location":
		return c.Location, true
	case "notes":
		return c.Notes, true
	case "services":
		out := make([]Record, len(c.Services))
		for i := range c.Services {
			out[i] = c.Services[i]
		}
		return out, true
	case "routes":
		out := make([]Record, len(c.Routes))
		for i := range c.Routes {
			out[i] = c.Routes[i]
		}
		return out, true
	case "invoices":
		out := make([]Record, len(c.Invoices))
		for i := range c.Invoices {
			out[i] = c.Invoices[i]
		}
		return out, true
	}
	return nil, false
}
