package store

import (
	"github.com/cloudbilling/engine/domain/catalog"
	"github.com/cloudbilling/engine/domain/finance"
	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared/valueobject"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/shopspring/decimal"
)

// Settings holds company-wide billing settings
type Settings struct {
	CompanyName string               `json:"company_name"`
	TaxRate     decimal.Decimal      `json:"tax_rate"`
	Currency    valueobject.Currency `json:"currency"`
}

// Counters holds the last-allocated ID per collection plus the invoice
// number sequence. Counters only move forward; deleting records never
// frees an ID or an invoice number for reuse.
type Counters struct {
	User       int64 `json:"user"`
	Product    int64 `json:"product"`
	Order      int64 `json:"order"`
	Invoice    int64 `json:"invoice"`
	InvoiceSeq int64 `json:"invoice_seq"`
}

// NextUser allocates the next user ID
func (c *Counters) NextUser() int64 {
	c.User++
	return c.User
}

// NextProduct allocates the next product ID
func (c *Counters) NextProduct() int64 {
	c.Product++
	return c.Product
}

// NextOrder allocates the next order ID
func (c *Counters) NextOrder() int64 {
	c.Order++
	return c.Order
}

// NextInvoice allocates the next invoice ID
func (c *Counters) NextInvoice() int64 {
	c.Invoice++
	return c.Invoice
}

// NextInvoiceSeq allocates the next invoice number sequence value
func (c *Counters) NextInvoiceSeq() int64 {
	c.InvoiceSeq++
	return c.InvoiceSeq
}

// Dataset is the complete in-memory dataset. It is serialized and
// persisted as a single unit after every mutation.
type Dataset struct {
	Users      []identity.User   `json:"users"`
	Products   []catalog.Product `json:"products"`
	Orders     []trade.Order     `json:"orders"`
	Invoices   []finance.Invoice `json:"invoices"`
	Categories []string          `json:"categories"`
	Settings   Settings          `json:"settings"`
	Counters   Counters          `json:"counters"`
}

// FindUser returns a pointer to the user with the given ID, or nil
func (d *Dataset) FindUser(id int64) *identity.User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// FindUserByEmail returns a pointer to the user with the given email, or nil
func (d *Dataset) FindUserByEmail(email string) *identity.User {
	for i := range d.Users {
		if d.Users[i].Email == email {
			return &d.Users[i]
		}
	}
	return nil
}

// FindProduct returns a pointer to the product with the given ID, or nil
func (d *Dataset) FindProduct(id int64) *catalog.Product {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i]
		}
	}
	return nil
}

// FindOrder returns a pointer to the order with the given ID, or nil
func (d *Dataset) FindOrder(id int64) *trade.Order {
	for i := range d.Orders {
		if d.Orders[i].ID == id {
			return &d.Orders[i]
		}
	}
	return nil
}

// FindInvoice returns a pointer to the invoice with the given ID, or nil
func (d *Dataset) FindInvoice(id int64) *finance.Invoice {
	for i := range d.Invoices {
		if d.Invoices[i].ID == id {
			return &d.Invoices[i]
		}
	}
	return nil
}

// FindInvoiceByOrder returns the invoice derived from the given order, or nil
func (d *Dataset) FindInvoiceByOrder(orderID int64) *finance.Invoice {
	for i := range d.Invoices {
		if d.Invoices[i].OrderID == orderID {
			return &d.Invoices[i]
		}
	}
	return nil
}

// HasCategory reports whether the category name exists
func (d *Dataset) HasCategory(name string) bool {
	for _, c := range d.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the dataset. Mutating closures run
// against a clone so a failed operation leaves the live dataset intact.
func (d *Dataset) Clone() *Dataset {
	dup := &Dataset{
		Users:      append([]identity.User(nil), d.Users...),
		Products:   append([]catalog.Product(nil), d.Products...),
		Invoices:   append([]finance.Invoice(nil), d.Invoices...),
		Categories: append([]string(nil), d.Categories...),
		Settings:   d.Settings,
		Counters:   d.Counters,
	}
	dup.Orders = make([]trade.Order, len(d.Orders))
	for i := range d.Orders {
		dup.Orders[i] = d.Orders[i].Clone()
	}
	return dup
}
