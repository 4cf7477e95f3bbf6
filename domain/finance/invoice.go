package finance

import (
	"fmt"
	"time"

	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "Draft"
	InvoiceStatusSent      InvoiceStatus = "Sent"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusOverdue   InvoiceStatus = "Overdue"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Invoice represents a billing document derived from a completed order.
// At most one invoice exists per order.
type Invoice struct {
	shared.BaseEntity
	OrderID       int64           `json:"order_id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Status        InvoiceStatus   `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
}

// FormatInvoiceNumber renders an invoice number as INV-<year>-<seq>,
// with the sequence zero-padded to three digits. The sequence comes
// from a monotonic counter persisted independently of the invoice
// list, so numbers are never reused after deletions.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%03d", year, seq)
}

// NewInvoice derives an invoice from an order total at the given tax
// rate. The tax rate is the one in effect at generation time, not at
// the order's original date.
func NewInvoice(id, orderID int64, seq int64, orderTotal, taxRate decimal.Decimal) (*Invoice, error) {
	if orderTotal.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order total cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	now := time.Now()
	taxAmount := orderTotal.Mul(taxRate)

	return &Invoice{
		BaseEntity:    shared.NewBaseEntity(id),
		OrderID:       orderID,
		InvoiceNumber: FormatInvoiceNumber(now.Year(), seq),
		InvoiceDate:   now,
		Status:        InvoiceStatusDraft,
		TotalAmount:   orderTotal.Add(taxAmount),
		TaxAmount:     taxAmount,
	}, nil
}

// TransitionTo moves the invoice to the target status
func (i *Invoice) TransitionTo(target InvoiceStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown invoice status")
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition invoice from "+string(i.Status)+" to "+string(target))
	}

	i.Status = target
	i.Touch()

	return nil
}

// Subtotal returns the pre-tax amount
func (i *Invoice) Subtotal() decimal.Decimal {
	return i.TotalAmount.Sub(i.TaxAmount)
}

// TotalMoney returns the invoice total as a Money value object
func (i *Invoice) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(i.TotalAmount)
}
