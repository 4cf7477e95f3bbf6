package finance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudbilling/engine/domain/finance"
	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/shared/valueobject"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/cloudbilling/engine/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EnsureInvoice derives an invoice for the order if none exists yet,
// appending it to the dataset. The tax rate in effect at generation
// time is applied, not the rate at the order's original date. Returns
// the existing invoice unchanged when one is already present.
func EnsureInvoice(d *store.Dataset, order *trade.Order) (*finance.Invoice, error) {
	if existing := d.FindInvoiceByOrder(order.ID); existing != nil {
		return existing, nil
	}

	invoice, err := finance.NewInvoice(
		d.Counters.NextInvoice(),
		order.ID,
		d.Counters.NextInvoiceSeq(),
		order.TotalAmount,
		d.Settings.TaxRate,
	)
	if err != nil {
		return nil, err
	}

	d.Invoices = append(d.Invoices, *invoice)
	return invoice, nil
}

// InvoiceService handles invoice generation, lifecycle and rendering.
// Non-admin sessions see only invoices whose underlying order belongs
// to them.
type InvoiceService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(st *store.Store, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{store: st, logger: logger}
}

// Generate creates the invoice for a completed order
func (s *InvoiceService) Generate(ctx context.Context, actor *identity.User, orderID int64) (*finance.Invoice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var created finance.Invoice
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		order := d.FindOrder(orderID)
		if order == nil {
			return shared.ErrNotFound
		}
		if order.Status != trade.OrderStatusCompleted {
			return shared.NewDomainError("INVALID_STATE", "Only completed orders can be invoiced")
		}
		if d.FindInvoiceByOrder(orderID) != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "Order already has an invoice")
		}

		invoice, err := EnsureInvoice(d, order)
		if err != nil {
			return err
		}
		created = *invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice generated",
		zap.Int64("order_id", orderID),
		zap.String("number", created.InvoiceNumber))

	return &created, nil
}

// Get returns the invoice with the given ID, subject to visibility
func (s *InvoiceService) Get(ctx context.Context, actor *identity.User, id int64) (*finance.Invoice, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var found *finance.Invoice
	var visible bool
	s.store.View(func(d *store.Dataset) {
		inv := d.FindInvoice(id)
		if inv == nil {
			return
		}
		dup := *inv
		found = &dup
		visible = s.canSee(d, actor, inv)
	})

	if found == nil {
		return nil, shared.ErrNotFound
	}
	if !visible {
		return nil, shared.ErrForbidden
	}

	return found, nil
}

// List returns the invoices visible to the actor, ordered by ID
func (s *InvoiceService) List(ctx context.Context, actor *identity.User) ([]finance.Invoice, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var invoices []finance.Invoice
	s.store.View(func(d *store.Dataset) {
		for i := range d.Invoices {
			if s.canSee(d, actor, &d.Invoices[i]) {
				invoices = append(invoices, d.Invoices[i])
			}
		}
	})
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].ID < invoices[j].ID })

	return invoices, nil
}

// UpdateStatus moves an invoice through its payment lifecycle
func (s *InvoiceService) UpdateStatus(ctx context.Context, actor *identity.User, id int64, status finance.InvoiceStatus) (*finance.Invoice, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var updated finance.Invoice
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		invoice := d.FindInvoice(id)
		if invoice == nil {
			return shared.ErrNotFound
		}
		if err := invoice.TransitionTo(status); err != nil {
			return err
		}
		updated = *invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Render produces a plain-text invoice document for display or export
func (s *InvoiceService) Render(ctx context.Context, actor *identity.User, id int64) (string, error) {
	invoice, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}

	var (
		settings store.Settings
		order    *trade.Order
	)
	s.store.View(func(d *store.Dataset) {
		settings = d.Settings
		if o := d.FindOrder(invoice.OrderID); o != nil {
			dup := o.Clone()
			order = &dup
		}
	})

	symbol := currencySymbol(settings.Currency)
	title := cases.Title(language.English).String(settings.CompanyName)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Invoice %s\n", invoice.InvoiceNumber)
	fmt.Fprintf(&b, "Date:   %s\n", invoice.InvoiceDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Status: %s\n\n", invoice.Status)

	if order != nil {
		fmt.Fprintf(&b, "Order #%d (%s)\n", order.ID, order.OrderDate.Format("2006-01-02"))
		for _, item := range order.Items {
			fmt.Fprintf(&b, "  product %-4d x%-3d @ %s%s = %s%s\n",
				item.ProductID, item.Quantity,
				symbol, item.Price.StringFixed(2),
				symbol, item.Amount().StringFixed(2))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Subtotal: %s%s\n", symbol, invoice.Subtotal().StringFixed(2))
	fmt.Fprintf(&b, "Tax (%s%%): %s%s\n",
		settings.TaxRate.Mul(hundred).String(), symbol, invoice.TaxAmount.StringFixed(2))
	fmt.Fprintf(&b, "Total:    %s%s\n", symbol, invoice.TotalAmount.StringFixed(2))

	return b.String(), nil
}

func (s *InvoiceService) canSee(d *store.Dataset, actor *identity.User, invoice *finance.Invoice) bool {
	if actor.Role.CanViewAllOrders() {
		return true
	}
	order := d.FindOrder(invoice.OrderID)
	return order != nil && order.BelongsTo(actor.ID)
}

var hundred = decimal.NewFromInt(100)

func currencySymbol(code valueobject.Currency) string {
	unit, err := currency.ParseISO(string(code))
	if err != nil {
		return ""
	}
	return message.NewPrinter(language.English).Sprintf("%v", currency.Symbol(unit))
}

func requireAdmin(actor *identity.User) error {
	if actor == nil {
		return shared.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}
	return nil
}
