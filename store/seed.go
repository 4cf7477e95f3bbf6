package store

import (
	"time"

	"github.com/cloudbilling/engine/domain/catalog"
	"github.com/cloudbilling/engine/domain/finance"
	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/shared/valueobject"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/shopspring/decimal"
)

// Sample credentials for the seed accounts. These are documentation
// values for a fresh local install, not secrets.
const (
	SeedAdminEmail  = "admin@example.com"
	SeedUserEmail   = "user@example.com"
	SeedPassword    = "password"
	seedTaxRate     = "0.09"
	seedCompanyName = "CloudBilling Pro"
)

// SeedDataset builds the default sample dataset used when no persisted
// data exists. Passwords are hashed at seed time; the blob never
// contains plaintext credentials.
func SeedDataset() *Dataset {
	d := &Dataset{
		Users:    seedUsers(),
		Products: seedProducts(),
		Orders:   seedOrders(),
		Categories: []string{
			"Electronics", "Furniture", "Office Supplies", "Books", "Clothing",
		},
		Settings: Settings{
			CompanyName: seedCompanyName,
			TaxRate:     decimal.RequireFromString(seedTaxRate),
			Currency:    valueobject.USD,
		},
		Counters: Counters{
			User:       2,
			Product:    10,
			Order:      3,
			Invoice:    1,
			InvoiceSeq: 1,
		},
	}
	d.Invoices = seedInvoices(d)
	return d
}

func seedUsers() []identity.User {
	admin := mustUser(1, "admin", SeedAdminEmail, identity.RoleAdmin, date(2025, 1, 1))
	user := mustUser(2, "john_user", SeedUserEmail, identity.RoleUser, date(2025, 1, 15))
	return []identity.User{admin, user}
}

func seedProducts() []catalog.Product {
	rows := []struct {
		id       int64
		name     string
		desc     string
		price    string
		quantity int64
		category string
		image    string
	}{
		{1, "Laptop Pro 15", "High-performance laptop for professionals", "1299.99", 25, "Electronics", "laptop.jpg"},
		{2, "Wireless Mouse", "Ergonomic wireless mouse", "29.99", 150, "Electronics", "mouse.jpg"},
		{3, "Office Chair", "Comfortable ergonomic office chair", "249.99", 30, "Furniture", "chair.jpg"},
		{4, "Desk Lamp", "LED desk lamp with adjustable brightness", "45.99", 75, "Office Supplies", "lamp.jpg"},
		{5, "Smartphone X", "Latest smartphone with advanced features", "899.99", 12, "Electronics", "phone.jpg"},
		{6, "Monitor 27\"", "4K Ultra HD monitor", "349.99", 45, "Electronics", "monitor.jpg"},
		{7, "Keyboard Mechanical", "RGB mechanical gaming keyboard", "89.99", 60, "Electronics", "keyboard.jpg"},
		{8, "Standing Desk", "Height adjustable standing desk", "499.99", 15, "Furniture", "desk.jpg"},
		{9, "Headphones Pro", "Noise-cancelling wireless headphones", "199.99", 35, "Electronics", "headphones.jpg"},
		{10, "Webcam HD", "1080p HD webcam for video calls", "79.99", 90, "Electronics", "webcam.jpg"},
	}

	products := make([]catalog.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, catalog.Product{
			BaseEntity:  entityAt(r.id, date(2025, 1, 1)),
			Name:        r.name,
			Description: r.desc,
			Price:       decimal.RequireFromString(r.price),
			Quantity:    r.quantity,
			Category:    r.category,
			Image:       r.image,
		})
	}
	return products
}

func seedOrders() []trade.Order {
	return []trade.Order{
		seedOrder(1, 2, date(2025, 9, 1), trade.OrderStatusCompleted, []trade.OrderItem{
			{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("1299.99")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("29.99")},
		}),
		seedOrder(2, 2, date(2025, 9, 5), trade.OrderStatusProcessing, []trade.OrderItem{
			{ProductID: 3, Quantity: 1, Price: decimal.RequireFromString("249.99")},
		}),
		seedOrder(3, 1, date(2025, 9, 10), trade.OrderStatusPending, []trade.OrderItem{
			{ProductID: 5, Quantity: 1, Price: decimal.RequireFromString("899.99")},
		}),
	}
}

func seedInvoices(d *Dataset) []finance.Invoice {
	// The completed seed order already carries its invoice.
	order := d.FindOrder(1)
	tax := order.TotalAmount.Mul(d.Settings.TaxRate)
	return []finance.Invoice{
		{
			BaseEntity:    entityAt(1, order.OrderDate),
			OrderID:       order.ID,
			InvoiceNumber: finance.FormatInvoiceNumber(2025, 1),
			InvoiceDate:   order.OrderDate,
			Status:        finance.InvoiceStatusPaid,
			TotalAmount:   order.TotalAmount.Add(tax),
			TaxAmount:     tax,
		},
	}
}

func seedOrder(id, userID int64, placed time.Time, status trade.OrderStatus, items []trade.OrderItem) trade.Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return trade.Order{
		BaseEntity:  entityAt(id, placed),
		UserID:      userID,
		OrderDate:   placed,
		Status:      status,
		TotalAmount: total,
		Items:       items,
	}
}

func mustUser(id int64, username, email string, role identity.Role, created time.Time) identity.User {
	u, err := identity.NewUser(id, username, email, SeedPassword, role)
	if err != nil {
		panic(err)
	}
	u.CreatedAt = created
	u.UpdatedAt = created
	return *u
}

func entityAt(id int64, at time.Time) shared.BaseEntity {
	return shared.BaseEntity{ID: id, CreatedAt: at, UpdatedAt: at}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
