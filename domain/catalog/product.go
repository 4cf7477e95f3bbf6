package catalog

import (
	"strings"
	"time"

	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LowStockThreshold is the quantity below which a product is flagged as
// low on stock, for dashboard counts and reorder hints
const LowStockThreshold = 20

// Product represents a catalog product/SKU
type Product struct {
	shared.BaseEntity
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
}

// NewProduct creates a new product
func NewProduct(id int64, name, description string, price decimal.Decimal, quantity int64, category, image string) (*Product, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &Product{
		BaseEntity:  shared.NewBaseEntity(id),
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Category:    category,
		Image:       image,
	}, nil
}

// Update merges new field values into the product
func (p *Product) Update(name, description string, price decimal.Decimal, quantity int64, category, image string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Price = price
	p.Quantity = quantity
	p.Category = category
	p.Image = image
	p.UpdatedAt = time.Now()

	return nil
}

// HasStock reports whether the requested quantity is available
func (p *Product) HasStock(quantity int64) bool {
	return quantity <= p.Quantity
}

// DecreaseStock removes the given quantity from stock.
// The quantity invariant (never negative) is enforced here.
func (p *Product) DecreaseStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > p.Quantity {
		return shared.ErrInsufficientStock
	}

	p.Quantity -= quantity
	p.Touch()

	return nil
}

// IncreaseStock returns the given quantity to stock
func (p *Product) IncreaseStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	p.Quantity += quantity
	p.Touch()

	return nil
}

// IsLowStock returns true if the quantity is below the low-stock threshold
func (p *Product) IsLowStock() bool {
	return p.Quantity < LowStockThreshold
}

// PriceMoney returns the unit price as a Money value object
func (p *Product) PriceMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Price)
}

// Matches implements the catalog filter predicate: a case-insensitive
// substring match on name or description, AND an exact category match
// when the category filter is non-empty
func (p *Product) Matches(searchTerm, category string) bool {
	if category != "" && p.Category != category {
		return false
	}
	if searchTerm == "" {
		return true
	}
	term := strings.ToLower(searchTerm)
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
