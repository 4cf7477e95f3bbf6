package catalog

import (
	"github.com/shopspring/decimal"
)

// ProductInput carries the fields for creating or updating a product.
// Price and quantity are validated against the non-negative invariants
// in the domain layer.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	Image       string          `json:"image"`
}

// ProductFilter carries the catalog browsing predicates. SearchTerm is
// matched case-insensitively against name or description; Category,
// when non-empty, must match exactly. Both must hold.
type ProductFilter struct {
	SearchTerm string `json:"search_term"`
	Category   string `json:"category"`
}
