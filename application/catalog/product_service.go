package catalog

import (
	"context"
	"sort"

	"github.com/cloudbilling/engine/domain/catalog"
	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/store"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProductService handles catalog management and browsing. Management
// operations require the Admin role; browsing requires any
// authenticated session.
type ProductService struct {
	store    *store.Store
	logger   *zap.Logger
	validate *validator.Validate
}

// NewProductService creates a new ProductService
func NewProductService(st *store.Store, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		store:    st,
		logger:   logger,
		validate: validator.New(),
	}
}

// Create adds a new product to the catalog
func (s *ProductService) Create(ctx context.Context, actor *identity.User, input ProductInput) (*catalog.Product, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	var created *catalog.Product
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		if !d.HasCategory(input.Category) {
			return shared.NewDomainError("INVALID_CATEGORY", "Unknown category: "+input.Category)
		}

		product, err := catalog.NewProduct(d.Counters.NextProduct(),
			input.Name, input.Description, input.Price, input.Quantity, input.Category, input.Image)
		if err != nil {
			return err
		}

		d.Products = append(d.Products, *product)
		created = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// Update merges new field values into an existing product
func (s *ProductService) Update(ctx context.Context, actor *identity.User, id int64, input ProductInput) (*catalog.Product, error) {
	if err := requireCatalogManager(actor); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	var updated catalog.Product
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		product := d.FindProduct(id)
		if product == nil {
			return shared.ErrNotFound
		}
		if !d.HasCategory(input.Category) {
			return shared.NewDomainError("INVALID_CATEGORY", "Unknown category: "+input.Category)
		}

		if err := product.Update(input.Name, input.Description, input.Price, input.Quantity, input.Category, input.Image); err != nil {
			return err
		}
		updated = *product
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a product from the catalog. Existing orders keep
// their captured line data, so no referential check is needed.
func (s *ProductService) Delete(ctx context.Context, actor *identity.User, id int64) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	err := s.store.Update(ctx, func(d *store.Dataset) error {
		for i := range d.Products {
			if d.Products[i].ID == id {
				d.Products = append(d.Products[:i], d.Products[i+1:]...)
				return nil
			}
		}
		return shared.ErrNotFound
	})
	if err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.Int64("id", id))
	return nil
}

// Get returns the product with the given ID
func (s *ProductService) Get(ctx context.Context, actor *identity.User, id int64) (*catalog.Product, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var found *catalog.Product
	s.store.View(func(d *store.Dataset) {
		if p := d.FindProduct(id); p != nil {
			dup := *p
			found = &dup
		}
	})
	if found == nil {
		return nil, shared.ErrNotFound
	}

	return found, nil
}

// Filter returns the products matching the given predicates, ordered by ID
func (s *ProductService) Filter(ctx context.Context, actor *identity.User, filter ProductFilter) ([]catalog.Product, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var matched []catalog.Product
	s.store.View(func(d *store.Dataset) {
		for _, p := range d.Products {
			if p.Matches(filter.SearchTerm, filter.Category) {
				matched = append(matched, p)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	return matched, nil
}

// ListLowStock returns the products below the low-stock threshold
func (s *ProductService) ListLowStock(ctx context.Context, actor *identity.User) ([]catalog.Product, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var low []catalog.Product
	s.store.View(func(d *store.Dataset) {
		for _, p := range d.Products {
			if p.IsLowStock() {
				low = append(low, p)
			}
		}
	})

	return low, nil
}

func requireCatalogManager(actor *identity.User) error {
	if actor == nil {
		return shared.ErrUnauthorized
	}
	if !actor.Role.CanManageCatalog() {
		return shared.ErrForbidden
	}
	return nil
}
