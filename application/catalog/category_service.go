package catalog

import (
	"context"
	"strings"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/store"
	"go.uber.org/zap"
)

// CategoryService manages the category list products reference by name
type CategoryService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(st *store.Store, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{store: st, logger: logger}
}

// List returns all category names in their stored order
func (s *CategoryService) List(ctx context.Context, actor *identity.User) ([]string, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var categories []string
	s.store.View(func(d *store.Dataset) {
		categories = append([]string(nil), d.Categories...)
	})

	return categories, nil
}

// Add appends a new category name
func (s *CategoryService) Add(ctx context.Context, actor *identity.User, name string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}

	return s.store.Update(ctx, func(d *store.Dataset) error {
		if d.HasCategory(name) {
			return shared.NewDomainError("ALREADY_EXISTS", "Category already exists")
		}
		d.Categories = append(d.Categories, name)
		return nil
	})
}

// Remove deletes a category name. Removal is refused while any product
// still references the category.
func (s *CategoryService) Remove(ctx context.Context, actor *identity.User, name string) error {
	if err := requireCatalogManager(actor); err != nil {
		return err
	}

	return s.store.Update(ctx, func(d *store.Dataset) error {
		for _, p := range d.Products {
			if p.Category == name {
				return shared.NewDomainError("INVALID_STATE", "Category is still referenced by product "+p.Name)
			}
		}
		for i, c := range d.Categories {
			if c == name {
				d.Categories = append(d.Categories[:i], d.Categories[i+1:]...)
				return nil
			}
		}
		return shared.ErrNotFound
	})
}
