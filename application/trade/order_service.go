package trade

import (
	"context"
	"fmt"
	"sort"

	appfinance "github.com/cloudbilling/engine/application/finance"
	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/cloudbilling/engine/store"
	"go.uber.org/zap"
)

// Selection is one requested order line. Selections with zero quantity
// are ignored, matching a quantity picker left at zero.
type Selection struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderService handles order placement and lifecycle. Visibility:
// non-admin sessions only see orders they placed themselves.
type OrderService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(st *store.Store, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: st, logger: logger}
}

// Place creates a new pending order for the actor. Every line is
// validated against current stock before any stock is decremented, so
// a failing line leaves the store unmutated. Unit prices are captured
// from the catalog at this moment and fixed on the order.
func (s *OrderService) Place(ctx context.Context, actor *identity.User, selections []Selection) (*trade.Order, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var placed trade.Order
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		items := make([]trade.OrderItem, 0, len(selections))

		// Validate all lines before touching any stock. Quantities are
		// accumulated per product so duplicate selections are checked
		// against their combined total.
		requested := make(map[int64]int64, len(selections))
		for _, sel := range selections {
			if sel.Quantity <= 0 {
				continue
			}
			product := d.FindProduct(sel.ProductID)
			if product == nil {
				return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %d not found", sel.ProductID))
			}
			requested[sel.ProductID] += sel.Quantity
			if !product.HasStock(requested[sel.ProductID]) {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Not enough stock for %s: %d requested, %d available",
						product.Name, requested[sel.ProductID], product.Quantity))
			}
			items = append(items, trade.OrderItem{
				ProductID: sel.ProductID,
				Quantity:  sel.Quantity,
				Price:     product.Price,
			})
		}

		if len(items) == 0 {
			return shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
		}

		order, err := trade.NewOrder(d.Counters.NextOrder(), actor.ID, items)
		if err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := d.FindProduct(item.ProductID).DecreaseStock(item.Quantity); err != nil {
				return err
			}
		}

		d.Orders = append(d.Orders, *order)
		placed = order.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.Int64("id", placed.ID),
		zap.Int64("user_id", actor.ID),
		zap.String("total", placed.TotalAmount.StringFixed(2)))

	return &placed, nil
}

// UpdateStatus transitions an order through its lifecycle. Completing
// an order generates its invoice if none exists yet; cancelling an
// order restores the decremented stock for each line whose product
// still exists in the catalog.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *identity.User, orderID int64, status trade.OrderStatus) (*trade.Order, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}
	if !actor.Role.CanTransitionOrders() {
		return nil, shared.ErrForbidden
	}

	var updated trade.Order
	err := s.store.Update(ctx, func(d *store.Dataset) error {
		order := d.FindOrder(orderID)
		if order == nil {
			return shared.ErrNotFound
		}
		if err := order.TransitionTo(status); err != nil {
			return err
		}

		switch status {
		case trade.OrderStatusCompleted:
			if _, err := appfinance.EnsureInvoice(d, order); err != nil {
				return err
			}
		case trade.OrderStatusCancelled:
			for _, item := range order.Items {
				product := d.FindProduct(item.ProductID)
				if product == nil {
					// Deleted product: the historical line stays on
					// the order, the stock has nowhere to go back to.
					continue
				}
				if err := product.IncreaseStock(item.Quantity); err != nil {
					return err
				}
			}
		}

		updated = order.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.Int64("id", orderID),
		zap.String("status", status.String()))

	return &updated, nil
}

// Get returns the order with the given ID, subject to visibility
func (s *OrderService) Get(ctx context.Context, actor *identity.User, id int64) (*trade.Order, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var found *trade.Order
	s.store.View(func(d *store.Dataset) {
		if o := d.FindOrder(id); o != nil {
			dup := o.Clone()
			found = &dup
		}
	})
	if found == nil {
		return nil, shared.ErrNotFound
	}
	if !actor.Role.CanViewAllOrders() && !found.BelongsTo(actor.ID) {
		return nil, shared.ErrForbidden
	}

	return found, nil
}

// List returns the orders visible to the actor, newest first
func (s *OrderService) List(ctx context.Context, actor *identity.User) ([]trade.Order, error) {
	if actor == nil {
		return nil, shared.ErrUnauthorized
	}

	var orders []trade.Order
	s.store.View(func(d *store.Dataset) {
		for i := range d.Orders {
			if actor.Role.CanViewAllOrders() || d.Orders[i].BelongsTo(actor.ID) {
				orders = append(orders, d.Orders[i].Clone())
			}
		}
	})
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})

	return orders, nil
}
