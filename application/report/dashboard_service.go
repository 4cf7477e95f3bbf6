package report

import (
	"context"
	"sort"
	"time"

	"github.com/cloudbilling/engine/domain/identity"
	"github.com/cloudbilling/engine/domain/shared"
	"github.com/cloudbilling/engine/domain/trade"
	"github.com/cloudbilling/engine/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Metrics are the headline dashboard numbers
type Metrics struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int             `json:"total_orders"`
	TotalProducts int             `json:"total_products"`
	LowStockCount int             `json:"low_stock_count"`
}

// MonthlyRevenue is one month's completed-order revenue bucket
type MonthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
}

// DashboardService computes read-only derived views over the dataset.
// Everything is recomputed on demand; the inputs are small and local,
// so there is no caching to invalidate.
type DashboardService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(st *store.Store, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{store: st, logger: logger}
}

// Metrics returns the headline dashboard numbers. Revenue covers
// completed orders only.
func (s *DashboardService) Metrics(ctx context.Context, actor *identity.User) (*Metrics, error) {
	if err := requireDashboardViewer(actor); err != nil {
		return nil, err
	}

	m := &Metrics{TotalRevenue: decimal.Zero}
	s.store.View(func(d *store.Dataset) {
		for _, o := range d.Orders {
			if o.Status == trade.OrderStatusCompleted {
				m.TotalRevenue = m.TotalRevenue.Add(o.TotalAmount)
			}
		}
		m.TotalOrders = len(d.Orders)
		m.TotalProducts = len(d.Products)
		for _, p := range d.Products {
			if p.IsLowStock() {
				m.LowStockCount++
			}
		}
	})

	return m, nil
}

// OrderStatusDistribution returns the count of orders per status
func (s *DashboardService) OrderStatusDistribution(ctx context.Context, actor *identity.User) (map[trade.OrderStatus]int, error) {
	if err := requireDashboardViewer(actor); err != nil {
		return nil, err
	}

	dist := make(map[trade.OrderStatus]int)
	s.store.View(func(d *store.Dataset) {
		for _, o := range d.Orders {
			dist[o.Status]++
		}
	})

	return dist, nil
}

// CategoryStockDistribution returns the summed stock quantity per category
func (s *DashboardService) CategoryStockDistribution(ctx context.Context, actor *identity.User) (map[string]int64, error) {
	if err := requireDashboardViewer(actor); err != nil {
		return nil, err
	}

	dist := make(map[string]int64)
	s.store.View(func(d *store.Dataset) {
		for _, p := range d.Products {
			dist[p.Category] += p.Quantity
		}
	})

	return dist, nil
}

// RecentOrders returns the n most recently placed orders
func (s *DashboardService) RecentOrders(ctx context.Context, actor *identity.User, n int) ([]trade.Order, error) {
	if err := requireDashboardViewer(actor); err != nil {
		return nil, err
	}

	var orders []trade.Order
	s.store.View(func(d *store.Dataset) {
		for i := range d.Orders {
			orders = append(orders, d.Orders[i].Clone())
		}
	})
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].OrderDate.Equal(orders[j].OrderDate) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].OrderDate.After(orders[j].OrderDate)
	})
	if n > 0 && len(orders) > n {
		orders = orders[:n]
	}

	return orders, nil
}

// MonthlyRevenue buckets completed-order revenue by calendar month over
// the given number of months ending at the current month. Months with
// no completed orders appear with zero revenue.
func (s *DashboardService) MonthlyRevenue(ctx context.Context, actor *identity.User, months int) ([]MonthlyRevenue, error) {
	if err := requireDashboardViewer(actor); err != nil {
		return nil, err
	}
	if months <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Months must be positive")
	}

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	buckets := make(map[string]decimal.Decimal, months)
	result := make([]MonthlyRevenue, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		buckets[key] = decimal.Zero
		result = append(result, MonthlyRevenue{Month: key, Revenue: decimal.Zero})
	}

	s.store.View(func(d *store.Dataset) {
		for _, o := range d.Orders {
			if o.Status != trade.OrderStatusCompleted {
				continue
			}
			key := o.OrderDate.Format("2006-01")
			if sum, ok := buckets[key]; ok {
				buckets[key] = sum.Add(o.TotalAmount)
			}
		}
	})

	for i := range result {
		result[i].Revenue = buckets[result[i].Month]
	}

	return result, nil
}

func requireDashboardViewer(actor *identity.User) error {
	if actor == nil {
		return shared.ErrUnauthorized
	}
	if !actor.Role.CanViewDashboard() {
		return shared.ErrForbidden
	}
	return nil
}
