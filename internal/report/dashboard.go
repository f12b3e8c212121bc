package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/pkg/types"
)

// NotAvailable is shown for a metric with no data
const NotAvailable = "N/A"

// MetricsStore is the aggregate side of the store used by Dashboard
type MetricsStore interface {
	GetStats(ctx context.Context) (*storage.Stats, error)
	ProductSales(ctx context.Context, limit int) ([]storage.ProductSales, error)
	CustomerSpend(ctx context.Context) ([]storage.CustomerSpend, error)
}

// Metrics is the dashboard snapshot
type Metrics struct {
	TotalCustomers int             `json:"total_customers"`
	TotalProducts  int             `json:"total_products"`
	TotalOrders    int             `json:"total_orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	TopProduct     string          `json:"top_product"`
	TopProductQty  int             `json:"top_product_quantity"`
	TopCustomer    string          `json:"top_customer"`
	TopSpend       decimal.Decimal `json:"top_customer_spend"`
}

// Dashboard gathers the counts, revenue and best sellers concurrently.
func Dashboard(ctx context.Context, store MetricsStore) (*Metrics, error) {
	var (
		stats *storage.Stats
		sales []storage.ProductSales
		spend []storage.CustomerSpend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = store.GetStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		sales, err = store.ProductSales(gctx, 1)
		return err
	})
	g.Go(func() (err error) {
		spend, err = store.CustomerSpend(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, types.Persistence("report.Dashboard", fmt.Errorf("load metrics: %w", err))
	}

	m := &Metrics{
		TotalCustomers: stats.Customers,
		TotalProducts:  stats.Products,
		TotalOrders:    stats.Orders,
		Revenue:        decimal.Zero,
		TopProduct:     NotAvailable,
		TopCustomer:    NotAvailable,
		TopSpend:       decimal.Zero,
	}

	if len(sales) > 0 && sales[0].Quantity > 0 {
		m.TopProduct = sales[0].ProductName
		m.TopProductQty = sales[0].Quantity
	}

	for _, cs := range spend {
		m.Revenue = m.Revenue.Add(cs.Spend)
		if cs.Orders > 0 && cs.Spend.GreaterThan(m.TopSpend) {
			m.TopCustomer = cs.Name
			m.TopSpend = cs.Spend
		}
	}

	return m, nil
}
