package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dshills/orderdesk/pkg/types"
)

// Storage defines the interface for persisting customers, the product catalog and orders
type Storage interface {
	// Customer operations
	CreateCustomer(ctx context.Context, customer *types.Customer) error
	UpdateCustomer(ctx context.Context, customer *types.Customer) error
	GetCustomer(ctx context.Context, id int64) (*types.Customer, error)
	ListCustomers(ctx context.Context) ([]*types.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error

	// Product operations
	CreateProduct(ctx context.Context, product *types.Product) error
	UpdateProduct(ctx context.Context, product *types.Product) error
	GetProduct(ctx context.Context, id int64) (*types.Product, error)
	GetProductByName(ctx context.Context, name string) (*types.Product, error)
	ListProducts(ctx context.Context) ([]*types.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// Order operations (header row only, items are handled separately)
	CreateOrder(ctx context.Context, order *types.Order) error
	UpdateOrder(ctx context.Context, order *types.Order) error
	GetOrder(ctx context.Context, id int64) (*types.Order, error)
	ListOrders(ctx context.Context, filter *OrderFilter) ([]*types.Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	// Line item operations
	InsertLineItem(ctx context.Context, item *types.LineItem) error
	ListLineItems(ctx context.Context, orderID int64) ([]types.LineItem, error)
	DeleteLineItems(ctx context.Context, orderID int64) (deletedCount int, err error)

	// Aggregate queries
	GetStats(ctx context.Context) (*Stats, error)
	ProductSales(ctx context.Context, limit int) ([]ProductSales, error)
	CustomerSpend(ctx context.Context) ([]CustomerSpend, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// OrderFilter narrows ListOrders. Zero values mean no constraint.
type OrderFilter struct {
	From       string // inclusive YYYY-MM-DD
	To         string // inclusive YYYY-MM-DD
	CustomerID int64
	Limit      int
}

// Stats contains row counts across the store
type Stats struct {
	Customers int
	Products  int
	Orders    int
	LineItems int
}

// ProductSales is the quantity sold per product name across all orders
type ProductSales struct {
	ProductName string
	Quantity    int
}

// CustomerSpend is the sum of order totals per customer
type CustomerSpend struct {
	CustomerID int64
	Name       string
	Orders     int
	Spend      decimal.Decimal
}
