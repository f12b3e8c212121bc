package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dshills/orderdesk/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
	// ErrNestedTx is returned by BeginTx on a transaction
	ErrNestedTx = errors.New("nested transactions not supported")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Single writer. The pragma below is per connection, so the one
	// connection must also never be recycled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		_ = db.Close()
		return nil, fmt.Errorf("foreign key enforcement is not active (value %d): %v", fk, err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) querier() querier {
	return t.tx
}

func (s *SQLiteStorage) querier() querier {
	return s.db
}

// isUniqueViolation matches the constraint message both drivers produce
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// expectOne maps a zero rows-affected result to ErrNotFound
func expectOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Customer operations

func (s *SQLiteStorage) createCustomerWithQuerier(ctx context.Context, q querier, c *types.Customer) error {
	result, err := q.ExecContext(ctx,
		`INSERT INTO customers (name, email, phone) VALUES (?, ?, ?)`,
		c.Name, nullString(c.Email), nullString(c.Phone))
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *SQLiteStorage) CreateCustomer(ctx context.Context, c *types.Customer) error {
	return s.createCustomerWithQuerier(ctx, s.querier(), c)
}

func (s *SQLiteStorage) updateCustomerWithQuerier(ctx context.Context, q querier, c *types.Customer) error {
	result, err := q.ExecContext(ctx,
		`UPDATE customers SET name = ?, email = ?, phone = ? WHERE id = ?`,
		c.Name, nullString(c.Email), nullString(c.Phone), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) UpdateCustomer(ctx context.Context, c *types.Customer) error {
	return s.updateCustomerWithQuerier(ctx, s.querier(), c)
}

func scanCustomer(row interface{ Scan(...interface{}) error }) (*types.Customer, error) {
	var c types.Customer
	var email, phone sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &email, &phone); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.Phone = phone.String
	return &c, nil
}

func (s *SQLiteStorage) getCustomerWithQuerier(ctx context.Context, q querier, id int64) (*types.Customer, error) {
	c, err := scanCustomer(q.QueryRowContext(ctx,
		`SELECT id, name, email, phone FROM customers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SQLiteStorage) GetCustomer(ctx context.Context, id int64) (*types.Customer, error) {
	return s.getCustomerWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) listCustomersWithQuerier(ctx context.Context, q querier) ([]*types.Customer, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, email, phone FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []*types.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *SQLiteStorage) ListCustomers(ctx context.Context) ([]*types.Customer, error) {
	return s.listCustomersWithQuerier(ctx, s.querier())
}

// deleteCustomerWithQuerier relies on ON DELETE CASCADE to remove the customer's orders and their items
func (s *SQLiteStorage) deleteCustomerWithQuerier(ctx context.Context, q querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) DeleteCustomer(ctx context.Context, id int64) error {
	return s.deleteCustomerWithQuerier(ctx, s.querier(), id)
}

// Product operations

func (s *SQLiteStorage) createProductWithQuerier(ctx context.Context, q querier, p *types.Product) error {
	result, err := q.ExecContext(ctx,
		`INSERT INTO products (name, unit_price) VALUES (?, ?)`, p.Name, p.UnitPrice.String())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: product %q", ErrAlreadyExists, p.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *SQLiteStorage) CreateProduct(ctx context.Context, p *types.Product) error {
	return s.createProductWithQuerier(ctx, s.querier(), p)
}

// updateProductWithQuerier only touches the catalog. Line items keep the price they captured.
func (s *SQLiteStorage) updateProductWithQuerier(ctx context.Context, q querier, p *types.Product) error {
	result, err := q.ExecContext(ctx,
		`UPDATE products SET name = ?, unit_price = ? WHERE id = ?`, p.Name, p.UnitPrice.String(), p.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: product %q", ErrAlreadyExists, p.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) UpdateProduct(ctx context.Context, p *types.Product) error {
	return s.updateProductWithQuerier(ctx, s.querier(), p)
}

func scanProduct(row interface{ Scan(...interface{}) error }) (*types.Product, error) {
	var p types.Product
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStorage) getProductWithQuerier(ctx context.Context, q querier, where string, arg interface{}) (*types.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx,
		`SELECT id, name, unit_price FROM products WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStorage) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	return s.getProductWithQuerier(ctx, s.querier(), "id = ?", id)
}

func (s *SQLiteStorage) GetProductByName(ctx context.Context, name string) (*types.Product, error) {
	return s.getProductWithQuerier(ctx, s.querier(), "name = ?", name)
}

func (s *SQLiteStorage) listProductsWithQuerier(ctx context.Context, q querier) ([]*types.Product, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, unit_price FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []*types.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]*types.Product, error) {
	return s.listProductsWithQuerier(ctx, s.querier())
}

func (s *SQLiteStorage) deleteProductWithQuerier(ctx context.Context, q querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) DeleteProduct(ctx context.Context, id int64) error {
	return s.deleteProductWithQuerier(ctx, s.querier(), id)
}

// Order operations

func (s *SQLiteStorage) createOrderWithQuerier(ctx context.Context, q querier, o *types.Order) error {
	result, err := q.ExecContext(ctx,
		`INSERT INTO orders (customer_id, date, total) VALUES (?, ?, ?)`,
		o.CustomerID, o.Date, o.Total.String())
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func (s *SQLiteStorage) CreateOrder(ctx context.Context, o *types.Order) error {
	return s.createOrderWithQuerier(ctx, s.querier(), o)
}

func (s *SQLiteStorage) updateOrderWithQuerier(ctx context.Context, q querier, o *types.Order) error {
	result, err := q.ExecContext(ctx,
		`UPDATE orders SET customer_id = ?, date = ?, total = ? WHERE id = ?`,
		o.CustomerID, o.Date, o.Total.String(), o.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) UpdateOrder(ctx context.Context, o *types.Order) error {
	return s.updateOrderWithQuerier(ctx, s.querier(), o)
}

const orderColumns = `o.id, o.customer_id, c.name, o.date, o.total`

func scanOrder(row interface{ Scan(...interface{}) error }) (*types.Order, error) {
	var o types.Order
	if err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.Date, &o.Total); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLiteStorage) getOrderWithQuerier(ctx context.Context, q querier, id int64) (*types.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o JOIN customers c ON o.customer_id = c.id WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *SQLiteStorage) GetOrder(ctx context.Context, id int64) (*types.Order, error) {
	return s.getOrderWithQuerier(ctx, s.querier(), id)
}

func (s *SQLiteStorage) listOrdersWithQuerier(ctx context.Context, q querier, filter *OrderFilter) ([]*types.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o JOIN customers c ON o.customer_id = c.id WHERE 1 = 1`
	var args []interface{}
	if filter != nil {
		if filter.From != "" {
			query += " AND o.date >= ?"
			args = append(args, filter.From)
		}
		if filter.To != "" {
			query += " AND o.date <= ?"
			args = append(args, filter.To)
		}
		if filter.CustomerID != 0 {
			query += " AND o.customer_id = ?"
			args = append(args, filter.CustomerID)
		}
	}
	query += " ORDER BY o.date DESC, o.id DESC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var orders []*types.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *SQLiteStorage) ListOrders(ctx context.Context, filter *OrderFilter) ([]*types.Order, error) {
	return s.listOrdersWithQuerier(ctx, s.querier(), filter)
}

func (s *SQLiteStorage) deleteOrderWithQuerier(ctx context.Context, q querier, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStorage) DeleteOrder(ctx context.Context, id int64) error {
	return s.deleteOrderWithQuerier(ctx, s.querier(), id)
}

// Line item operations

func (s *SQLiteStorage) insertLineItemWithQuerier(ctx context.Context, q querier, item *types.LineItem) error {
	result, err := q.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_name, quantity, unit_price) VALUES (?, ?, ?, ?)`,
		item.OrderID, item.ProductName, item.Quantity, item.UnitPrice.String())
	if err != nil {
		return fmt.Errorf("failed to insert line item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (s *SQLiteStorage) InsertLineItem(ctx context.Context, item *types.LineItem) error {
	return s.insertLineItemWithQuerier(ctx, s.querier(), item)
}

func (s *SQLiteStorage) listLineItemsWithQuerier(ctx context.Context, q querier, orderID int64) ([]types.LineItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_name, quantity, unit_price FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []types.LineItem
	for rows.Next() {
		var item types.LineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteStorage) ListLineItems(ctx context.Context, orderID int64) ([]types.LineItem, error) {
	return s.listLineItemsWithQuerier(ctx, s.querier(), orderID)
}

func (s *SQLiteStorage) deleteLineItemsWithQuerier(ctx context.Context, q querier, orderID int64) (int, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete line items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStorage) DeleteLineItems(ctx context.Context, orderID int64) (int, error) {
	return s.deleteLineItemsWithQuerier(ctx, s.querier(), orderID)
}

// Aggregate queries

func (s *SQLiteStorage) getStatsWithQuerier(ctx context.Context, q querier) (*Stats, error) {
	var stats Stats
	err := q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM order_items)
	`).Scan(&stats.Customers, &stats.Products, &stats.Orders, &stats.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

func (s *SQLiteStorage) GetStats(ctx context.Context) (*Stats, error) {
	return s.getStatsWithQuerier(ctx, s.querier())
}

func (s *SQLiteStorage) productSalesWithQuerier(ctx context.Context, q querier, limit int) ([]ProductSales, error) {
	query := `
		SELECT product_name, SUM(quantity) AS sold
		FROM order_items
		GROUP BY product_name
		ORDER BY sold DESC, product_name
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query product sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sales []ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductName, &ps.Quantity); err != nil {
			return nil, err
		}
		sales = append(sales, ps)
	}
	return sales, rows.Err()
}

func (s *SQLiteStorage) ProductSales(ctx context.Context, limit int) ([]ProductSales, error) {
	return s.productSalesWithQuerier(ctx, s.querier(), limit)
}

// customerSpendWithQuerier sums totals in Go because SQL SUM over TEXT money would go through REAL
func (s *SQLiteStorage) customerSpendWithQuerier(ctx context.Context, q querier) ([]CustomerSpend, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.id, c.name, o.total
		FROM orders o
		JOIN customers c ON o.customer_id = c.id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var spend []CustomerSpend
	for rows.Next() {
		var (
			id    int64
			name  string
			total decimal.Decimal
		)
		if err := rows.Scan(&id, &name, &total); err != nil {
			return nil, err
		}
		if n := len(spend); n > 0 && spend[n-1].CustomerID == id {
			spend[n-1].Orders++
			spend[n-1].Spend = spend[n-1].Spend.Add(total)
			continue
		}
		spend = append(spend, CustomerSpend{CustomerID: id, Name: name, Orders: 1, Spend: total})
	}
	return spend, rows.Err()
}

func (s *SQLiteStorage) CustomerSpend(ctx context.Context) ([]CustomerSpend, error) {
	return s.customerSpendWithQuerier(ctx, s.querier())
}

// Transaction methods - delegate to storage with transaction querier

func (t *sqliteTx) CreateCustomer(ctx context.Context, c *types.Customer) error {
	return t.storage.createCustomerWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) UpdateCustomer(ctx context.Context, c *types.Customer) error {
	return t.storage.updateCustomerWithQuerier(ctx, t.querier(), c)
}

func (t *sqliteTx) GetCustomer(ctx context.Context, id int64) (*types.Customer, error) {
	return t.storage.getCustomerWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListCustomers(ctx context.Context) ([]*types.Customer, error) {
	return t.storage.listCustomersWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteCustomer(ctx context.Context, id int64) error {
	return t.storage.deleteCustomerWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) CreateProduct(ctx context.Context, p *types.Product) error {
	return t.storage.createProductWithQuerier(ctx, t.querier(), p)
}

func (t *sqliteTx) UpdateProduct(ctx context.Context, p *types.Product) error {
	return t.storage.updateProductWithQuerier(ctx, t.querier(), p)
}

func (t *sqliteTx) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	return t.storage.getProductWithQuerier(ctx, t.querier(), "id = ?", id)
}

func (t *sqliteTx) GetProductByName(ctx context.Context, name string) (*types.Product, error) {
	return t.storage.getProductWithQuerier(ctx, t.querier(), "name = ?", name)
}

func (t *sqliteTx) ListProducts(ctx context.Context) ([]*types.Product, error) {
	return t.storage.listProductsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteProduct(ctx context.Context, id int64) error {
	return t.storage.deleteProductWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) CreateOrder(ctx context.Context, o *types.Order) error {
	return t.storage.createOrderWithQuerier(ctx, t.querier(), o)
}

func (t *sqliteTx) UpdateOrder(ctx context.Context, o *types.Order) error {
	return t.storage.updateOrderWithQuerier(ctx, t.querier(), o)
}

func (t *sqliteTx) GetOrder(ctx context.Context, id int64) (*types.Order, error) {
	return t.storage.getOrderWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListOrders(ctx context.Context, filter *OrderFilter) ([]*types.Order, error) {
	return t.storage.listOrdersWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) DeleteOrder(ctx context.Context, id int64) error {
	return t.storage.deleteOrderWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) InsertLineItem(ctx context.Context, item *types.LineItem) error {
	return t.storage.insertLineItemWithQuerier(ctx, t.querier(), item)
}

func (t *sqliteTx) ListLineItems(ctx context.Context, orderID int64) ([]types.LineItem, error) {
	return t.storage.listLineItemsWithQuerier(ctx, t.querier(), orderID)
}

func (t *sqliteTx) DeleteLineItems(ctx context.Context, orderID int64) (int, error) {
	return t.storage.deleteLineItemsWithQuerier(ctx, t.querier(), orderID)
}

func (t *sqliteTx) GetStats(ctx context.Context) (*Stats, error) {
	return t.storage.getStatsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) ProductSales(ctx context.Context, limit int) ([]ProductSales, error) {
	return t.storage.productSalesWithQuerier(ctx, t.querier(), limit)
}

func (t *sqliteTx) CustomerSpend(ctx context.Context) ([]CustomerSpend, error) {
	return t.storage.customerSpendWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, ErrNestedTx
}
