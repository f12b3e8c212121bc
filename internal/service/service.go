package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dshills/orderdesk/internal/actionlog"
	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/internal/summarizer"
	"github.com/dshills/orderdesk/pkg/types"
)

// Options wires a Service to its collaborators
type Options struct {
	Store      storage.Storage
	ActionLog  *actionlog.Log
	Summarizer summarizer.Summarizer // nil disables summaries
	Logger     *slog.Logger
	ExportDir  string
}

// Service is the application layer shared by the MCP and REST front ends.
// It owns the draft registry and translates store errors into kinds.
type Service struct {
	store      storage.Storage
	actions    *actionlog.Log
	summarizer summarizer.Summarizer
	logger     *slog.Logger
	exportDir  string
	now        func() time.Time

	mu     sync.Mutex
	drafts map[string]*draft
}

// New creates a Service. Store and ActionLog are required.
func New(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("service: store is required")
	}
	if opts.ActionLog == nil {
		return nil, errors.New("service: action log is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      opts.Store,
		actions:    opts.ActionLog,
		summarizer: opts.Summarizer,
		logger:     logger,
		exportDir:  opts.ExportDir,
		now:        time.Now,
		drafts:     make(map[string]*draft),
	}, nil
}

// Close releases the summarizer. The store is owned by the caller.
func (s *Service) Close() error {
	if s.summarizer != nil {
		return s.summarizer.Close()
	}
	return nil
}

// record appends a successful action to the audit log
func (s *Service) record(format string, args ...interface{}) {
	if err := s.actions.Recordf(format, args...); err != nil {
		s.logger.Warn("failed to record action", "error", err)
	}
}

// fail logs and records persistence and provider failures, then returns err
func (s *Service) fail(op string, err error) error {
	switch types.KindOf(err) {
	case types.KindPersistence, types.KindExternalService:
		s.logger.Error("operation failed", "op", op, "kind", types.KindOf(err).String(), "error", err)
		s.record("ERROR: %s: %v", op, err)
	default:
		s.logger.Debug("operation rejected", "op", op, "error", err)
	}
	return err
}

// storeErr maps a store error to NotFound or Persistence
func storeErr(op string, err error, what string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return types.NotFoundf(op, err, "%s %d", what, id)
	}
	return types.Persistence(op, err)
}

// Customers

// CreateCustomer validates and stores a new customer
func (s *Service) CreateCustomer(ctx context.Context, c types.Customer) (*types.Customer, error) {
	const op = "create customer"
	c.ID = 0
	trimCustomer(&c)
	if err := c.Validate(); err != nil {
		return nil, types.Validation(op, err)
	}
	if err := s.store.CreateCustomer(ctx, &c); err != nil {
		return nil, s.fail(op, types.Persistence(op, err))
	}
	s.record("Customer created: ID %d, name %s", c.ID, c.Name)
	return &c, nil
}

// UpdateCustomer replaces name, email and phone of an existing customer
func (s *Service) UpdateCustomer(ctx context.Context, c types.Customer) (*types.Customer, error) {
	const op = "update customer"
	if c.ID <= 0 {
		return nil, types.Validationf(op, types.ErrInvalidID, "customer id %d", c.ID)
	}
	trimCustomer(&c)
	if err := c.Validate(); err != nil {
		return nil, types.Validation(op, err)
	}
	if err := s.store.UpdateCustomer(ctx, &c); err != nil {
		return nil, s.fail(op, storeErr(op, err, "customer", c.ID))
	}
	s.record("Customer updated: ID %d", c.ID)
	return &c, nil
}

// GetCustomer returns one customer
func (s *Service) GetCustomer(ctx context.Context, id int64) (*types.Customer, error) {
	const op = "get customer"
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, s.fail(op, storeErr(op, err, "customer", id))
	}
	return c, nil
}

// ListCustomers returns all customers ordered by name
func (s *Service) ListCustomers(ctx context.Context) ([]*types.Customer, error) {
	const op = "list customers"
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, s.fail(op, types.Persistence(op, err))
	}
	return customers, nil
}

// DeleteCustomer removes a customer together with all of their orders and items
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	const op = "delete customer"
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return s.fail(op, storeErr(op, err, "customer", id))
	}
	s.record("Customer deleted: ID %d (orders cascaded)", id)
	return nil
}

func trimCustomer(c *types.Customer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
}

// Products

// CreateProduct adds a catalog entry. price is a decimal string such as "3.50".
func (s *Service) CreateProduct(ctx context.Context, name, price string) (*types.Product, error) {
	const op = "create product"
	p, err := newProduct(op, 0, name, price)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, s.fail(op, productErr(op, err, p))
	}
	s.record("Product created: ID %d, %s at %s", p.ID, p.Name, p.UnitPrice.StringFixed(2))
	return p, nil
}

// UpdateProduct changes name and price. Saved line items keep the price they captured.
func (s *Service) UpdateProduct(ctx context.Context, id int64, name, price string) (*types.Product, error) {
	const op = "update product"
	if id <= 0 {
		return nil, types.Validationf(op, types.ErrInvalidID, "product id %d", id)
	}
	p, err := newProduct(op, id, name, price)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, s.fail(op, productErr(op, err, p))
	}
	s.record("Product updated: ID %d, %s at %s", p.ID, p.Name, p.UnitPrice.StringFixed(2))
	return p, nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, id int64) (*types.Product, error) {
	const op = "get product"
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, s.fail(op, storeErr(op, err, "product", id))
	}
	return p, nil
}

// ListProducts returns the catalog ordered by name
func (s *Service) ListProducts(ctx context.Context) ([]*types.Product, error) {
	const op = "list products"
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, s.fail(op, types.Persistence(op, err))
	}
	return products, nil
}

// DeleteProduct removes a catalog entry. Existing line items are snapshots and stay.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	const op = "delete product"
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return s.fail(op, storeErr(op, err, "product", id))
	}
	s.record("Product deleted: ID %d", id)
	return nil
}

func newProduct(op string, id int64, name, price string) (*types.Product, error) {
	unitPrice, err := types.ParsePrice(price)
	if err != nil {
		return nil, types.Validation(op, err)
	}
	p := &types.Product{ID: id, Name: strings.TrimSpace(name), UnitPrice: unitPrice}
	if err := p.Validate(); err != nil {
		return nil, types.Validation(op, err)
	}
	return p, nil
}

func productErr(op string, err error, p *types.Product) error {
	if errors.Is(err, storage.ErrAlreadyExists) {
		return types.Validationf(op, err, "product %q", p.Name)
	}
	return storeErr(op, err, "product", p.ID)
}

// History returns the last limit action-log entries, oldest first
func (s *Service) History(limit int) ([]string, error) {
	const op = "history"
	entries, err := s.actions.Read(limit)
	if errors.Is(err, actionlog.ErrNoHistory) {
		return nil, types.NotFoundf(op, err, "action log %s", s.actions.Path())
	}
	if err != nil {
		return nil, s.fail(op, types.Persistence(op, fmt.Errorf("read action log: %w", err)))
	}
	return entries, nil
}
