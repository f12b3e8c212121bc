package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/pkg/types"
)

// Catalog resolves a product name to its current catalog entry
type Catalog interface {
	GetProductByName(ctx context.Context, name string) (*types.Product, error)
}

// TxBeginner opens the transaction an order is saved in
type TxBeginner interface {
	BeginTx(ctx context.Context) (storage.Tx, error)
}

// Store is everything Load needs to rebuild a draft from a saved order
type Store interface {
	Catalog
	TxBeginner
	GetOrder(ctx context.Context, id int64) (*types.Order, error)
	ListLineItems(ctx context.Context, orderID int64) ([]types.LineItem, error)
}

// State is the builder lifecycle state
type State int

const (
	// StateDraft accumulates items. A draft either has no identity yet or
	// was loaded from an existing order for editing.
	StateDraft State = iota
	// StateCommitted follows a successful Save. The builder is frozen.
	StateCommitted
)

func (s State) String() string {
	if s == StateCommitted {
		return "committed"
	}
	return "draft"
}

// Builder assembles an order and its line items in memory and persists them
// as one unit. A Builder is not safe for concurrent use.
type Builder struct {
	catalog Catalog
	store   TxBeginner

	orderID    int64 // zero until saved, unless loaded for editing
	customerID int64
	date       string
	items      []types.LineItem
	total      decimal.Decimal
	state      State
}

// NewBuilder returns an empty draft for a new order
func NewBuilder(catalog Catalog, store TxBeginner) *Builder {
	return &Builder{
		catalog: catalog,
		store:   store,
		total:   decimal.Zero,
	}
}

// Load returns a draft pre-filled with a saved order's items, for editing.
// Items keep their captured prices; they are not re-priced from the catalog.
func Load(ctx context.Context, store Store, orderID int64) (*Builder, error) {
	o, err := store.GetOrder(ctx, orderID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.NotFoundf("load order", err, "order %d", orderID)
	}
	if err != nil {
		return nil, types.Persistence("load order", err)
	}

	items, err := store.ListLineItems(ctx, orderID)
	if err != nil {
		return nil, types.Persistence("load order", err)
	}

	b := NewBuilder(store, store)
	b.orderID = o.ID
	b.customerID = o.CustomerID
	b.date = o.Date
	for _, item := range items {
		item.ID = 0
		b.items = append(b.items, item)
	}
	b.total = b.ComputeTotal()
	return b, nil
}

// OrderID is the persisted identity, zero for an unsaved new order
func (b *Builder) OrderID() int64 { return b.orderID }

// CustomerID is the customer of a loaded or saved order
func (b *Builder) CustomerID() int64 { return b.customerID }

// Date is the date of a loaded or saved order
func (b *Builder) Date() string { return b.date }

// State reports whether the builder is still a draft
func (b *Builder) State() State { return b.state }

// Total is the running total maintained by AddLineItem and RemoveLineItem
func (b *Builder) Total() decimal.Decimal { return b.total }

// Items returns a copy of the current line items in insertion order
func (b *Builder) Items() []types.LineItem {
	items := make([]types.LineItem, len(b.items))
	copy(items, b.items)
	return items
}

// AddLineItem appends productName at its current catalog price.
// On any error the item list and total are left untouched.
func (b *Builder) AddLineItem(ctx context.Context, productName string, quantity int) (types.LineItem, error) {
	const op = "add line item"
	if b.state == StateCommitted {
		return types.LineItem{}, types.Validation(op, types.ErrAlreadyCommitted)
	}
	if quantity <= 0 {
		return types.LineItem{}, types.Validationf(op, types.ErrInvalidQuantity, "got %d", quantity)
	}
	if productName == "" {
		return types.LineItem{}, types.Validation(op, types.ErrMissingName)
	}

	product, err := b.catalog.GetProductByName(ctx, productName)
	if errors.Is(err, storage.ErrNotFound) {
		return types.LineItem{}, types.NotFoundf(op, err, "product %q is not in the catalog", productName)
	}
	if err != nil {
		return types.LineItem{}, types.Persistence(op, err)
	}

	item := types.LineItem{
		OrderID:     b.orderID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.UnitPrice,
	}
	b.items = append(b.items, item)
	b.total = b.total.Add(item.Subtotal())
	return item, nil
}

// RemoveLineItem removes the item at index (insertion order)
func (b *Builder) RemoveLineItem(index int) error {
	const op = "remove line item"
	if b.state == StateCommitted {
		return types.Validation(op, types.ErrAlreadyCommitted)
	}
	if index < 0 || index >= len(b.items) {
		return types.Validationf(op, types.ErrIndexOutOfRange, "index %d, order has %d items", index, len(b.items))
	}

	b.items = append(b.items[:index], b.items[index+1:]...)
	b.total = b.ComputeTotal()
	return nil
}

// ComputeTotal returns the exact sum of quantity × unit price over the current items
func (b *Builder) ComputeTotal() decimal.Decimal {
	return types.SumItems(b.items)
}

// Save validates the draft and writes the order and all its items in one
// transaction. A new order inserts one order row and N item rows. An edited
// order is updated and its items are replaced wholesale. On failure nothing
// is written.
//
// A committed builder rejects further saves with ErrAlreadyCommitted; Load
// the order again to make more changes.
func (b *Builder) Save(ctx context.Context, customerID int64, orderDate string) (*types.Order, error) {
	const op = "save order"
	if b.state == StateCommitted {
		return nil, types.Validation(op, types.ErrAlreadyCommitted)
	}
	if len(b.items) == 0 {
		return nil, types.Validation(op, types.ErrEmptyOrder)
	}
	if _, err := types.ParseDate(orderDate); err != nil {
		return nil, types.Validationf(op, err, "%q", orderDate)
	}
	if customerID <= 0 {
		return nil, types.Validationf(op, types.ErrInvalidID, "customer id %d", customerID)
	}

	tx, err := b.store.BeginTx(ctx)
	if err != nil {
		return nil, types.Persistence(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Customer existence is checked inside the transaction that writes the order
	if _, err := tx.GetCustomer(ctx, customerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.Validationf(op, err, "customer %d does not exist", customerID)
		}
		return nil, types.Persistence(op, err)
	}

	o := &types.Order{
		ID:         b.orderID,
		CustomerID: customerID,
		Date:       orderDate,
		Total:      b.ComputeTotal(),
	}

	if o.ID == 0 {
		err = tx.CreateOrder(ctx, o)
	} else {
		err = b.replaceItems(ctx, tx, o)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, types.NotFoundf(op, err, "order %d", o.ID)
	}
	if err != nil {
		return nil, types.Persistence(op, err)
	}

	items := b.Items()
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = o.ID
		if err := tx.InsertLineItem(ctx, &items[i]); err != nil {
			return nil, types.Persistence(op, fmt.Errorf("line item %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, types.Persistence(op, err)
	}

	b.orderID = o.ID
	b.customerID = customerID
	b.date = orderDate
	b.items = items
	b.state = StateCommitted

	o.Items = b.Items()
	return o, nil
}

// replaceItems updates the order header and deletes every existing item row
func (b *Builder) replaceItems(ctx context.Context, tx storage.Tx, o *types.Order) error {
	if err := tx.UpdateOrder(ctx, o); err != nil {
		return err
	}
	_, err := tx.DeleteLineItems(ctx, o.ID)
	return err
}
