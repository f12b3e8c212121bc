package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dshills/orderdesk/internal/order"
	"github.com/dshills/orderdesk/pkg/types"
)

// Draft registry errors
var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrDraftBusy     = errors.New("draft is being modified by another request")
)

type draft struct {
	lock    draftLock
	builder *order.Builder
	created time.Time
}

// DraftView is a snapshot of a draft for display
type DraftView struct {
	ID         string           `json:"draft_id"`
	OrderID    int64            `json:"order_id,omitempty"`
	CustomerID int64            `json:"customer_id,omitempty"`
	Date       string           `json:"date,omitempty"`
	State      string           `json:"state"`
	Items      []types.LineItem `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	Created    time.Time        `json:"created"`
}

func (s *Service) register(b *order.Builder) *DraftView {
	d := &draft{builder: b, created: s.now()}
	id := uuid.NewString()

	s.mu.Lock()
	s.drafts[id] = d
	s.mu.Unlock()

	return view(id, d)
}

func view(id string, d *draft) *DraftView {
	b := d.builder
	return &DraftView{
		ID:         id,
		OrderID:    b.OrderID(),
		CustomerID: b.CustomerID(),
		Date:       b.Date(),
		State:      b.State().String(),
		Items:      b.Items(),
		Total:      b.Total(),
		Created:    d.created,
	}
}

// withDraft runs fn while holding the draft's lock
func (s *Service) withDraft(op, id string, fn func(d *draft) error) error {
	s.mu.Lock()
	d, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok {
		return types.NotFoundf(op, ErrDraftNotFound, "draft %s", id)
	}
	if !d.lock.TryAcquire() {
		return ErrDraftBusy
	}
	defer d.lock.Release()
	return fn(d)
}

// StartOrder registers an empty draft for a new order
func (s *Service) StartOrder() *DraftView {
	v := s.register(order.NewBuilder(s.store, s.store))
	s.logger.Debug("draft started", "draft_id", v.ID)
	return v
}

// EditOrder registers a draft pre-filled with a saved order's items
func (s *Service) EditOrder(ctx context.Context, orderID int64) (*DraftView, error) {
	const op = "edit order"
	b, err := order.Load(ctx, s.store, orderID)
	if err != nil {
		return nil, s.fail(op, err)
	}
	v := s.register(b)
	s.logger.Debug("draft loaded", "draft_id", v.ID, "order_id", orderID)
	return v, nil
}

// Draft returns the current state of a draft
func (s *Service) Draft(id string) (*DraftView, error) {
	var v *DraftView
	err := s.withDraft("get draft", id, func(d *draft) error {
		v = view(id, d)
		return nil
	})
	return v, err
}

// AddItem adds productName at its current catalog price
func (s *Service) AddItem(ctx context.Context, id, productName string, quantity int) (*DraftView, error) {
	const op = "add line item"
	var v *DraftView
	err := s.withDraft(op, id, func(d *draft) error {
		if _, err := d.builder.AddLineItem(ctx, productName, quantity); err != nil {
			return err
		}
		v = view(id, d)
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	return v, nil
}

// RemoveItem removes the item at a zero-based index
func (s *Service) RemoveItem(id string, index int) (*DraftView, error) {
	const op = "remove line item"
	var v *DraftView
	err := s.withDraft(op, id, func(d *draft) error {
		if err := d.builder.RemoveLineItem(index); err != nil {
			return err
		}
		v = view(id, d)
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}
	return v, nil
}

// SaveDraft persists the draft as one transaction. The draft stays
// registered in the committed state, so a repeated save is rejected.
func (s *Service) SaveDraft(ctx context.Context, id string, customerID int64, date string) (*types.Order, error) {
	const op = "save order"
	var (
		saved  *types.Order
		editOf int64
	)
	err := s.withDraft(op, id, func(d *draft) error {
		editOf = d.builder.OrderID()
		o, err := d.builder.Save(ctx, customerID, date)
		if err != nil {
			return err
		}
		saved = o
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	if editOf != 0 {
		s.record("Order updated: ID %d, customer ID %d, total %s, %d items", saved.ID, saved.CustomerID, saved.Total.StringFixed(2), len(saved.Items))
	} else {
		s.record("Order created: ID %d, customer ID %d, total %s, %d items", saved.ID, saved.CustomerID, saved.Total.StringFixed(2), len(saved.Items))
	}
	s.logger.Info("order saved", "order_id", saved.ID, "customer_id", saved.CustomerID, "total", saved.Total.String(), "edit", editOf != 0)
	return saved, nil
}

// DiscardDraft drops a draft. Nothing was persisted for it unless it was saved.
func (s *Service) DiscardDraft(id string) error {
	s.mu.Lock()
	d, ok := s.drafts[id]
	if ok && !d.lock.TryAcquire() {
		s.mu.Unlock()
		return ErrDraftBusy
	}
	delete(s.drafts, id)
	s.mu.Unlock()

	if !ok {
		return types.NotFoundf("discard draft", ErrDraftNotFound, "draft %s", id)
	}
	return nil
}

// DraftCount returns the number of registered drafts
func (s *Service) DraftCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
