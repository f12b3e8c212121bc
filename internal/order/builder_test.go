package order

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/pkg/types"
)

type fixture struct {
	store    *storage.SQLiteStorage
	customer *types.Customer
}

func setupFixture(t *testing.T) *fixture {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	for name, price := range map[string]string{"widget": "3.50", "gadget": "10.00", "gizmo": "0.10", "doohickey": "0.20"} {
		require.NoError(t, store.CreateProduct(ctx, &types.Product{Name: name, UnitPrice: decimal.RequireFromString(price)}))
	}
	c := &types.Customer{Name: "Ana"}
	require.NoError(t, store.CreateCustomer(ctx, c))

	return &fixture{store: store, customer: c}
}

func (f *fixture) rowCounts(t *testing.T) (orders, items int) {
	stats, err := f.store.GetStats(context.Background())
	require.NoError(t, err)
	return stats.Orders, stats.LineItems
}

// failingStore injects a failure into the line item insert phase of a save
type failingStore struct {
	*storage.SQLiteStorage
	failAfter int
}

func (f *failingStore) BeginTx(ctx context.Context) (storage.Tx, error) {
	tx, err := f.SQLiteStorage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, failAfter: f.failAfter}, nil
}

type failingTx struct {
	storage.Tx
	inserted  int
	failAfter int
}

func (t *failingTx) InsertLineItem(ctx context.Context, item *types.LineItem) error {
	if t.inserted >= t.failAfter {
		return errors.New("disk I/O error")
	}
	t.inserted++
	return t.Tx.InsertLineItem(ctx, item)
}

func TestAddLineItem_CapturesCatalogPrice(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)

	item, err := b.AddLineItem(ctx, "widget", 2)
	require.NoError(t, err)
	assert.Equal(t, "3.50", item.UnitPrice.StringFixed(2))
	assert.Equal(t, "7.00", b.Total().StringFixed(2))

	// a later catalog change does not touch the captured price
	p, err := f.store.GetProductByName(ctx, "widget")
	require.NoError(t, err)
	p.UnitPrice = decimal.RequireFromString("99")
	require.NoError(t, f.store.UpdateProduct(ctx, p))

	assert.Equal(t, "3.50", b.Items()[0].UnitPrice.StringFixed(2))

	o, err := b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)
	stored, err := f.store.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "3.50", stored[0].UnitPrice.StringFixed(2))
}

func TestAddLineItem_UnknownProduct(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 1)
	require.NoError(t, err)

	_, err = b.AddLineItem(ctx, "sprocket", 1)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindNotFound))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Len(t, b.Items(), 1)
	assert.Equal(t, "3.50", b.Total().StringFixed(2))
}

func TestAddLineItem_Validation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)

	for _, qty := range []int{0, -3} {
		_, err := b.AddLineItem(ctx, "widget", qty)
		assert.True(t, types.IsKind(err, types.KindValidation))
		assert.ErrorIs(t, err, types.ErrInvalidQuantity)
	}

	_, err := b.AddLineItem(ctx, "", 1)
	assert.ErrorIs(t, err, types.ErrMissingName)

	assert.Empty(t, b.Items())
	assert.True(t, b.Total().IsZero())
}

func TestRemoveLineItem(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)

	for _, name := range []string{"widget", "gadget", "gizmo"} {
		_, err := b.AddLineItem(ctx, name, 1)
		require.NoError(t, err)
	}

	require.NoError(t, b.RemoveLineItem(1))
	items := b.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "widget", items[0].ProductName)
	assert.Equal(t, "gizmo", items[1].ProductName)
	assert.Equal(t, "3.60", b.Total().StringFixed(2))

	for _, idx := range []int{-1, 2, 10} {
		err := b.RemoveLineItem(idx)
		assert.ErrorIs(t, err, types.ErrIndexOutOfRange)
		assert.True(t, types.IsKind(err, types.KindValidation))
	}
	assert.Len(t, b.Items(), 2)
}

func TestComputeTotal_MatchesExactSum(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	prices := map[string]decimal.Decimal{}
	products, err := f.store.ListProducts(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(products))
	for _, p := range products {
		prices[p.Name] = p.UnitPrice
		names = append(names, p.Name)
	}

	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		b := NewBuilder(f.store, f.store)
		type line struct {
			name string
			qty  int
		}
		var model []line

		for step := 0; step < 40; step++ {
			if len(model) > 0 && rng.Intn(3) == 0 {
				idx := rng.Intn(len(model))
				require.NoError(t, b.RemoveLineItem(idx))
				model = append(model[:idx], model[idx+1:]...)
				continue
			}
			l := line{name: names[rng.Intn(len(names))], qty: 1 + rng.Intn(9)}
			_, err := b.AddLineItem(ctx, l.name, l.qty)
			require.NoError(t, err)
			model = append(model, l)
		}

		want := decimal.Zero
		for _, l := range model {
			want = want.Add(prices[l.name].Mul(decimal.NewFromInt(int64(l.qty))))
		}
		require.True(t, want.Equal(b.ComputeTotal()), "run %d: want %s got %s\n%s", run, want, b.ComputeTotal(), spew.Sdump(b.Items()))
		require.True(t, b.Total().Equal(b.ComputeTotal()), "running total drifted in run %d", run)
	}
}

func TestComputeTotal_NoFloatDrift(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)

	// 0.1 + 0.2 is not 0.3 in binary floating point
	_, err := b.AddLineItem(ctx, "gizmo", 1)
	require.NoError(t, err)
	_, err = b.AddLineItem(ctx, "doohickey", 1)
	require.NoError(t, err)

	assert.True(t, b.ComputeTotal().Equal(decimal.RequireFromString("0.3")))
}

func TestSave_NewOrder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 2)
	require.NoError(t, err)
	_, err = b.AddLineItem(ctx, "gadget", 1)
	require.NoError(t, err)

	o, err := b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)
	assert.Greater(t, o.ID, int64(0))
	assert.Equal(t, "17.00", o.Total.StringFixed(2))
	assert.Equal(t, StateCommitted, b.State())
	assert.Equal(t, o.ID, b.OrderID())

	stored, err := f.store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("17")))

	items, err := f.store.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, o.ID, item.OrderID)
	}
}

func TestSave_EmptyOrder(t *testing.T) {
	f := setupFixture(t)
	b := NewBuilder(f.store, f.store)

	_, err := b.Save(context.Background(), f.customer.ID, "2024-05-01")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.KindValidation))
	assert.ErrorIs(t, err, types.ErrEmptyOrder)

	orders, items := f.rowCounts(t)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	assert.Equal(t, StateDraft, b.State())
}

func TestSave_ValidationFailures(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		customerID int64
		date       string
		target     error
	}{
		{"malformed date", f.customer.ID, "01/05/2024", types.ErrInvalidDate},
		{"impossible date", f.customer.ID, "2024-02-30", types.ErrInvalidDate},
		{"empty date", f.customer.ID, "", types.ErrInvalidDate},
		{"missing customer", 999, "2024-05-01", storage.ErrNotFound},
		{"zero customer", 0, "2024-05-01", types.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(f.store, f.store)
			_, err := b.AddLineItem(ctx, "widget", 1)
			require.NoError(t, err)

			_, err = b.Save(ctx, tt.customerID, tt.date)
			require.Error(t, err)
			assert.True(t, types.IsKind(err, types.KindValidation), "kind %v", types.KindOf(err))
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, StateDraft, b.State())

			orders, items := f.rowCounts(t)
			assert.Zero(t, orders)
			assert.Zero(t, items)
		})
	}
}

func TestSave_SecondSaveRejected(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 1)
	require.NoError(t, err)

	_, err = b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)

	_, err = b.Save(ctx, f.customer.ID, "2024-05-01")
	assert.ErrorIs(t, err, types.ErrAlreadyCommitted)
	_, err = b.AddLineItem(ctx, "gadget", 1)
	assert.ErrorIs(t, err, types.ErrAlreadyCommitted)
	assert.ErrorIs(t, b.RemoveLineItem(0), types.ErrAlreadyCommitted)

	orders, items := f.rowCounts(t)
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, items)
}

func TestSave_EditReplacesItems(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 2)
	require.NoError(t, err)
	_, err = b.AddLineItem(ctx, "gadget", 1)
	require.NoError(t, err)
	o, err := b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)

	edit, err := Load(ctx, f.store, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StateDraft, edit.State())
	assert.Equal(t, f.customer.ID, edit.CustomerID())
	assert.Equal(t, "2024-05-01", edit.Date())
	require.Len(t, edit.Items(), 2)
	assert.True(t, edit.Total().Equal(o.Total))

	require.NoError(t, edit.RemoveLineItem(0))
	saved, err := edit.Save(ctx, f.customer.ID, "2024-05-02")
	require.NoError(t, err)
	assert.Equal(t, o.ID, saved.ID)

	items, err := f.store.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gadget", items[0].ProductName)

	stored, err := f.store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", stored.Total.StringFixed(2))
	assert.Equal(t, "2024-05-02", stored.Date)

	orders, total := f.rowCounts(t)
	assert.Equal(t, 1, orders)
	assert.Equal(t, 1, total)
}

func TestSave_EditOfDeletedOrder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 1)
	require.NoError(t, err)
	o, err := b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)

	edit, err := Load(ctx, f.store, o.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteOrder(ctx, o.ID))

	_, err = edit.Save(ctx, f.customer.ID, "2024-05-01")
	assert.True(t, types.IsKind(err, types.KindNotFound))
}

func TestSave_RollbackOnItemInsertFailure(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, failAfter := range []int{0, 1} {
		store := &failingStore{SQLiteStorage: f.store, failAfter: failAfter}
		b := NewBuilder(store, store)
		_, err := b.AddLineItem(ctx, "widget", 2)
		require.NoError(t, err)
		_, err = b.AddLineItem(ctx, "gadget", 1)
		require.NoError(t, err)

		_, err = b.Save(ctx, f.customer.ID, "2024-05-01")
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.KindPersistence))
		assert.Equal(t, StateDraft, b.State())
		assert.Zero(t, b.OrderID())

		orders, items := f.rowCounts(t)
		assert.Zero(t, orders, "order row must be rolled back (failAfter=%d)", failAfter)
		assert.Zero(t, items)
	}
}

func TestSave_EditRollbackKeepsPreviousItems(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	b := NewBuilder(f.store, f.store)
	_, err := b.AddLineItem(ctx, "widget", 2)
	require.NoError(t, err)
	_, err = b.AddLineItem(ctx, "gadget", 1)
	require.NoError(t, err)
	o, err := b.Save(ctx, f.customer.ID, "2024-05-01")
	require.NoError(t, err)

	store := &failingStore{SQLiteStorage: f.store, failAfter: 0}
	edit, err := Load(ctx, store, o.ID)
	require.NoError(t, err)
	require.NoError(t, edit.RemoveLineItem(1))

	_, err = edit.Save(ctx, f.customer.ID, "2024-06-01")
	require.Error(t, err)

	items, err := f.store.ListLineItems(ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	stored, err := f.store.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", stored.Date)
	assert.Equal(t, "17.00", stored.Total.StringFixed(2))
}

func TestLoad_NotFound(t *testing.T) {
	f := setupFixture(t)
	_, err := Load(context.Background(), f.store, 42)
	assert.True(t, types.IsKind(err, types.KindNotFound))
}
