package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/pkg/types"
)

func item(name string, qty int, price string) types.LineItem {
	return types.LineItem{ProductName: name, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func setupStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s storage.Storage, customerID int64, date string, items ...types.LineItem) *types.Order {
	t.Helper()
	ctx := context.Background()
	o := &types.Order{CustomerID: customerID, Date: date, Total: types.SumItems(items)}
	require.NoError(t, s.CreateOrder(ctx, o))
	for i := range items {
		items[i].OrderID = o.ID
		require.NoError(t, s.InsertLineItem(ctx, &items[i]))
	}
	return o
}

// fixture: Ana has two orders, Bruno one order without items, Carla none.
func fixture(t *testing.T) (*storage.SQLiteStorage, map[string]int64) {
	t.Helper()
	ctx := context.Background()
	s := setupStore(t)

	ids := map[string]int64{}
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		c := &types.Customer{Name: name}
		require.NoError(t, s.CreateCustomer(ctx, c))
		ids[name] = c.ID
	}

	seed(t, s, ids["Ana"], "2024-05-01", item("widget", 2, "3.50"), item("gadget", 1, "10.00"))
	seed(t, s, ids["Bruno"], "2024-05-03")
	seed(t, s, ids["Ana"], "2024-06-10", item("widget", 4, "3.50"))
	return s, ids
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	s, ids := fixture(t)

	t.Run("newest first with items", func(t *testing.T) {
		reports, err := Build(ctx, s, Filter{})
		require.NoError(t, err)
		require.Len(t, reports, 3)

		assert.Equal(t, "2024-06-10", reports[0].Date)
		assert.Equal(t, "2024-05-03", reports[1].Date)
		assert.Equal(t, "2024-05-01", reports[2].Date)

		assert.Equal(t, "Ana", reports[2].CustomerName)
		require.Len(t, reports[2].Items, 2)
		assert.Equal(t, "widget x 2, gadget x 1", reports[2].ItemsSummary)
		assert.Empty(t, reports[1].Items)
	})

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			name   string
			filter Filter
			want   int
		}{
			{"from only", Filter{From: "2024-05-02"}, 2},
			{"to only", Filter{To: "2024-05-31"}, 2},
			{"range", Filter{From: "2024-05-02", To: "2024-05-31"}, 1},
			{"customer", Filter{CustomerID: ids["Ana"]}, 2},
			{"customer without orders", Filter{CustomerID: ids["Carla"]}, 0},
			{"limit", Filter{Limit: 1}, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				reports, err := Build(ctx, s, tt.filter)
				require.NoError(t, err)
				assert.Len(t, reports, tt.want)
			})
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		for _, f := range []Filter{{From: "05/01/2024"}, {To: "2024-13-01"}, {From: "2024-06-01", To: "2024-05-01"}} {
			_, err := Build(ctx, s, f)
			assert.True(t, types.IsKind(err, types.KindValidation), "filter %+v: %v", f, err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		_, err := Build(ctx, failingStore{}, Filter{})
		assert.True(t, types.IsKind(err, types.KindPersistence))
	})
}

type failingStore struct{}

func (failingStore) ListOrders(context.Context, *storage.OrderFilter) ([]*types.Order, error) {
	return nil, errors.New("disk I/O error")
}

func (failingStore) ListLineItems(context.Context, int64) ([]types.LineItem, error) {
	return nil, errors.New("disk I/O error")
}

func TestItemsSummary(t *testing.T) {
	assert.Equal(t, "", ItemsSummary(nil))
	assert.Equal(t, "widget x 2", ItemsSummary([]types.LineItem{item("widget", 2, "1")}))
	assert.Equal(t, "a x 1, b x 2, c x 3, (+2 more)", ItemsSummary([]types.LineItem{
		item("a", 1, "1"), item("b", 2, "1"), item("c", 3, "1"), item("d", 4, "1"), item("e", 5, "1"),
	}))
}

func TestWriteCSV(t *testing.T) {
	s, _ := fixture(t)
	reports, err := Build(context.Background(), s, Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, reports))

	r := csv.NewReader(&buf)
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)

	// header + 1 (June) + 1 N/A (Bruno) + 2 (May)
	require.Len(t, records, 5)
	assert.Equal(t, "Order ID;Customer;Date;Order Total;Product;Quantity;Unit Price", strings.Join(records[0], ";"))
	assert.Equal(t, []string{"Bruno", "2024-05-03", "0.00", "N/A", "0", "0.00"}, records[2][1:])
	assert.Equal(t, []string{"Ana", "2024-05-01", "17.00", "widget", "2", "3.50"}, records[3][1:])
	assert.Equal(t, []string{"Ana", "2024-05-01", "17.00", "gadget", "1", "10.00"}, records[4][1:])
}

func TestWritePDF(t *testing.T) {
	reports := make([]OrderReport, 0, 80)
	for i := 0; i < 80; i++ {
		items := []types.LineItem{item("widget with a rather long product name", i+1, "3.50")}
		reports = append(reports, OrderReport{Order: types.Order{
			ID: int64(i + 1), CustomerName: "Zoë", Date: "2024-05-01", Total: types.SumItems(items), Items: items,
		}})
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, reports, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	// 80 rows do not fit on one page
	assert.GreaterOrEqual(t, renderPDF(reports, time.Now()).PageCount(), 2)

	buf.Reset()
	require.NoError(t, WritePDF(&buf, nil, time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportAll(t *testing.T) {
	s, _ := fixture(t)
	reports, err := Build(context.Background(), s, Filter{})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	paths, err := ExportAll(context.Background(), dir, reports, []string{"CSV", "pdf", "csv"}, now)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "orders_report_20240502_093000.csv"), paths[0])
	assert.Equal(t, filepath.Join(dir, "orders_report_20240502_093000.pdf"), paths[1])
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = ExportAll(context.Background(), dir, reports, []string{"xlsx"}, now)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportAllSameSecondKeepsEarlierFiles(t *testing.T) {
	s, _ := fixture(t)
	reports, err := Build(context.Background(), s, Filter{})
	require.NoError(t, err)

	dir := t.TempDir()
	now := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

	first, err := ExportAll(context.Background(), dir, reports, []string{"csv"}, now)
	require.NoError(t, err)
	before, err := os.ReadFile(first[0])
	require.NoError(t, err)

	second, err := ExportAll(context.Background(), dir, reports[:1], []string{"csv"}, now)
	require.NoError(t, err)
	third, err := ExportAll(context.Background(), dir, reports, []string{"csv"}, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "orders_report_20240502_093000.csv"), first[0])
	assert.Equal(t, filepath.Join(dir, "orders_report_20240502_093000_2.csv"), second[0])
	assert.Equal(t, filepath.Join(dir, "orders_report_20240502_093000_3.csv"), third[0])

	after, err := os.ReadFile(first[0])
	require.NoError(t, err)
	assert.Equal(t, before, after)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFormatForSummary(t *testing.T) {
	assert.Equal(t, "", FormatForSummary(nil))

	text := FormatForSummary([]OrderReport{{Order: types.Order{
		ID: 3, CustomerName: "Ana", Date: "2024-05-01", Total: decimal.RequireFromString("17"),
		Items: []types.LineItem{item("widget", 2, "3.50"), item("gadget", 1, "10.00")},
	}}})
	assert.Contains(t, text, "--- Order ID: 3, Customer: Ana, Date: 2024-05-01, Total: 17.00 ---\n")
	assert.Contains(t, text, "widget (qty: 2), gadget (qty: 1)\n")
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		m, err := Dashboard(ctx, setupStore(t))
		require.NoError(t, err)
		assert.Equal(t, 0, m.TotalOrders)
		assert.True(t, m.Revenue.IsZero())
		assert.Equal(t, NotAvailable, m.TopProduct)
		assert.Equal(t, NotAvailable, m.TopCustomer)
	})

	t.Run("populated", func(t *testing.T) {
		s, _ := fixture(t)
		m, err := Dashboard(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, 3, m.TotalCustomers)
		assert.Equal(t, 3, m.TotalOrders)
		assert.Equal(t, "31.00", m.Revenue.StringFixed(2))
		assert.Equal(t, "widget", m.TopProduct)
		assert.Equal(t, 6, m.TopProductQty)
		assert.Equal(t, "Ana", m.TopCustomer)
		assert.Equal(t, "31.00", m.TopSpend.StringFixed(2))
	})
}
