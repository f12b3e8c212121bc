package report

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/orderdesk/internal/storage"
	"github.com/dshills/orderdesk/pkg/types"
)

// maxSummaryItems caps the items shown by ItemsSummary
const maxSummaryItems = 3

// itemFetchConcurrency bounds the per-order item lookups in Build
const itemFetchConcurrency = 4

// Store is the read side of the order store used by reports
type Store interface {
	ListOrders(ctx context.Context, filter *storage.OrderFilter) ([]*types.Order, error)
	ListLineItems(ctx context.Context, orderID int64) ([]types.LineItem, error)
}

// Filter selects the orders that go into a report. Zero values mean no constraint.
type Filter struct {
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	CustomerID int64  `json:"customer_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Validate checks the date bounds
func (f Filter) Validate() error {
	if f.From != "" {
		if _, err := types.ParseDate(f.From); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if f.To != "" {
		if _, err := types.ParseDate(f.To); err != nil {
			return fmt.Errorf("to: %w", err)
		}
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		return fmt.Errorf("%w: from %s is after to %s", types.ErrInvalidDate, f.From, f.To)
	}
	if f.CustomerID < 0 {
		return types.ErrInvalidID
	}
	return nil
}

// OrderReport is one order with its items and a short items summary
type OrderReport struct {
	types.Order
	ItemsSummary string `json:"items_summary"`
}

// Build loads the filtered orders and their items, newest first.
func Build(ctx context.Context, store Store, filter Filter) ([]OrderReport, error) {
	if err := filter.Validate(); err != nil {
		return nil, types.Validation("report.Build", err)
	}

	orders, err := store.ListOrders(ctx, &storage.OrderFilter{
		From:       filter.From,
		To:         filter.To,
		CustomerID: filter.CustomerID,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, types.Persistence("report.Build", err)
	}

	reports := make([]OrderReport, len(orders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(itemFetchConcurrency)
	for i, o := range orders {
		g.Go(func() error {
			items, err := store.ListLineItems(gctx, o.ID)
			if err != nil {
				return fmt.Errorf("items for order %d: %w", o.ID, err)
			}
			order := *o
			order.Items = items
			reports[i] = OrderReport{Order: order, ItemsSummary: ItemsSummary(items)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, types.Persistence("report.Build", err)
	}

	return reports, nil
}

// ItemsSummary renders items as "widget x 2, gadget x 1, (+N more)".
func ItemsSummary(items []types.LineItem) string {
	if len(items) == 0 {
		return ""
	}
	shown := items
	if len(shown) > maxSummaryItems {
		shown = shown[:maxSummaryItems]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, item := range shown {
		parts = append(parts, fmt.Sprintf("%s x %d", item.ProductName, item.Quantity))
	}
	if extra := len(items) - len(shown); extra > 0 {
		parts = append(parts, fmt.Sprintf("(+%d more)", extra))
	}
	return strings.Join(parts, ", ")
}

// FormatForSummary renders reports as the plain-text listing handed to a summarizer.
// It returns "" when there are no orders.
func FormatForSummary(reports []OrderReport) string {
	if len(reports) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Orders:\n")
	for _, r := range reports {
		fmt.Fprintf(&sb, "\n--- Order ID: %d, Customer: %s, Date: %s, Total: %s ---\n",
			r.ID, r.CustomerName, r.Date, r.Total.StringFixed(2))

		entries := make([]string, len(r.Items))
		for i, item := range r.Items {
			entries[i] = fmt.Sprintf("%s (qty: %d)", item.ProductName, item.Quantity)
		}
		sb.WriteString(strings.Join(entries, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
