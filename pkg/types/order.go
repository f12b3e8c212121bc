package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO 8601 calendar date format orders are stored with
const DateLayout = "2006-01-02"

// Order is the aggregate root. Total is fixed at save time and never
// recomputed lazily.
type Order struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name,omitempty"`
	Date         string          `json:"date"`
	Total        decimal.Decimal `json:"total"`
	Items        []LineItem      `json:"items,omitempty"`
}

// LineItem is one product entry within an order. ProductName and UnitPrice
// are snapshots taken when the item was added, not references to the catalog.
type LineItem struct {
	ID          int64           `json:"id,omitempty"`
	OrderID     int64           `json:"order_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity × unit price
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SumItems returns the exact decimal total of items
func SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ParseDate validates an ISO calendar date string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
