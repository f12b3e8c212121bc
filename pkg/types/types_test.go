package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"3.50", "3.5", false},
		{" 10 ", "10", false},
		{"0.01", "0.01", false},
		{"1.500", "1.5", false},
		{"1.005", "", true},
		{"0", "", true},
		{"-2", "", true},
		{"", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

func TestSumItems(t *testing.T) {
	items := []LineItem{
		{ProductName: "widget", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
		{ProductName: "gadget", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	}
	assert.Equal(t, "7.00", items[0].Subtotal().StringFixed(2))
	assert.Equal(t, "17.00", SumItems(items).StringFixed(2))
	assert.True(t, SumItems(nil).IsZero())
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-02-29")
	assert.NoError(t, err)

	for _, bad := range []string{"2023-02-29", "01/05/2024", "2024-5-1", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("outer: %w", Persistence("save order", base))

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, IsKind(err, KindPersistence))
	assert.False(t, IsKind(nil, KindPersistence))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, KindUnknown, KindOf(base))

	v := Validationf("add line item", ErrInvalidQuantity, "got %d", 0)
	assert.Equal(t, "add line item: got 0: quantity must be greater than zero", v.Error())
	assert.Equal(t, "validation", KindOf(v).String())

	nf := &Error{Kind: KindNotFound, Op: "get order", Msg: "order 9"}
	assert.Equal(t, "get order: order 9", nf.Error())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "external_service", KindOf(External("summarize", base)).String())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (&Customer{Name: "  "}).Validate(), ErrMissingName)
	assert.NoError(t, (&Customer{Name: "Ana"}).Validate())
	assert.ErrorIs(t, (&Product{Name: "widget"}).Validate(), ErrInvalidPrice)
	assert.NoError(t, (&Product{Name: "widget", UnitPrice: decimal.NewFromInt(1)}).Validate())
}
