package types

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry and the source of current unit prices.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Validate checks required fields and that the price is positive
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrMissingName
	}
	if !p.UnitPrice.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// ParsePrice parses a user supplied price such as "3.50".
// At most two decimal places are accepted and the value must be positive.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: at most 2 decimal places", ErrInvalidPrice)
	}
	return d, nil
}
