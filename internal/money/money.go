// Package money holds the exact decimal arithmetic used for prices and order totals.
// Values never pass through float64.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must be non-negative")
)

// Line is a unit price multiplied by a quantity.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// LineTotal returns price × quantity.
func LineTotal(l Line) decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalAmount sums price × quantity over every line. An empty slice totals zero.
func TotalAmount(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(l))
	}
	return total
}

// Parse reads a price as sent by clients ("199.90"). Empty, malformed and
// negative values are rejected.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}
