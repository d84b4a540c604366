// Package pricing derives sale prices from supplier rates.
// Everything here is pure: rates and charges are computed with
// decimals, never floats, so equal inputs always price equally.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeMargin  = errors.New("profit margin must not be negative")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// SaleRate applies the profit margin percentage to the supplier's
// per-1000 rate: base * (1 + margin/100).
func SaleRate(baseRate decimal.Decimal, margin decimal.Decimal) (decimal.Decimal, error) {
	if margin.IsNegative() {
		return decimal.Zero, ErrNegativeMargin
	}

	factor := decimal.NewFromInt(1).Add(margin.Div(hundred))
	return baseRate.Mul(factor), nil
}

// Charge is the total price for quantity units at the given per-1000
// sale rate: rate * quantity / 1000.
func Charge(saleRate decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}

	return saleRate.Mul(decimal.NewFromInt(int64(quantity))).Div(thousand), nil
}
