package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the user's prepaid account. Current grows when a top-up
// payment is approved and shrinks when an order is placed. Spent
// accumulates everything ever debited.
type Balance struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Current decimal.Decimal
	Spent   decimal.Decimal
}
