package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// Payment is a single balance top-up attempt.
// ExternalID is nil until the gateway accepts the payment. The user's
// balance is credited exactly once: when status moves to 'approved'.
type Payment struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	UserID     uuid.UUID
	Amount     decimal.Decimal
	ExternalID *string
	Status     string
}
