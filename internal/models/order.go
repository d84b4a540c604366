package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

type Order struct {
	ID                uuid.UUID
	CreatedAt         time.Time
	UserID            uuid.UUID
	SupplierServiceID int64
	ServiceName       string
	Link              string
	Quantity          int
	Charge            decimal.Decimal
	SupplierOrderID   *int64
	Status            string
}
