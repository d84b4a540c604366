package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service is one catalog entry mirrored from the supplier.
// Rate is the supplier's raw price per 1000 units; the sale price is
// derived from it with the configured profit margin.
type Service struct {
	ID                uuid.UUID
	SupplierServiceID int64
	Name              string
	Type              string
	Category          string
	Description       string
	Rate              decimal.Decimal
	MinQuantity       int
	MaxQuantity       int
	Active            bool
	SyncedAt          time.Time
}
