package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/repository"
	"github.com/dfcarvalho/smmpanel/internal/service/pricing"
	"github.com/dfcarvalho/smmpanel/internal/supplier/baratosocial"
)

// Supplier is the narrow supplier surface the service consumes.
// Implemented by *baratosocial.Client.
type Supplier interface {
	AddOrder(ctx context.Context, or baratosocial.OrderRequest) (int64, error)
}

type settingsService interface {
	SupplierAPIKey(ctx context.Context) (string, error)
	ProfitMargin(ctx context.Context) (decimal.Decimal, error)
}

type CreateOrderRequest struct {
	SupplierServiceID int64
	Link              string
	Quantity          int
	Comments          string
}

type OrderService struct {
	storage  repository.Storage
	settings settingsService
	logger   logger.Logger

	newSupplier func(apiKey string) Supplier
}

func NewService(storage repository.Storage, settings settingsService, l logger.Logger) *OrderService {
	return &OrderService{
		storage:  storage,
		settings: settings,
		logger:   l,
		newSupplier: func(apiKey string) Supplier {
			return baratosocial.NewClient(apiKey, l)
		},
	}
}

// Create prices the requested quantity at the current margin, places
// the order at the supplier and then debits the balance and records
// the order as one transaction.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (models.Order, error) {
	var order models.Order

	svc, err := s.storage.Service().GetActiveService(ctx, req.SupplierServiceID)
	if err != nil {
		return order, err
	}

	if req.Quantity < svc.MinQuantity || req.Quantity > svc.MaxQuantity {
		return order, fmt.Errorf("%w: quantity must be between %d and %d",
			apperrors.ErrQuantityOutOfRange, svc.MinQuantity, svc.MaxQuantity)
	}

	margin, err := s.settings.ProfitMargin(ctx)
	if err != nil {
		return order, fmt.Errorf("can't resolve profit margin: %w", err)
	}
	saleRate, err := pricing.SaleRate(svc.Rate, margin)
	if err != nil {
		return order, err
	}
	charge, err := pricing.Charge(saleRate, req.Quantity)
	if err != nil {
		return order, err
	}

	// Early funds check keeps obviously broke requests away from the
	// supplier; the debit below re-checks inside the transaction
	balance, err := s.storage.Balance().GetBalance(ctx, userID)
	if err != nil {
		return order, err
	}
	if balance.Current.LessThan(charge) {
		return order, apperrors.ErrBalanceInsufficient
	}

	apiKey, err := s.settings.SupplierAPIKey(ctx)
	if err != nil {
		return order, err
	}

	supplierOrderID, err := s.newSupplier(apiKey).AddOrder(ctx, baratosocial.OrderRequest{
		ServiceID: svc.SupplierServiceID,
		Link:      req.Link,
		Quantity:  req.Quantity,
		Comments:  req.Comments,
	})
	if err != nil {
		var supErr *baratosocial.Error
		if errors.As(err, &supErr) && supErr.Code == baratosocial.CodeVendor {
			return order, fmt.Errorf("%w: %s", apperrors.ErrSupplier, supErr.Message)
		}
		return order, fmt.Errorf("%w: %v", apperrors.ErrSupplierUnavailable, err)
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		if _, err := tx.Balance().Debit(ctx, userID, charge); err != nil {
			return err
		}

		order, err = tx.Order().CreateOrder(ctx, models.Order{
			UserID:            userID,
			SupplierServiceID: svc.SupplierServiceID,
			ServiceName:       svc.Name,
			Link:              req.Link,
			Quantity:          req.Quantity,
			Charge:            charge,
			SupplierOrderID:   &supplierOrderID,
			Status:            models.OrderStatusPending,
		})
		return err
	})
	if err != nil {
		// The supplier already accepted the order at this point, keep
		// the id in the log so support can settle it by hand
		s.logger.Error("Order placed at supplier but not recorded",
			"error", err, "supplier_order_id", supplierOrderID, "user_id", userID)
		return order, fmt.Errorf("can't record order. Err: %w", err)
	}

	s.logger.Info("Order created",
		"order_id", order.ID, "supplier_order_id", supplierOrderID, "charge", charge)
	return order, nil
}

// List returns the user's orders, newest first
func (s *OrderService) List(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.storage.Order().ListUserOrders(ctx, userID)
}
