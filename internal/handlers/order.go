package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/handlers/render"
	"github.com/dfcarvalho/smmpanel/internal/handlers/userctx"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/service/order"
)

type orderResponse struct {
	ID                uuid.UUID       `json:"id"`
	SupplierServiceID int64           `json:"service_id"`
	ServiceName       string          `json:"service_name"`
	Link              string          `json:"link"`
	Quantity          int             `json:"quantity"`
	Charge            decimal.Decimal `json:"charge"`
	SupplierOrderID   *int64          `json:"supplier_order_id,omitempty"`
	Status            string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toOrderResponse(o models.Order) orderResponse {
	return orderResponse{
		ID:                o.ID,
		SupplierServiceID: o.SupplierServiceID,
		ServiceName:       o.ServiceName,
		Link:              o.Link,
		Quantity:          o.Quantity,
		Charge:            o.Charge,
		SupplierOrderID:   o.SupplierOrderID,
		Status:            o.Status,
		CreatedAt:         o.CreatedAt,
	}
}

func handleCreateOrder(os orderService, l logger.Logger) http.Handler {
	type request struct {
		ServiceID int64  `json:"service_id" validate:"required"`
		Link      string `json:"link" validate:"required"`
		Quantity  int    `json:"quantity" validate:"gt=0"`
		Comments  string `json:"comments"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		placed, err := os.Create(r.Context(), user.ID, order.CreateOrderRequest{
			SupplierServiceID: data.ServiceID,
			Link:              data.Link,
			Quantity:          data.Quantity,
			Comments:          data.Comments,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, toOrderResponse(placed), http.StatusCreated)
		case errors.Is(err, apperrors.ErrServiceNotFound):
			render.ServiceError(w, "Service not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrQuantityOutOfRange):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Supplier not configured", http.StatusServiceUnavailable)
		case errors.Is(err, apperrors.ErrSupplier):
			render.ServiceError(w, err.Error(), http.StatusBadGateway)
		case errors.Is(err, apperrors.ErrSupplierUnavailable):
			render.ServiceError(w, "Supplier unavailable", http.StatusBadGateway)
		default:
			l.Error("Failed to create order", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListOrders(os orderService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		orders, err := os.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list orders", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			list = append(list, toOrderResponse(o))
		}
		render.JSON(w, list)
	})
}
