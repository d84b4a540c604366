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
)

type paymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

func toPaymentResponse(p models.Payment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	}
}

func handleCreatePayment(ps paymentService, l logger.Logger) http.Handler {
	type request struct {
		Amount decimal.Decimal `json:"amount" validate:"required"`
	}
	type response struct {
		paymentResponse
		QRCode       string `json:"qr_code"`
		QRCodeBase64 string `json:"qr_code_base64"`
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

		created, err := ps.Create(r.Context(), user, data.Amount)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{
				paymentResponse: toPaymentResponse(created.Payment),
				QRCode:          created.QRCode,
				QRCodeBase64:    created.QRCodeBase64,
			}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrInvalidAmount):
			render.ServiceError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Payment gateway not configured", http.StatusServiceUnavailable)
		case errors.Is(err, apperrors.ErrGateway):
			render.ServiceError(w, err.Error(), http.StatusBadGateway)
		default:
			l.Error("Failed to create payment", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleCheckPayment(ps paymentService, l logger.Logger) http.Handler {
	type response struct {
		Status string `json:"status"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		paymentID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid payment id", http.StatusBadRequest)
			return
		}

		status, err := ps.Reconcile(r.Context(), user.ID, paymentID)

		switch {
		case err == nil:
			render.JSON(w, response{Status: status})
		case errors.Is(err, apperrors.ErrPaymentNotFound):
			render.ServiceError(w, "Payment not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrPaymentNotSubmitted):
			render.ServiceError(w, "Payment was not submitted to the gateway", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Payment gateway not configured", http.StatusServiceUnavailable)
		case errors.Is(err, apperrors.ErrGatewayUnavailable):
			render.ServiceError(w, "Payment gateway unavailable", http.StatusBadGateway)
		default:
			l.Error("Failed to check payment", "error", err, "payment_id", paymentID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListPayments(ps paymentService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		payments, err := ps.List(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list payments", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list := make([]paymentResponse, 0, len(payments))
		for _, p := range payments {
			list = append(list, toPaymentResponse(p))
		}
		render.JSON(w, list)
	})
}
