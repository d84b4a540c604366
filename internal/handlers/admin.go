package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/handlers/render"
	"github.com/dfcarvalho/smmpanel/internal/logger"
)

func handleGetConfig(ss settingsService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := ss.GetAll(r.Context())
		if err != nil {
			l.Error("Failed to get settings", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, settings)
	})
}

func handleSetConfig(ss settingsService, l logger.Logger) http.Handler {
	type request struct {
		Settings map[string]string `json:"settings" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		for key, value := range data.Settings {
			if err := ss.Set(r.Context(), key, value); err != nil {
				l.Error("Failed to save setting", "error", err, "key", key)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		render.JSON(w, response{Message: "Settings saved"})
	})
}

func handleSetServiceActive(cs catalogService, l logger.Logger) http.Handler {
	type request struct {
		Active *bool `json:"active" validate:"required"`
	}
	type response struct {
		ID     uuid.UUID `json:"id"`
		Name   string    `json:"name"`
		Active bool      `json:"active"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serviceID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid service id", http.StatusBadRequest)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		svc, err := cs.SetActive(r.Context(), serviceID, *data.Active)

		switch {
		case err == nil:
			render.JSON(w, response{ID: svc.ID, Name: svc.Name, Active: svc.Active})
		case errors.Is(err, apperrors.ErrServiceNotFound):
			render.ServiceError(w, "Service not found", http.StatusNotFound)
		default:
			l.Error("Failed to toggle service", "error", err, "service_id", serviceID)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleSyncServices(cs catalogService, l logger.Logger) http.Handler {
	type response struct {
		New     int `json:"new"`
		Updated int `json:"updated"`
		Skipped int `json:"skipped"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := cs.Sync(r.Context())

		switch {
		case err == nil:
			render.JSON(w, response{New: result.New, Updated: result.Updated, Skipped: result.Skipped})
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Supplier not configured", http.StatusServiceUnavailable)
		case errors.Is(err, apperrors.ErrSupplierUnavailable):
			render.ServiceError(w, "Supplier unavailable", http.StatusBadGateway)
		default:
			l.Error("Failed to sync services", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleDashboardStats(st statsService, l logger.Logger) http.Handler {
	type response struct {
		TotalUsers     int64  `json:"total_users"`
		TotalOrders    int64  `json:"total_orders"`
		TotalRevenue   string `json:"total_revenue"`
		MonthlyRevenue string `json:"monthly_revenue"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := st.Dashboard(r.Context())
		if err != nil {
			l.Error("Failed to collect dashboard stats", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			TotalUsers:     d.TotalUsers,
			TotalOrders:    d.TotalOrders,
			TotalRevenue:   d.TotalRevenue.StringFixed(2),
			MonthlyRevenue: d.MonthlyRevenue.StringFixed(2),
		})
	})
}

func handleTestSupplier(cs catalogService, l logger.Logger) http.Handler {
	type response struct {
		Balance string `json:"balance"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		balance, err := cs.TestSupplier(r.Context())

		switch {
		case err == nil:
			render.JSON(w, response{Balance: balance.StringFixed(2)})
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Supplier not configured", http.StatusServiceUnavailable)
		default:
			l.Error("Supplier probe failed", "error", err)
			render.ServiceError(w, "Supplier unavailable", http.StatusBadGateway)
		}
	})
}

func handleTestGateway(ps paymentService, l logger.Logger) http.Handler {
	type response struct {
		PaymentMethods int `json:"payment_methods"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, err := ps.TestGateway(r.Context())

		switch {
		case err == nil:
			render.JSON(w, response{PaymentMethods: count})
		case errors.Is(err, apperrors.ErrNotConfigured):
			render.ServiceError(w, "Payment gateway not configured", http.StatusServiceUnavailable)
		default:
			l.Error("Gateway probe failed", "error", err)
			render.ServiceError(w, "Payment gateway unavailable", http.StatusBadGateway)
		}
	})
}
