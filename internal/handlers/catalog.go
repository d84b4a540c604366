package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/handlers/render"
	"github.com/dfcarvalho/smmpanel/internal/logger"
)

func handleListServices(cs catalogService, l logger.Logger) http.Handler {
	type service struct {
		ServiceID   int64           `json:"service_id"`
		Name        string          `json:"name"`
		Type        string          `json:"type"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Rate        decimal.Decimal `json:"rate"`
		Min         int             `json:"min"`
		Max         int             `json:"max"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		priced, err := cs.List(r.Context())
		if err != nil {
			l.Error("Failed to list services", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		list := make([]service, 0, len(priced))
		for _, p := range priced {
			list = append(list, service{
				ServiceID:   p.SupplierServiceID,
				Name:        p.Name,
				Type:        p.Type,
				Category:    p.Category,
				Description: p.Description,
				Rate:        p.SaleRate,
				Min:         p.MinQuantity,
				Max:         p.MaxQuantity,
			})
		}
		render.JSON(w, list)
	})
}

func handleListCategories(cs catalogService, l logger.Logger) http.Handler {
	type response struct {
		Categories []string `json:"categories"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories, err := cs.Categories(r.Context())
		if err != nil {
			l.Error("Failed to list categories", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Categories: categories})
	})
}
