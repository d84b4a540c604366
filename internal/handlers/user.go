package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dfcarvalho/smmpanel/internal/handlers/render"
	"github.com/dfcarvalho/smmpanel/internal/handlers/userctx"
	"github.com/dfcarvalho/smmpanel/internal/logger"
)

func handleUserMe() http.Handler {
	type response struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
		IsAdmin  bool      `json:"is_admin"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		render.JSON(w, response{ID: user.ID, Username: user.Username, Email: user.Email, IsAdmin: user.IsAdmin})
	})
}

func handleUserBalance(us userService, l logger.Logger) http.Handler {
	type response struct {
		Current string `json:"current"`
		Spent   string `json:"spent"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal service error", http.StatusInternalServerError)
			return
		}

		balance, err := us.GetBalance(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to get balance", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			Current: balance.Current.StringFixed(2),
			Spent:   balance.Spent.StringFixed(2),
		})
	})
}
