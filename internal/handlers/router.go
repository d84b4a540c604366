package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/handlers/middleware"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/service/catalog"
	"github.com/dfcarvalho/smmpanel/internal/service/order"
	"github.com/dfcarvalho/smmpanel/internal/service/payment"
	"github.com/dfcarvalho/smmpanel/internal/service/stats"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	paymentService paymentService,
	orderService orderService,
	catalogService catalogService,
	settingsService settingsService,
	statsService statsService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	adminMiddleware := middleware.AdminMiddleware()
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return authMiddleware(adminMiddleware(h))
	}

	apiuser := http.NewServeMux()
	apiuser.Handle("POST /register", handleRegister(authService, logger))
	apiuser.Handle("POST /login", handleLogin(authService, logger))
	apiuser.Handle("POST /refresh", handleTokenRefresh(authService, logger))
	apiuser.Handle("GET /me", withAuth(handleUserMe()))
	apiuser.Handle("GET /balance", withAuth(handleUserBalance(userService, logger)))

	apipayments := http.NewServeMux()
	apipayments.Handle("POST /", withAuth(handleCreatePayment(paymentService, logger)))
	apipayments.Handle("GET /", withAuth(handleListPayments(paymentService, logger)))
	apipayments.Handle("GET /{id}/check", withAuth(handleCheckPayment(paymentService, logger)))

	apiorders := http.NewServeMux()
	apiorders.Handle("POST /", withAuth(handleCreateOrder(orderService, logger)))
	apiorders.Handle("GET /", withAuth(handleListOrders(orderService, logger)))

	apiservices := http.NewServeMux()
	apiservices.Handle("GET /", withAuth(handleListServices(catalogService, logger)))
	apiservices.Handle("GET /categories", withAuth(handleListCategories(catalogService, logger)))

	apiadmin := http.NewServeMux()
	apiadmin.Handle("GET /config", withAdmin(handleGetConfig(settingsService, logger)))
	apiadmin.Handle("POST /config", withAdmin(handleSetConfig(settingsService, logger)))
	apiadmin.Handle("POST /sync-services", withAdmin(handleSyncServices(catalogService, logger)))
	apiadmin.Handle("POST /services/{id}/active", withAdmin(handleSetServiceActive(catalogService, logger)))
	apiadmin.Handle("GET /dashboard-stats", withAdmin(handleDashboardStats(statsService, logger)))
	apiadmin.Handle("POST /test-supplier", withAdmin(handleTestSupplier(catalogService, logger)))
	apiadmin.Handle("POST /test-gateway", withAdmin(handleTestGateway(paymentService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/user/", http.StripPrefix("/api/user", apiuser))
	root.Handle("/api/payments/", http.StripPrefix("/api/payments", apipayments))
	root.Handle("/api/payments", http.StripPrefix("/api/payments", apipayments))
	root.Handle("/api/orders/", http.StripPrefix("/api/orders", apiorders))
	root.Handle("/api/orders", http.StripPrefix("/api/orders", apiorders))
	root.Handle("/api/services/", http.StripPrefix("/api/services", apiservices))
	root.Handle("/api/services", http.StripPrefix("/api/services", apiservices))
	root.Handle("/api/admin/", http.StripPrefix("/api/admin", apiadmin))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with username, email and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, email string, password string) (models.TokenPair, error)

	// Login user with username and password
	// Has to return apperrors.ErrUserNotFound if user not found or password mismatched
	Login(ctx context.Context, username string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)

	// Set auth tokens (access, refresh) to response
	SetTokens(w http.ResponseWriter, pair models.TokenPair)

	// Get refresh token from request
	GetRefresh(r *http.Request) (string, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type userService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error)
}

type paymentService interface {
	Create(ctx context.Context, user models.User, amount decimal.Decimal) (payment.CreatedPayment, error)
	Reconcile(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (string, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	TestGateway(ctx context.Context) (int, error)
}

type orderService interface {
	Create(ctx context.Context, userID uuid.UUID, req order.CreateOrderRequest) (models.Order, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

type catalogService interface {
	List(ctx context.Context) ([]catalog.PricedService, error)
	Categories(ctx context.Context) ([]string, error)
	Sync(ctx context.Context) (catalog.SyncResult, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Service, error)
	TestSupplier(ctx context.Context) (decimal.Decimal, error)
}

type settingsService interface {
	Set(ctx context.Context, key string, value string) error
	GetAll(ctx context.Context) (map[string]string, error)
}

type statsService interface {
	Dashboard(ctx context.Context) (stats.Dashboard, error)
}
