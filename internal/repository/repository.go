package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username or email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, email string, hashedPassword string) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	// Total registered users, for the admin dashboard
	CountUsers(ctx context.Context) (int64, error)
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save token in the repository
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token and mark it used in a single statement
	// If the token is already used must return apperrors.ErrRefreshTokenIsUsed
	// If the token doesn't exist must return apperrors.ErrRefreshTokenNotFound
	GetAndMarkUsed(ctx context.Context, tokenString string) (models.RefreshToken, error)
}

// Balance repository interface
type BalanceRepo interface {
	// Create zero balance for the user
	CreateBalance(ctx context.Context, userID uuid.UUID) error

	// Get user balance
	// If the balance not found must return apperrors.ErrUserNotFound
	GetBalance(ctx context.Context, userID uuid.UUID) (models.Balance, error)

	// Credit increases the user's current balance by amount
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Balance, error)

	// Debit decreases the current balance and accumulates spent
	// Must return apperrors.ErrBalanceInsufficient if current < amount
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Balance, error)
}

// Payment repository interface
type PaymentRepo interface {
	// Create payment in 'pending' status without external id
	CreatePayment(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (models.Payment, error)

	// Get payment owned by the user
	// If not found must return apperrors.ErrPaymentNotFound
	GetUserPayment(ctx context.Context, paymentID uuid.UUID, userID uuid.UUID) (models.Payment, error)

	// Store the gateway-assigned identifier once creation succeeded
	SetExternalID(ctx context.Context, paymentID uuid.UUID, externalID string) error

	// Unconditional status update (non-crediting transitions)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, status string) error

	// Approve flips status to 'approved' only if it is not approved yet.
	// Returns true when this call performed the transition. Concurrent
	// callers racing on the same payment see true exactly once.
	Approve(ctx context.Context, paymentID uuid.UUID) (bool, error)

	// Remove the speculative row when gateway creation failed
	DeletePayment(ctx context.Context, paymentID uuid.UUID) error

	ListUserPayments(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)

	// Sum of approved payment amounts created at or after since.
	// Zero time means all approved payments.
	ApprovedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

// Service (catalog) repository interface
type ServiceRepo interface {
	// Insert or refresh a catalog entry keyed by the supplier's id.
	// Returns true when a new row was inserted.
	UpsertService(ctx context.Context, svc models.Service) (created bool, err error)

	// Get active service by the supplier's id
	// If not found or inactive must return apperrors.ErrServiceNotFound
	GetActiveService(ctx context.Context, supplierServiceID int64) (models.Service, error)

	// Get service by internal id regardless of active flag
	GetServiceByID(ctx context.Context, id uuid.UUID) (models.Service, error)

	ListActiveServices(ctx context.Context) ([]models.Service, error)
	ListCategories(ctx context.Context) ([]string, error)

	// Flip the active flag, returns the updated row
	SetServiceActive(ctx context.Context, id uuid.UUID, active bool) (models.Service, error)
}

// Order repository interface
type OrderRepo interface {
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	CountOrders(ctx context.Context) (int64, error)
}

// Setting repository interface
type SettingRepo interface {
	// Get setting value
	// If not found must return apperrors.ErrSettingNotFound
	GetSetting(ctx context.Context, key string) (string, error)

	// Insert or overwrite setting
	SetSetting(ctx context.Context, key string, value string) error

	// All settings as key -> value
	AllSettings(ctx context.Context) (map[string]string, error)
}

// Storage aggregates all repositories and transaction support
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Balance() BalanceRepo
	Payment() PaymentRepo
	Service() ServiceRepo
	Order() OrderRepo
	Setting() SettingRepo

	// InTx runs fn against a Storage bound to a single transaction.
	// Commits if fn returns nil, rolls back otherwise.
	InTx(ctx context.Context, fn func(Storage) error) error
}
