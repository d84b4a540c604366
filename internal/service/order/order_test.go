package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/repository"
	"github.com/dfcarvalho/smmpanel/internal/repository/postgres"
	"github.com/dfcarvalho/smmpanel/internal/supplier/baratosocial"
	"github.com/dfcarvalho/smmpanel/internal/testutil"
)

type fakeSupplier struct {
	addOrderFn func(ctx context.Context, or baratosocial.OrderRequest) (int64, error)
}

func (s *fakeSupplier) AddOrder(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
	return s.addOrderFn(ctx, or)
}

type fakeSettings struct {
	apiKey string
	margin decimal.Decimal
}

func (s *fakeSettings) SupplierAPIKey(ctx context.Context) (string, error) {
	if s.apiKey == "" {
		return "", apperrors.ErrNotConfigured
	}
	return s.apiKey, nil
}

func (s *fakeSettings) ProfitMargin(ctx context.Context) (decimal.Decimal, error) {
	return s.margin, nil
}

func TestOrderService_Create(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// base 10.0 per 1000, margin 20% -> sale rate 12
	catalogEntry := models.Service{
		SupplierServiceID: 101,
		Name:              "Instagram Followers",
		Type:              "Default",
		Category:          "Instagram",
		Rate:              decimal.RequireFromString("10.0"),
		MinQuantity:       100,
		MaxQuantity:       10000,
		SyncedAt:          time.Now(),
	}

	withService := func(t *testing.T, supplier *fakeSupplier, fn func(svc *OrderService, storage repository.Storage, user models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			user, err := storage.User().CreateUser(t.Context(), "buyer", "buyer@example.com", "hash")
			require.NoError(t, err)
			require.NoError(t, storage.Balance().CreateBalance(t.Context(), user.ID))

			_, err = storage.Service().UpsertService(t.Context(), catalogEntry)
			require.NoError(t, err)

			settings := &fakeSettings{apiKey: "test-key", margin: decimal.NewFromInt(20)}
			svc := NewService(storage, settings, logger.NewNoOpLogger())
			svc.newSupplier = func(apiKey string) Supplier {
				require.Equal(t, "test-key", apiKey)
				return supplier
			}

			fn(svc, storage, user)
		})
	}

	t.Run("ok", func(t *testing.T) {
		supplier := &fakeSupplier{
			addOrderFn: func(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
				require.Equal(t, int64(101), or.ServiceID)
				require.Equal(t, "https://instagram.com/someone", or.Link)
				require.Equal(t, 500, or.Quantity)
				return 987654, nil
			},
		}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := storage.Balance().Credit(t.Context(), user.ID, decimal.NewFromInt(10))
			require.NoError(t, err)

			order, err := svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 101,
				Link:              "https://instagram.com/someone",
				Quantity:          500,
			})
			require.NoError(t, err)

			// 12 * 500 / 1000 = 6
			require.True(t, order.Charge.Equal(decimal.NewFromInt(6)), "got %s", order.Charge)
			require.NotNil(t, order.SupplierOrderID)
			require.Equal(t, int64(987654), *order.SupplierOrderID)
			require.Equal(t, models.OrderStatusPending, order.Status)

			balance, err := storage.Balance().GetBalance(t.Context(), user.ID)
			require.NoError(t, err)
			require.True(t, balance.Current.Equal(decimal.NewFromInt(4)), "charge should be debited, got %s", balance.Current)
			require.True(t, balance.Spent.Equal(decimal.NewFromInt(6)), "got %s", balance.Spent)
		})
	})

	t.Run("unknown service", func(t *testing.T) {
		supplier := &fakeSupplier{}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 999,
				Link:              "x",
				Quantity:          500,
			})
			require.ErrorIs(t, err, apperrors.ErrServiceNotFound)
		})
	})

	t.Run("quantity out of range", func(t *testing.T) {
		supplier := &fakeSupplier{}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			for _, quantity := range []int{99, 10001} {
				_, err := svc.Create(t.Context(), user.ID, CreateOrderRequest{
					SupplierServiceID: 101,
					Link:              "x",
					Quantity:          quantity,
				})
				require.ErrorIs(t, err, apperrors.ErrQuantityOutOfRange, "quantity %d should be refused", quantity)
			}
		})
	})

	t.Run("insufficient balance before supplier call", func(t *testing.T) {
		supplier := &fakeSupplier{
			addOrderFn: func(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
				t.Error("supplier should not be called when the user can't pay")
				return 0, nil
			},
		}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 101,
				Link:              "x",
				Quantity:          500,
			})
			require.ErrorIs(t, err, apperrors.ErrBalanceInsufficient)
		})
	})

	t.Run("supplier refuses order", func(t *testing.T) {
		supplier := &fakeSupplier{
			addOrderFn: func(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
				return 0, baratosocial.NewError(baratosocial.CodeVendor, "Not enough funds", nil)
			},
		}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := storage.Balance().Credit(t.Context(), user.ID, decimal.NewFromInt(10))
			require.NoError(t, err)

			_, err = svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 101,
				Link:              "x",
				Quantity:          500,
			})
			require.ErrorIs(t, err, apperrors.ErrSupplier)
			require.Contains(t, err.Error(), "Not enough funds")

			balance, err := storage.Balance().GetBalance(t.Context(), user.ID)
			require.NoError(t, err)
			require.True(t, balance.Current.Equal(decimal.NewFromInt(10)), "refused order must not debit, got %s", balance.Current)

			orders, err := svc.List(t.Context(), user.ID)
			require.NoError(t, err)
			require.Empty(t, orders, "refused order must not be recorded")
		})
	})

	t.Run("supplier unreachable", func(t *testing.T) {
		supplier := &fakeSupplier{
			addOrderFn: func(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
				return 0, baratosocial.NewError(baratosocial.CodeUnavailable, "", nil)
			},
		}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := storage.Balance().Credit(t.Context(), user.ID, decimal.NewFromInt(10))
			require.NoError(t, err)

			_, err = svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 101,
				Link:              "x",
				Quantity:          500,
			})
			require.ErrorIs(t, err, apperrors.ErrSupplierUnavailable)
		})
	})

	t.Run("list is scoped per user", func(t *testing.T) {
		supplier := &fakeSupplier{
			addOrderFn: func(ctx context.Context, or baratosocial.OrderRequest) (int64, error) {
				return 555, nil
			},
		}

		withService(t, supplier, func(svc *OrderService, storage repository.Storage, user models.User) {
			_, err := storage.Balance().Credit(t.Context(), user.ID, decimal.NewFromInt(10))
			require.NoError(t, err)

			_, err = svc.Create(t.Context(), user.ID, CreateOrderRequest{
				SupplierServiceID: 101,
				Link:              "x",
				Quantity:          500,
			})
			require.NoError(t, err)

			orders, err := svc.List(t.Context(), user.ID)
			require.NoError(t, err)
			require.Len(t, orders, 1)

			foreign, err := svc.List(t.Context(), uuid.New())
			require.NoError(t, err)
			require.Empty(t, foreign)
		})
	})
}
