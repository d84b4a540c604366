package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/repository"
	"github.com/dfcarvalho/smmpanel/internal/repository/postgres"
	"github.com/dfcarvalho/smmpanel/internal/supplier/baratosocial"
	"github.com/dfcarvalho/smmpanel/internal/testutil"
)

type fakeSupplier struct {
	servicesFn func(ctx context.Context) ([]baratosocial.Service, error)
	balanceFn  func(ctx context.Context) (decimal.Decimal, error)
}

func (s *fakeSupplier) Services(ctx context.Context) ([]baratosocial.Service, error) {
	return s.servicesFn(ctx)
}

func (s *fakeSupplier) Balance(ctx context.Context) (decimal.Decimal, error) {
	return s.balanceFn(ctx)
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

func TestCatalogService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	entry := func(id, rate, min, max string) baratosocial.Service {
		return baratosocial.Service{
			ServiceID:   id,
			Name:        "Service " + id,
			Type:        "Default",
			Category:    "Instagram",
			Description: "test entry",
			Rate:        rate,
			Min:         min,
			Max:         max,
		}
	}

	withService := func(t *testing.T, supplier *fakeSupplier, settings *fakeSettings, fn func(svc *CatalogService, storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			svc := NewService(storage, settings, logger.NewNoOpLogger())
			svc.newSupplier = func(apiKey string) Supplier {
				require.Equal(t, "test-key", apiKey)
				return supplier
			}

			fn(svc, storage)
		})
	}

	settings := &fakeSettings{apiKey: "test-key", margin: decimal.NewFromInt(20)}

	t.Run("sync counts new and updated", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				return []baratosocial.Service{
					entry("101", "2.50", "100", "10000"),
					entry("102", "4.00", "50", "5000"),
				}, nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			result, err := svc.Sync(t.Context())
			require.NoError(t, err)
			require.Equal(t, SyncResult{New: 2, Updated: 0, Skipped: 0}, result)

			// Second sync of the same catalog only refreshes rows
			result, err = svc.Sync(t.Context())
			require.NoError(t, err)
			require.Equal(t, SyncResult{New: 0, Updated: 2, Skipped: 0}, result)

			stored, err := storage.Service().GetActiveService(t.Context(), 101)
			require.NoError(t, err)
			require.Equal(t, "Service 101", stored.Name)
			require.True(t, stored.Rate.Equal(decimal.RequireFromString("2.50")))
			require.Equal(t, 100, stored.MinQuantity)
			require.Equal(t, 10000, stored.MaxQuantity)
		})
	})

	t.Run("sync skips malformed entries", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				return []baratosocial.Service{
					entry("101", "2.50", "100", "10000"),
					entry("bad-id", "2.50", "100", "10000"),
					entry("103", "not-a-rate", "100", "10000"),
					entry("104", "1.00", "min?", "10000"),
				}, nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			result, err := svc.Sync(t.Context())
			require.NoError(t, err, "malformed entries must not abort the sync")
			require.Equal(t, SyncResult{New: 1, Updated: 0, Skipped: 3}, result)
		})
	})

	t.Run("sync supplier unavailable", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				return nil, baratosocial.NewError(baratosocial.CodeUnavailable, "", nil)
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			_, err := svc.Sync(t.Context())
			require.ErrorIs(t, err, apperrors.ErrSupplierUnavailable)
		})
	})

	t.Run("sync without credentials", func(t *testing.T) {
		supplier := &fakeSupplier{}

		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			svc := NewService(storage, &fakeSettings{}, logger.NewNoOpLogger())
			svc.newSupplier = func(apiKey string) Supplier { return supplier }

			_, err := svc.Sync(t.Context())
			require.ErrorIs(t, err, apperrors.ErrNotConfigured)
		})
	})

	t.Run("list prices with margin", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				return []baratosocial.Service{entry("101", "10.0", "100", "10000")}, nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			_, err := svc.Sync(t.Context())
			require.NoError(t, err)

			priced, err := svc.List(t.Context())
			require.NoError(t, err)
			require.Len(t, priced, 1)
			require.True(t, priced[0].SaleRate.Equal(decimal.NewFromInt(12)),
				"base 10.0 with 20%% margin should sell at 12, got %s", priced[0].SaleRate)
		})
	})

	t.Run("categories", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				tiktok := entry("201", "1.00", "10", "1000")
				tiktok.Category = "TikTok"
				return []baratosocial.Service{
					entry("101", "2.50", "100", "10000"),
					entry("102", "4.00", "50", "5000"),
					tiktok,
				}, nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			_, err := svc.Sync(t.Context())
			require.NoError(t, err)

			categories, err := svc.Categories(t.Context())
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"Instagram", "TikTok"}, categories)
		})
	})

	t.Run("set active toggles availability", func(t *testing.T) {
		supplier := &fakeSupplier{
			servicesFn: func(ctx context.Context) ([]baratosocial.Service, error) {
				return []baratosocial.Service{entry("101", "2.50", "100", "10000")}, nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			_, err := svc.Sync(t.Context())
			require.NoError(t, err)

			stored, err := storage.Service().GetActiveService(t.Context(), 101)
			require.NoError(t, err)

			toggled, err := svc.SetActive(t.Context(), stored.ID, false)
			require.NoError(t, err)
			require.False(t, toggled.Active)

			_, err = storage.Service().GetActiveService(t.Context(), 101)
			require.ErrorIs(t, err, apperrors.ErrServiceNotFound)

			toggled, err = svc.SetActive(t.Context(), stored.ID, true)
			require.NoError(t, err)
			require.True(t, toggled.Active)
		})
	})

	t.Run("set active unknown service", func(t *testing.T) {
		withService(t, &fakeSupplier{}, settings, func(svc *CatalogService, storage repository.Storage) {
			_, err := svc.SetActive(t.Context(), uuid.New(), false)
			require.ErrorIs(t, err, apperrors.ErrServiceNotFound)
		})
	})

	t.Run("test supplier returns funds", func(t *testing.T) {
		supplier := &fakeSupplier{
			balanceFn: func(ctx context.Context) (decimal.Decimal, error) {
				return decimal.RequireFromString("84.90"), nil
			},
		}

		withService(t, supplier, settings, func(svc *CatalogService, storage repository.Storage) {
			balance, err := svc.TestSupplier(t.Context())
			require.NoError(t, err)
			require.True(t, balance.Equal(decimal.RequireFromString("84.90")))
		})
	})
}
