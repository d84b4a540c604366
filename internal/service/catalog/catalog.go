package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/logger"
	"github.com/dfcarvalho/smmpanel/internal/models"
	"github.com/dfcarvalho/smmpanel/internal/repository"
	"github.com/dfcarvalho/smmpanel/internal/service/pricing"
	"github.com/dfcarvalho/smmpanel/internal/supplier/baratosocial"
)

// Supplier is the catalog-facing supplier surface.
// Implemented by *baratosocial.Client.
type Supplier interface {
	Services(ctx context.Context) ([]baratosocial.Service, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

type settingsService interface {
	SupplierAPIKey(ctx context.Context) (string, error)
	ProfitMargin(ctx context.Context) (decimal.Decimal, error)
}

// PricedService is a catalog entry with the sale rate the user pays
type PricedService struct {
	models.Service
	SaleRate decimal.Decimal
}

// SyncResult reports what a catalog synchronization did
type SyncResult struct {
	New     int
	Updated int
	Skipped int
}

type CatalogService struct {
	storage  repository.Storage
	settings settingsService
	logger   logger.Logger

	newSupplier func(apiKey string) Supplier
}

func NewService(storage repository.Storage, settings settingsService, l logger.Logger) *CatalogService {
	return &CatalogService{
		storage:  storage,
		settings: settings,
		logger:   l,
		newSupplier: func(apiKey string) Supplier {
			return baratosocial.NewClient(apiKey, l)
		},
	}
}

// List returns active services priced at the current margin
func (s *CatalogService) List(ctx context.Context) ([]PricedService, error) {
	margin, err := s.settings.ProfitMargin(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't resolve profit margin: %w", err)
	}

	services, err := s.storage.Service().ListActiveServices(ctx)
	if err != nil {
		return nil, err
	}

	priced := make([]PricedService, 0, len(services))
	for _, svc := range services {
		rate, err := pricing.SaleRate(svc.Rate, margin)
		if err != nil {
			return nil, err
		}
		priced = append(priced, PricedService{Service: svc, SaleRate: rate})
	}

	return priced, nil
}

// Categories returns the distinct categories of active services
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	return s.storage.Service().ListCategories(ctx)
}

// SetActive flips a service's availability to customers
func (s *CatalogService) SetActive(ctx context.Context, id uuid.UUID, active bool) (models.Service, error) {
	return s.storage.Service().SetServiceActive(ctx, id, active)
}

// Sync fetches the supplier catalog and upserts it locally.
// Entries with unparseable numeric fields are skipped, not fatal: one
// malformed row must not abort a whole sync.
func (s *CatalogService) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	apiKey, err := s.settings.SupplierAPIKey(ctx)
	if err != nil {
		return result, err
	}

	remote, err := s.newSupplier(apiKey).Services(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", apperrors.ErrSupplierUnavailable, err)
	}

	now := time.Now()
	for _, entry := range remote {
		svc, err := supplierEntryToService(entry, now)
		if err != nil {
			s.logger.Warn("Skipping malformed catalog entry", "error", err, "service", entry.ServiceID)
			result.Skipped++
			continue
		}

		created, err := s.storage.Service().UpsertService(ctx, svc)
		if err != nil {
			return result, err
		}
		if created {
			result.New++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Catalog synchronized",
		"new", result.New, "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// TestSupplier probes the supplier credentials and returns the
// reseller's remaining funds there
func (s *CatalogService) TestSupplier(ctx context.Context) (decimal.Decimal, error) {
	apiKey, err := s.settings.SupplierAPIKey(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return s.newSupplier(apiKey).Balance(ctx)
}

// The supplier API encodes every field as a string
func supplierEntryToService(entry baratosocial.Service, syncedAt time.Time) (models.Service, error) {
	var svc models.Service

	id, err := strconv.ParseInt(entry.ServiceID, 10, 64)
	if err != nil {
		return svc, fmt.Errorf("bad service id %q: %w", entry.ServiceID, err)
	}
	rate, err := decimal.NewFromString(entry.Rate)
	if err != nil {
		return svc, fmt.Errorf("bad rate %q: %w", entry.Rate, err)
	}
	minQuantity, err := strconv.Atoi(entry.Min)
	if err != nil {
		return svc, fmt.Errorf("bad min %q: %w", entry.Min, err)
	}
	maxQuantity, err := strconv.Atoi(entry.Max)
	if err != nil {
		return svc, fmt.Errorf("bad max %q: %w", entry.Max, err)
	}

	return models.Service{
		SupplierServiceID: id,
		Name:              entry.Name,
		Type:              entry.Type,
		Category:          entry.Category,
		Description:       entry.Description,
		Rate:              rate,
		MinQuantity:       minQuantity,
		MaxQuantity:       maxQuantity,
		Active:            true,
		SyncedAt:          syncedAt,
	}, nil
}
