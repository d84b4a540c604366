package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dfcarvalho/smmpanel/internal/repository"
)

// Dashboard aggregates the numbers the admin landing page shows
type Dashboard struct {
	TotalUsers     int64
	TotalOrders    int64
	TotalRevenue   decimal.Decimal
	MonthlyRevenue decimal.Decimal
}

type StatsService struct {
	storage repository.Storage

	// now is swappable so tests can pin the month boundary
	now func() time.Time
}

func NewService(storage repository.Storage) *StatsService {
	return &StatsService{
		storage: storage,
		now:     time.Now,
	}
}

func (s *StatsService) Dashboard(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.TotalUsers, err = s.storage.User().CountUsers(ctx); err != nil {
		return d, err
	}
	if d.TotalOrders, err = s.storage.Order().CountOrders(ctx); err != nil {
		return d, err
	}

	// Revenue counts approved payments only: pending or rejected
	// top-ups never reached the balance
	if d.TotalRevenue, err = s.storage.Payment().ApprovedRevenue(ctx, time.Time{}); err != nil {
		return d, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if d.MonthlyRevenue, err = s.storage.Payment().ApprovedRevenue(ctx, monthStart); err != nil {
		return d, err
	}

	return d, nil
}
