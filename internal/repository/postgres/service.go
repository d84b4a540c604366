package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dfcarvalho/smmpanel/internal/apperrors"
	"github.com/dfcarvalho/smmpanel/internal/models"
)

type ServiceRepo struct {
	db DBTX
}

// Upsert keyed on the supplier's id: sync refreshes price and limits
// but never resets the locally managed active flag.
const upsertService = `-- name: UpsertService
INSERT INTO services (id, supplier_service_id, name, type, category, description, rate, min_quantity, max_quantity, active, synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10)
ON CONFLICT (supplier_service_id) DO UPDATE
SET name = excluded.name,
    type = excluded.type,
    category = excluded.category,
    description = excluded.description,
    rate = excluded.rate,
    min_quantity = excluded.min_quantity,
    max_quantity = excluded.max_quantity,
    synced_at = excluded.synced_at
RETURNING (xmax = 0)
`

func (r *ServiceRepo) UpsertService(ctx context.Context, svc models.Service) (bool, error) {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}

	var inserted bool
	err := r.db.QueryRow(ctx, upsertService,
		svc.ID, svc.SupplierServiceID, svc.Name, svc.Type, svc.Category,
		svc.Description, svc.Rate, svc.MinQuantity, svc.MaxQuantity, svc.SyncedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return inserted, nil
}

const getActiveService = `-- name: GetActiveService
SELECT id, supplier_service_id, name, type, category, description, rate, min_quantity, max_quantity, active, synced_at
FROM services
WHERE supplier_service_id = $1 AND active
`

func (r *ServiceRepo) GetActiveService(ctx context.Context, supplierServiceID int64) (models.Service, error) {
	rows, _ := r.db.Query(ctx, getActiveService, supplierServiceID)
	return collectService(rows)
}

const getServiceByID = `-- name: GetServiceByID
SELECT id, supplier_service_id, name, type, category, description, rate, min_quantity, max_quantity, active, synced_at
FROM services
WHERE id = $1
`

func (r *ServiceRepo) GetServiceByID(ctx context.Context, id uuid.UUID) (models.Service, error) {
	rows, _ := r.db.Query(ctx, getServiceByID, id)
	return collectService(rows)
}

const listActiveServices = `-- name: ListActiveServices
SELECT id, supplier_service_id, name, type, category, description, rate, min_quantity, max_quantity, active, synced_at
FROM services
WHERE active
ORDER BY category, name
`

func (r *ServiceRepo) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	rows, _ := r.db.Query(ctx, listActiveServices)
	services, err := pgx.CollectRows(rows, rowToService)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return services, nil
}

const listCategories = `-- name: ListCategories
SELECT DISTINCT category FROM services
WHERE active AND category <> ''
ORDER BY category
`

func (r *ServiceRepo) ListCategories(ctx context.Context) ([]string, error) {
	rows, _ := r.db.Query(ctx, listCategories)
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return categories, nil
}

const setServiceActive = `-- name: SetServiceActive
UPDATE services SET active = $2
WHERE id = $1
RETURNING id, supplier_service_id, name, type, category, description, rate, min_quantity, max_quantity, active, synced_at
`

func (r *ServiceRepo) SetServiceActive(ctx context.Context, id uuid.UUID, active bool) (models.Service, error) {
	rows, _ := r.db.Query(ctx, setServiceActive, id, active)
	return collectService(rows)
}

func collectService(rows pgx.Rows) (models.Service, error) {
	service, err := pgx.CollectOneRow(rows, rowToService)

	switch {
	case err == nil:
		return service, nil
	case errors.Is(err, pgx.ErrNoRows):
		return service, apperrors.ErrServiceNotFound
	default:
		return service, fmt.Errorf("db error: %w", err)
	}
}

func rowToService(row pgx.CollectableRow) (models.Service, error) {
	var s models.Service
	err := row.Scan(&s.ID, &s.SupplierServiceID, &s.Name, &s.Type, &s.Category,
		&s.Description, &s.Rate, &s.MinQuantity, &s.MaxQuantity, &s.Active, &s.SyncedAt)
	return s, err
}
