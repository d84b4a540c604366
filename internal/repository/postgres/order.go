package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dfcarvalho/smmpanel/internal/models"
)

type OrderRepo struct {
	db DBTX
}

const createOrder = `-- name: CreateOrder
INSERT INTO orders (id, created_at, user_id, supplier_service_id, service_name, link, quantity, charge, supplier_order_id, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, user_id, supplier_service_id, service_name, link, quantity, charge, supplier_order_id, status
`

func (r *OrderRepo) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	rows, _ := r.db.Query(ctx, createOrder,
		order.ID, order.CreatedAt, order.UserID, order.SupplierServiceID, order.ServiceName,
		order.Link, order.Quantity, order.Charge, order.SupplierOrderID, order.Status,
	)
	created, err := pgx.CollectOneRow(rows, rowToOrder)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listUserOrders = `-- name: ListUserOrders
SELECT id, created_at, user_id, supplier_service_id, service_name, link, quantity, charge, supplier_order_id, status
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *OrderRepo) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, _ := r.db.Query(ctx, listUserOrders, userID)
	orders, err := pgx.CollectRows(rows, rowToOrder)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return orders, nil
}

const countOrders = `-- name: CountOrders
SELECT count(*) FROM orders
`

func (r *OrderRepo) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, countOrders).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func rowToOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CreatedAt, &o.UserID, &o.SupplierServiceID, &o.ServiceName,
		&o.Link, &o.Quantity, &o.Charge, &o.SupplierOrderID, &o.Status)
	return o, err
}
